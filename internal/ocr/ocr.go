// Package ocr turns region crops into text lines.
package ocr

import (
	"errors"
	"image"
)

// ErrEngine indicates a failure of the OCR engine itself (bad install,
// exhausted resources). Single unreadable lines are never an error;
// they come back as empty strings.
var ErrEngine = errors.New("ocr: engine failure")

// LineRecognizer extracts recognized text lines from an image, in
// top-to-bottom order. Lines with no confident text are returned as
// empty strings rather than dropped, so callers can skip them.
type LineRecognizer interface {
	RecognizeLines(img image.Image) ([]string, error)
}
