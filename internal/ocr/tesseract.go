package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// TesseractRecognizer recognizes text lines using a Tesseract client.
// The client is not safe for concurrent use, so calls are serialized.
type TesseractRecognizer struct {
	client *gosseract.Client
	mu     sync.Mutex
}

// NewTesseract creates a recognizer for the given language ("eng" etc).
func NewTesseract(language string) (*TesseractRecognizer, error) {
	client := gosseract.NewClient()

	if err := client.SetLanguage(language); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: failed to set language: %v", ErrEngine, err)
	}

	// Species names are not dictionary words; without these Tesseract
	// "corrects" RATTATA into real words.
	_ = client.SetVariable("load_system_dawg", "false")
	_ = client.SetVariable("load_freq_dawg", "false")
	_ = client.SetVariable("language_model_penalty_non_dict_word", "0")

	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: failed to set page segmentation mode: %v", ErrEngine, err)
	}

	return &TesseractRecognizer{client: client}, nil
}

// RecognizeLines runs OCR over the image and splits the result into
// lines. Empty lines are preserved in place.
func (t *TesseractRecognizer) RecognizeLines(img image.Image) ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: failed to encode image: %v", ErrEngine, err)
	}

	if err := t.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("%w: failed to set image: %v", ErrEngine, err)
	}

	text, err := t.client.Text()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngine, err)
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return lines, nil
}

// Close releases the Tesseract client.
func (t *TesseractRecognizer) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client != nil {
		err := t.client.Close()
		t.client = nil
		return err
	}
	return nil
}
