package capture

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

// DisplayFinder locates the game by display index plus an optional
// sub-rectangle (for windowed play). A zero rectangle means the whole
// display; that is the right setting when the game runs full-screen.
type DisplayFinder struct {
	Display int
	Rect    image.Rectangle
}

// NewDisplayFinder creates a finder for the given display index.
func NewDisplayFinder(display int, rect image.Rectangle) *DisplayFinder {
	return &DisplayFinder{Display: display, Rect: rect}
}

// Find resolves the configured display into a capturable handle.
func (f *DisplayFinder) Find() (Handle, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 || f.Display < 0 || f.Display >= n {
		return nil, fmt.Errorf("%w: display %d of %d", ErrWindowNotFound, f.Display, n)
	}

	bounds := screenshot.GetDisplayBounds(f.Display)
	if !f.Rect.Empty() {
		bounds = f.Rect.Add(bounds.Min).Intersect(bounds)
		if bounds.Empty() {
			return nil, fmt.Errorf("%w: capture rect outside display %d", ErrWindowNotFound, f.Display)
		}
	}

	return &screenRegion{bounds: bounds}, nil
}

// screenRegion captures a fixed rectangle of the virtual screen.
type screenRegion struct {
	bounds image.Rectangle
}

func (s *screenRegion) Capture() (*image.RGBA, error) {
	img, err := screenshot.CaptureRect(s.bounds)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWindowNotFound, err)
	}
	return img, nil
}

func (s *screenRegion) Dimensions() (int, int) {
	return s.bounds.Dx(), s.bounds.Dy()
}

// ListDisplays returns the bounds of every active display, for the
// debug command.
func ListDisplays() []image.Rectangle {
	n := screenshot.NumActiveDisplays()
	out := make([]image.Rectangle, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, screenshot.GetDisplayBounds(i))
	}
	return out
}
