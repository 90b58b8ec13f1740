package vision

import "image"

// Region is a rectangle expressed as fractions of the frame size, so
// the same preset works at any window resolution.
type Region struct {
	X0, X1 float64
	Y0, Y1 float64
}

// The two regions the detector reads. Bottom covers the battle text
// box where the trigger phrase appears; Top covers the header where
// species names and level markers are drawn.
var (
	BottomRegion = Region{X0: 0.06, X1: 0.70, Y0: 0.60, Y1: 0.78}
	TopRegion    = Region{X0: 0.06, X1: 0.94, Y0: 0.06, Y1: 0.30}
)

// Bounds converts the fractional region to pixel bounds for a frame of
// the given size. Fractions are truncated, not rounded.
func (r Region) Bounds(width, height int) image.Rectangle {
	return image.Rect(
		int(float64(width)*r.X0),
		int(float64(height)*r.Y0),
		int(float64(width)*r.X1),
		int(float64(height)*r.Y1),
	)
}
