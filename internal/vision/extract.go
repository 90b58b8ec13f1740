// Package vision prepares window frames for OCR: fractional-region
// cropping, grayscale normalization and upscaling of small crops.
package vision

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	xdraw "golang.org/x/image/draw"

	"encounter-tracker/internal/logging"
)

// Crops narrower than this are upscaled before OCR; the battle text is
// small at common window sizes and Tesseract misses it at 1x.
const minOCRWidth = 600

// Extractor produces normalized region crops from window frames.
type Extractor struct {
	debug bool
	log   *logging.Logger
}

// NewExtractor creates an extractor. When debug is true every crop is
// also written to its debug filename for inspection.
func NewExtractor(debug bool) *Extractor {
	return &Extractor{
		debug: debug,
		log:   logging.NewLogger("vision"),
	}
}

// SetDebug toggles debug image dumps.
func (e *Extractor) SetDebug(debug bool) {
	e.debug = debug
}

// Extract crops the fractional region out of the frame and normalizes
// it for OCR: grayscale values replicated across RGB channels, scaled
// up when the crop is small. The source color depth no longer matters
// to the OCR engine after this.
func (e *Extractor) Extract(frame image.Image, region Region, debugName string) (*image.RGBA, error) {
	fb := frame.Bounds()
	crop := region.Bounds(fb.Dx(), fb.Dy()).Add(fb.Min)
	if crop.Empty() {
		return nil, fmt.Errorf("region %+v is empty at %dx%d", region, fb.Dx(), fb.Dy())
	}

	gray := image.NewRGBA(image.Rect(0, 0, crop.Dx(), crop.Dy()))
	for y := crop.Min.Y; y < crop.Max.Y; y++ {
		for x := crop.Min.X; x < crop.Max.X; x++ {
			g := color.GrayModel.Convert(frame.At(x, y)).(color.Gray).Y
			gray.SetRGBA(x-crop.Min.X, y-crop.Min.Y, color.RGBA{R: g, G: g, B: g, A: 255})
		}
	}

	out := upscale(gray)

	if e.debug && debugName != "" {
		if err := writePNG(debugName, out); err != nil {
			e.log.Error("Failed to write debug image", err)
		}
	}
	return out, nil
}

// upscale scales the crop to at least minOCRWidth wide, preserving
// aspect ratio. Already-large crops pass through untouched.
func upscale(img *image.RGBA) *image.RGBA {
	w := img.Bounds().Dx()
	if w >= minOCRWidth {
		return img
	}
	scale := (minOCRWidth + w - 1) / w
	dst := image.NewRGBA(image.Rect(0, 0, w*scale, img.Bounds().Dy()*scale))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
