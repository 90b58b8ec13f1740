package vision

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func TestRegionBoundsTruncation(t *testing.T) {
	tests := []struct {
		name   string
		region Region
		w, h   int
		want   image.Rectangle
	}{
		{
			name:   "bottom preset at 1000x500",
			region: BottomRegion,
			w:      1000, h: 500,
			want: image.Rect(60, 300, 700, 390),
		},
		{
			name:   "top preset at 1000x500",
			region: TopRegion,
			w:      1000, h: 500,
			want: image.Rect(60, 30, 940, 150),
		},
		{
			name:   "fractions truncate toward zero",
			region: Region{X0: 0.06, X1: 0.70, Y0: 0.60, Y1: 0.78},
			w:      333, h: 123,
			// 333*0.06=19.98 -> 19, 333*0.70=233.09 -> 233
			// 123*0.60=73.8 -> 73, 123*0.78=95.94 -> 95
			want: image.Rect(19, 73, 233, 95),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.region.Bounds(tt.w, tt.h)
			if got != tt.want {
				t.Errorf("Bounds(%d, %d) = %v, want %v", tt.w, tt.h, got, tt.want)
			}
		})
	}
}

func TestExtractGrayscaleNormalization(t *testing.T) {
	// A colored frame large enough that no upscaling happens.
	frame := image.NewRGBA(image.Rect(0, 0, 2000, 1000))
	for y := 0; y < 1000; y++ {
		for x := 0; x < 2000; x++ {
			frame.SetRGBA(x, y, color.RGBA{R: 200, G: 50, B: 100, A: 255})
		}
	}

	e := NewExtractor(false)
	out, err := e.Extract(frame, BottomRegion, "")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	wantW, wantH := 1280, 180 // 2000*(0.70-0.06), 1000*(0.78-0.60)
	if out.Bounds().Dx() != wantW || out.Bounds().Dy() != wantH {
		t.Errorf("Crop size = %dx%d, want %dx%d",
			out.Bounds().Dx(), out.Bounds().Dy(), wantW, wantH)
	}

	c := out.RGBAAt(10, 10)
	if c.R != c.G || c.G != c.B {
		t.Errorf("Expected replicated gray channels, got %+v", c)
	}
}

func TestExtractUpscalesSmallCrops(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 320, 240))

	e := NewExtractor(false)
	out, err := e.Extract(frame, TopRegion, "")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if out.Bounds().Dx() < minOCRWidth {
		t.Errorf("Expected upscale to at least %d wide, got %d", minOCRWidth, out.Bounds().Dx())
	}
}

func TestExtractDebugDump(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "debug_bottom.png")

	frame := image.NewRGBA(image.Rect(0, 0, 640, 480))
	e := NewExtractor(true)
	if _, err := e.Extract(frame, BottomRegion, path); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("Debug image was not written: %v", err)
	}
}

func TestExtractNonZeroOriginFrame(t *testing.T) {
	// Frames captured from secondary displays have non-zero origins.
	frame := image.NewRGBA(image.Rect(1920, 0, 1920+2000, 1000))

	e := NewExtractor(false)
	out, err := e.Extract(frame, BottomRegion, "")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if out.Bounds().Min != (image.Point{}) {
		t.Errorf("Expected zero-origin crop, got %v", out.Bounds())
	}
}
