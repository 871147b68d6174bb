package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToNRGBA(t *testing.T) {
	src := createPatternImage(10, 6)
	sub := src.SubImage(image.Rect(5, 0, 10, 3))

	out := ToNRGBA(sub)
	assert.Equal(t, image.Rect(0, 0, 5, 3), out.Bounds())
	assert.Equal(t, color.NRGBA{0, 255, 0, 255}, out.NRGBAAt(0, 0))

	// Writing to the copy leaves the source alone.
	out.SetNRGBA(0, 0, color.NRGBA{1, 2, 3, 255})
	assert.Equal(t, color.RGBA{0, 255, 0, 255}, src.RGBAAt(5, 0))
}

func TestDownscale(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		max           int
		wantW, wantH  int
	}{
		{"landscape", 400, 200, 100, 100, 50},
		{"portrait", 300, 600, 150, 75, 150},
		{"already fits", 80, 60, 100, 80, 60},
		{"disabled", 400, 200, 0, 400, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := createInMemoryImage(tt.width, tt.height, color.White)
			out := Downscale(img, tt.max)
			assert.Equal(t, tt.wantW, out.Bounds().Dx())
			assert.Equal(t, tt.wantH, out.Bounds().Dy())
		})
	}
}
