package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/docscan-mcp/internal/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createInMemoryImage creates a solid color image.
func createInMemoryImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createPatternImage creates a four-quadrant test image: red top-left,
// green top-right, blue bottom-left, white bottom-right.
func createPatternImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.RGBA
			switch {
			case x < width/2 && y < height/2:
				c = color.RGBA{255, 0, 0, 255}
			case x >= width/2 && y < height/2:
				c = color.RGBA{0, 255, 0, 255}
			case x < width/2:
				c = color.RGBA{0, 0, 255, 255}
			default:
				c = color.RGBA{255, 255, 255, 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestStill(t *testing.T) {
	img := createPatternImage(40, 20)
	frame := NewStill(img)

	assert.Same(t, img, frame.AsImage())
	assert.Equal(t, geometry.Size{Width: 40, Height: 20}, FrameSize(frame))
}

func TestNewBuffer_BGRA(t *testing.T) {
	// 2x1 image: a blue pixel then a red pixel, stored BGRA.
	pix := []byte{
		255, 0, 0, 255,
		0, 0, 255, 128,
	}

	buf, err := NewBuffer(pix, 2, 1, 0, FormatBGRA)
	require.NoError(t, err)
	assert.Equal(t, 8, buf.Stride)

	img, ok := buf.AsImage().(*image.NRGBA)
	require.True(t, ok)
	assert.Equal(t, color.NRGBA{0, 0, 255, 255}, img.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{255, 0, 0, 128}, img.NRGBAAt(1, 0))

	// The source buffer is not modified by conversion.
	assert.Equal(t, byte(255), pix[0])
}

func TestNewBuffer_RGBAWithPadding(t *testing.T) {
	// 1x2 image with 4 bytes of row padding.
	pix := []byte{
		10, 20, 30, 255, 0, 0, 0, 0,
		40, 50, 60, 255,
	}

	buf, err := NewBuffer(pix, 1, 2, 8, FormatRGBA)
	require.NoError(t, err)

	img := buf.AsImage().(*image.NRGBA)
	assert.Equal(t, color.NRGBA{10, 20, 30, 255}, img.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{40, 50, 60, 255}, img.NRGBAAt(0, 1))
	assert.Equal(t, geometry.Size{Width: 1, Height: 2}, FrameSize(buf))
}

func TestNewBuffer_Invalid(t *testing.T) {
	tests := []struct {
		name          string
		pix           []byte
		width, height int
		stride        int
		format        PixelFormat
	}{
		{"zero width", make([]byte, 16), 0, 1, 0, FormatBGRA},
		{"negative height", make([]byte, 16), 1, -1, 0, FormatBGRA},
		{"short stride", make([]byte, 16), 2, 2, 4, FormatBGRA},
		{"short buffer", make([]byte, 15), 2, 2, 0, FormatBGRA},
		{"unknown format", make([]byte, 16), 2, 2, 0, PixelFormat(9)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBuffer(tt.pix, tt.width, tt.height, tt.stride, tt.format)
			assert.ErrorIs(t, err, ErrInvalidBuffer)
		})
	}
}

func TestPixelFormat_String(t *testing.T) {
	assert.Equal(t, "bgra", FormatBGRA.String())
	assert.Equal(t, "rgba", FormatRGBA.String())
	assert.Equal(t, "unknown", PixelFormat(7).String())
}
