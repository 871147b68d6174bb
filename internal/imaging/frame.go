package imaging

import (
	"image"

	"github.com/cockroachdb/errors"
	"github.com/ironsheep/docscan-mcp/internal/geometry"
)

// ErrInvalidBuffer is returned when a pixel buffer's dimensions, stride or
// length do not describe a complete image.
var ErrInvalidBuffer = errors.New("invalid pixel buffer")

// Frame is a source image handed around by the scanner core.
//
// The core never inspects frame contents itself. It only asks for the image
// when a frame has to be rectified or measured, so a frame may defer any
// conversion work until AsImage is called.
type Frame interface {
	AsImage() image.Image
}

// FrameSize returns the pixel dimensions of a frame's image.
func FrameSize(f Frame) geometry.Size {
	b := f.AsImage().Bounds()
	return geometry.Size{Width: float64(b.Dx()), Height: float64(b.Dy())}
}

// Still is a Frame backed by an already decoded image.
type Still struct {
	Image image.Image
}

// NewStill wraps img as a Frame.
func NewStill(img image.Image) Still {
	return Still{Image: img}
}

// AsImage implements Frame.
func (s Still) AsImage() image.Image {
	return s.Image
}

// PixelFormat describes the byte order of an interleaved 8-bit pixel buffer.
type PixelFormat int

const (
	// FormatBGRA is the layout most camera pipelines deliver.
	FormatBGRA PixelFormat = iota
	// FormatRGBA matches image.RGBA's layout.
	FormatRGBA
)

// String returns the format name.
func (f PixelFormat) String() string {
	switch f {
	case FormatBGRA:
		return "bgra"
	case FormatRGBA:
		return "rgba"
	default:
		return "unknown"
	}
}

// Buffer is a Frame backed by a raw camera pixel buffer.
//
// Four bytes per pixel, rows Stride bytes apart. The pixel data is treated
// as read-only; AsImage converts it into a fresh *image.NRGBA on every call
// so the capture pipeline may recycle Pix once the frame has been handled.
type Buffer struct {
	Pix    []byte
	Width  int
	Height int
	Stride int
	Format PixelFormat
}

// NewBuffer validates the buffer layout and returns it as a Frame.
//
// A stride of 0 means tightly packed rows (4 * width).
func NewBuffer(pix []byte, width, height, stride int, format PixelFormat) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Wrapf(ErrInvalidBuffer, "dimensions %dx%d", width, height)
	}
	if stride == 0 {
		stride = width * 4
	}
	if stride < width*4 {
		return nil, errors.Wrapf(ErrInvalidBuffer, "stride %d shorter than row of %d pixels", stride, width)
	}
	if need := stride*(height-1) + width*4; len(pix) < need {
		return nil, errors.Wrapf(ErrInvalidBuffer, "have %d bytes, need %d", len(pix), need)
	}
	if format != FormatBGRA && format != FormatRGBA {
		return nil, errors.Wrapf(ErrInvalidBuffer, "unsupported pixel format %d", int(format))
	}
	return &Buffer{Pix: pix, Width: width, Height: height, Stride: stride, Format: format}, nil
}

// AsImage implements Frame.
func (b *Buffer) AsImage() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		src := b.Pix[y*b.Stride : y*b.Stride+b.Width*4]
		dst := img.Pix[y*img.Stride : y*img.Stride+b.Width*4]
		if b.Format == FormatRGBA {
			copy(dst, src)
			continue
		}
		for x := 0; x < len(src); x += 4 {
			dst[x] = src[x+2]
			dst[x+1] = src[x+1]
			dst[x+2] = src[x]
			dst[x+3] = src[x+3]
		}
	}
	return img
}
