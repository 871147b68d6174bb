package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// ToNRGBA returns img as a tightly packed *image.NRGBA with bounds starting
// at the origin. The result never aliases img's pixels.
func ToNRGBA(img image.Image) *image.NRGBA {
	return imaging.Clone(img)
}

// Downscale shrinks img so neither side exceeds maxDimension, keeping the
// aspect ratio. Images that already fit, and a non-positive maxDimension,
// return img unchanged.
func Downscale(img image.Image, maxDimension int) image.Image {
	if maxDimension <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= maxDimension && b.Dy() <= maxDimension {
		return img
	}
	return imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
}
