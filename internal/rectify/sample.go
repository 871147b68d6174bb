package rectify

import (
	"image"
	"math"
)

// bilinear samples src at continuous pixel coordinates (x, y), where pixel
// (i, j) covers [i, i+1) x [j, j+1) and its center is (i+0.5, j+0.5).
// Coordinates outside the image clamp to the nearest edge pixel. The four
// channel values are written to dst.
func bilinear(src *image.NRGBA, x, y float64, dst []uint8) {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	u := clamp(x-0.5, 0, float64(w-1))
	v := clamp(y-0.5, 0, float64(h-1))

	x0, y0 := int(u), int(v)
	x1, y1 := min(x0+1, w-1), min(y0+1, h-1)
	fx, fy := u-float64(x0), v-float64(y0)

	p00 := src.Pix[y0*src.Stride+x0*4:]
	p10 := src.Pix[y0*src.Stride+x1*4:]
	p01 := src.Pix[y1*src.Stride+x0*4:]
	p11 := src.Pix[y1*src.Stride+x1*4:]

	for c := 0; c < 4; c++ {
		top := lerp(float64(p00[c]), float64(p10[c]), fx)
		bottom := lerp(float64(p01[c]), float64(p11[c]), fx)
		dst[c] = uint8(math.Round(clamp(lerp(top, bottom, fy), 0, 255)))
	}
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
