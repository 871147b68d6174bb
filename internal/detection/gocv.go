//go:build gocv

package detection

import (
	"context"
	"image"

	"github.com/cockroachdb/errors"
	"github.com/ironsheep/docscan-mcp/internal/geometry"
	"gocv.io/x/gocv"
)

// ContourAvailable reports whether the OpenCV backend was compiled in.
func ContourAvailable() bool { return true }

// Detect implements ImageDetector.
func (d *ContourDetector) Detect(ctx context.Context, img image.Image) (*geometry.Quad, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, nil
	}
	cfg := d.withDefaults()

	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, errors.Wrap(err, "failed to convert image to mat")
	}
	defer src.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Pt(5, 5), 0, 0, gocv.BorderDefault)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blurred, &edges, cfg.CannyLow, cfg.CannyHigh)

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3))
	defer kernel.Close()

	dilated := gocv.NewMat()
	defer dilated.Close()
	gocv.Dilate(edges, &dilated, kernel)

	contours := gocv.FindContours(dilated, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	minArea := cfg.MinAreaRatio * float64(b.Dx()*b.Dy())
	var best [4]image.Point
	var bestArea float64
	found := false

	for i := 0; i < contours.Size(); i++ {
		// Owned by contours.
		contour := contours.At(i)
		area := gocv.ContourArea(contour)
		if area < minArea || area <= bestArea {
			continue
		}

		approx := gocv.ApproxPolyDP(contour, cfg.Epsilon*gocv.ArcLength(contour, true), true)
		pts := approx.ToPoints()
		approx.Close()
		if len(pts) != 4 {
			continue
		}

		copy(best[:], pts)
		bestArea = area
		found = true
	}

	if !found {
		return nil, nil
	}
	q := normalize(orderCorners(best), b)
	if !q.IsConvex() {
		return nil, nil
	}
	return &q, nil
}
