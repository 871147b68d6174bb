package detection

import (
	"image"

	"github.com/ironsheep/docscan-mcp/internal/geometry"
)

// orderCorners labels four image-space corners. The top-left corner has
// the smallest x+y and the bottom-right the largest; the top-right has the
// smallest y-x and the bottom-left the largest.
func orderCorners(pts [4]image.Point) geometry.Quad {
	tl, tr, br, bl := pts[0], pts[0], pts[0], pts[0]
	for _, p := range pts[1:] {
		if p.X+p.Y < tl.X+tl.Y {
			tl = p
		}
		if p.X+p.Y > br.X+br.Y {
			br = p
		}
		if p.Y-p.X < tr.Y-tr.X {
			tr = p
		}
		if p.Y-p.X > bl.Y-bl.X {
			bl = p
		}
	}
	return geometry.Quad{
		TopLeft:     toPoint(tl),
		TopRight:    toPoint(tr),
		BottomRight: toPoint(br),
		BottomLeft:  toPoint(bl),
	}
}

// normalize converts a top-left origin pixel quad into the bottom-left
// normalized convention detectors report in.
func normalize(q geometry.Quad, bounds image.Rectangle) geometry.Quad {
	size := geometry.Size{Width: float64(bounds.Dx()), Height: float64(bounds.Dy())}
	return q.Cartesian(size.Height).Relative(size)
}

func toPoint(p image.Point) geometry.Point {
	return geometry.Pt(float64(p.X), float64(p.Y))
}
