package geometry

import (
	"fmt"
	"math"
)

// degenerateEpsilon is the smallest turn (cross product, in squared units)
// accepted between two consecutive edges of a convex quad.
const degenerateEpsilon = 1e-9

// Quad represents a four-corner document outline.
//
// The zero value is the empty sentinel (all corners at the origin); use
// IsEmpty to test for it.
type Quad struct {
	TopLeft     Point `json:"top_left"`
	TopRight    Point `json:"top_right"`
	BottomLeft  Point `json:"bottom_left"`
	BottomRight Point `json:"bottom_right"`
}

// NewQuadClockwise builds a Quad from corners listed clockwise starting at
// the top-left: TopLeft, TopRight, BottomRight, BottomLeft.
//
// Returns false when points does not hold exactly four corners.
func NewQuadClockwise(points []Point) (Quad, bool) {
	if len(points) != 4 {
		return Quad{}, false
	}
	return Quad{
		TopLeft:     points[0],
		TopRight:    points[1],
		BottomRight: points[2],
		BottomLeft:  points[3],
	}, true
}

// Points returns the corners in clockwise order starting at TopLeft.
func (q Quad) Points() []Point {
	return []Point{q.TopLeft, q.TopRight, q.BottomRight, q.BottomLeft}
}

// IsEmpty reports whether q is the all-zero sentinel.
func (q Quad) IsEmpty() bool {
	return q == Quad{}
}

// Add returns the corner-wise vector sum of q and o.
func (q Quad) Add(o Quad) Quad {
	return Quad{
		TopLeft:     q.TopLeft.Add(o.TopLeft),
		TopRight:    q.TopRight.Add(o.TopRight),
		BottomLeft:  q.BottomLeft.Add(o.BottomLeft),
		BottomRight: q.BottomRight.Add(o.BottomRight),
	}
}

// Scale multiplies every corner by k. It is meant for building weighted
// sums; use Absolute to move between coordinate spaces.
func (q Quad) Scale(k float64) Quad {
	return q.mapPoints(func(p Point) Point { return p.Scale(k) })
}

// Divide divides every corner by k.
func (q Quad) Divide(k float64) Quad {
	return q.mapPoints(func(p Point) Point { return p.Divide(k) })
}

// Absolute converts every corner from normalized to pixel units.
func (q Quad) Absolute(size Size) Quad {
	return q.mapPoints(func(p Point) Point { return p.Absolute(size) })
}

// Relative converts every corner from pixel to normalized units.
func (q Quad) Relative(size Size) Quad {
	return q.mapPoints(func(p Point) Point { return p.Relative(size) })
}

// Cartesian flips every corner between bottom-left and top-left origin
// pixel space for an image of the given height.
func (q Quad) Cartesian(height float64) Quad {
	return q.mapPoints(func(p Point) Point { return p.Cartesian(height) })
}

// MirrorUp reflects every corner's normalized Y as 1 - y and re-derives a
// clockwise Quad from the reflected loop. Corner labels are kept, so a quad
// reported with a bottom-left origin comes back in top-left origin space.
func (q Quad) MirrorUp() (Quad, bool) {
	points := q.Points()
	mirrored := make([]Point, len(points))
	for i, p := range points {
		mirrored[i] = Point{X: p.X, Y: 1 - p.Y}
	}
	return NewQuadClockwise(mirrored)
}

// InRange reports whether every corner of q lies within threshold of the
// matching corner of o.
func (q Quad) InRange(o Quad, threshold float64) bool {
	return q.TopLeft.InRange(o.TopLeft, threshold) &&
		q.TopRight.InRange(o.TopRight, threshold) &&
		q.BottomRight.InRange(o.BottomRight, threshold) &&
		q.BottomLeft.InRange(o.BottomLeft, threshold)
}

// Width is the longer of the top and bottom edges.
func (q Quad) Width() float64 {
	return math.Max(Distance(q.TopLeft, q.TopRight), Distance(q.BottomLeft, q.BottomRight))
}

// Height is the longer of the left and right edges.
func (q Quad) Height() float64 {
	return math.Max(Distance(q.TopLeft, q.BottomLeft), Distance(q.TopRight, q.BottomRight))
}

// IsConvex reports whether the clockwise loop is a proper convex
// quadrilateral. Loops with coincident or collinear corners, and loops
// whose edges cross each other, are rejected.
func (q Quad) IsConvex() bool {
	pts := q.Points()
	var sign float64
	for i := range pts {
		c := cross(pts[i], pts[(i+1)%4], pts[(i+2)%4])
		// Written negated so NaN corners are rejected too.
		if !(math.Abs(c) >= degenerateEpsilon) {
			return false
		}
		if sign == 0 {
			sign = c
			continue
		}
		if (c > 0) != (sign > 0) {
			return false
		}
	}
	return true
}

// String formats the corners clockwise, mainly for logs.
func (q Quad) String() string {
	return fmt.Sprintf("[(%.4g,%.4g) (%.4g,%.4g) (%.4g,%.4g) (%.4g,%.4g)]",
		q.TopLeft.X, q.TopLeft.Y, q.TopRight.X, q.TopRight.Y,
		q.BottomRight.X, q.BottomRight.Y, q.BottomLeft.X, q.BottomLeft.Y)
}

func (q Quad) mapPoints(fn func(Point) Point) Quad {
	return Quad{
		TopLeft:     fn(q.TopLeft),
		TopRight:    fn(q.TopRight),
		BottomLeft:  fn(q.BottomLeft),
		BottomRight: fn(q.BottomRight),
	}
}
