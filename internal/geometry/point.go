package geometry

import "math"

// Point represents a 2D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is the extent of an image or region.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns the vector sum p + o.
func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

// Scale multiplies both axes by k.
func (p Point) Scale(k float64) Point {
	return Point{X: p.X * k, Y: p.Y * k}
}

// Divide divides both axes by k.
func (p Point) Divide(k float64) Point {
	return Point{X: p.X / k, Y: p.Y / k}
}

// Absolute converts a normalized point to pixel units.
func (p Point) Absolute(size Size) Point {
	return Point{X: p.X * size.Width, Y: p.Y * size.Height}
}

// Relative converts a pixel point back to normalized units.
func (p Point) Relative(size Size) Point {
	return Point{X: p.X / size.Width, Y: p.Y / size.Height}
}

// Cartesian flips a bottom-left origin point into top-left origin space
// (and back; the conversion is its own inverse).
func (p Point) Cartesian(height float64) Point {
	return Point{X: p.X, Y: height - p.Y}
}

// InRange reports whether p lies within threshold of o on both axes.
//
// The comparison uses the absolute difference, so InRange(a, b, t) and
// InRange(b, a, t) always agree.
func (p Point) InRange(o Point, threshold float64) bool {
	return math.Abs(p.X-o.X) < threshold && math.Abs(p.Y-o.Y) < threshold
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// cross returns the z component of (b-a) x (c-b).
func cross(a, b, c Point) float64 {
	return (b.X-a.X)*(c.Y-b.Y) - (b.Y-a.Y)*(c.X-b.X)
}
