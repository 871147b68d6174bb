// Package geometry provides the quadrilateral model used to describe a
// document outline and the small algebra the tracker and rectifier build on.
//
// # Coordinate Conventions
//
// A Point carries no unit. Callers track which convention a value is in:
//   - Normalized: both axes in [0, 1] relative to the image size. Detection
//     backends usually report normalized points with the origin at the
//     bottom-left corner and Y increasing upward.
//   - Absolute: pixel units. After Cartesian conversion the origin is the
//     top-left corner and Y increases downward, matching image.Image.
//
// Absolute and Cartesian convert between the two; MirrorUp flips a
// normalized quad between the bottom-left and top-left origin conventions.
//
// # Corner Order
//
// A Quad is always treated as one closed loop walked clockwise (in top-left
// origin space): TopLeft, TopRight, BottomRight, BottomLeft. Points returns
// the corners in that order and NewQuadClockwise accepts them in that order.
//
// # Thread Safety
//
// Point and Quad are plain values. Every operation returns a new value and
// none of them mutate their receiver, so they can be shared freely between
// goroutines.
package geometry
