// Package rectify deskews the document inside a frame.
//
// Given a frame and a Quad in the detector's normalized coordinates, the
// Rectifier converts the corners to top-left origin pixels, solves the
// projective transform that maps an axis-aligned rectangle onto the quad,
// and resamples the frame through it. The output rectangle takes the longer
// of each pair of opposite sides, so the page keeps its physical aspect
// ratio.
//
// Failure is soft. Degenerate quads and outputs that cannot be allocated
// produce a Result with only Original set; no error crosses this package's
// boundary.
package rectify
