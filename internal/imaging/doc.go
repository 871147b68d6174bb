// Package imaging provides the frame and image plumbing around the scanner
// core: the Frame capability that unifies still images and raw camera
// buffers, a decoded-image cache, PNG encoding for transports, and the page
// enhancement filters applied after rectification.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based with (0,0) at the
// top-left corner, X increasing rightward and Y increasing downward, the
// same convention as image.Image.
//
// # Frames
//
// A Frame only promises AsImage. Still wraps an image that is already
// decoded; Buffer wraps an interleaved BGRA or RGBA pixel buffer as it
// arrives from a capture pipeline and converts it lazily. Both converge on
// the same rectification path.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Frames and the stateless
// functions in this package can be used from any goroutine as long as the
// underlying pixel data is not mutated concurrently.
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - Buffer layouts whose stride or length cannot hold the image
//   - File I/O errors during image loading
//   - Encoding errors during image output
//   - Unknown enhancement mode names
package imaging
