// Package detection defines the document detection backends the scanner
// consumes and the adapters between them.
//
// Two capability variants exist:
//
//   - ImageDetector looks at a single image and returns at most one
//     candidate outline
//   - SequenceDetector watches a stream of frames and reports one
//     scan.Observation per processed frame through a registered callback
//
// NewSequence lifts any ImageDetector into a SequenceDetector by running it
// on a small worker pool. Frames that arrive while every worker is busy, or
// faster than the configured rate ceiling, are dropped rather than queued,
// so a slow backend never builds up latency behind the live camera.
//
// # Coordinate System
//
// Detectors report quads in normalized coordinates with the origin at the
// bottom-left corner and Y increasing upward, the convention camera vision
// frameworks use. The rectify package converts from this convention by
// default.
//
// # Backends
//
// ContourDetector finds the largest convex four-sided contour with OpenCV.
// It is compiled only with the gocv build tag:
//
//	go build -tags gocv ./...
//
// Without the tag ContourDetector.Detect returns ErrBackendUnavailable.
// NoSequence is a SequenceDetector that never reports anything, for
// embedding applications that only rectify stills.
package detection
