package detection

import (
	"context"
	"image"

	"github.com/cockroachdb/errors"
	"github.com/ironsheep/docscan-mcp/internal/geometry"
	"github.com/ironsheep/docscan-mcp/internal/imaging"
	"github.com/ironsheep/docscan-mcp/internal/scan"
)

// ErrBackendUnavailable is returned by backends that were not compiled in.
var ErrBackendUnavailable = errors.New("detection backend unavailable")

// ImageDetector finds a document outline in a single image. A nil quad
// with a nil error means nothing was found.
type ImageDetector interface {
	Detect(ctx context.Context, img image.Image) (*geometry.Quad, error)
}

// ImageDetectorFunc adapts a function to ImageDetector.
type ImageDetectorFunc func(ctx context.Context, img image.Image) (*geometry.Quad, error)

// Detect calls f.
func (f ImageDetectorFunc) Detect(ctx context.Context, img image.Image) (*geometry.Quad, error) {
	return f(ctx, img)
}

// SequenceDetector consumes live frames and reports one Observation per
// frame it processes. Frames it skips produce nothing.
type SequenceDetector interface {
	Detect(frame imaging.Frame)
	OnUpdate(fn func(scan.Observation))
}

// NoSequence is a SequenceDetector that never reports.
type NoSequence struct{}

func (NoSequence) Detect(imaging.Frame)             {}
func (NoSequence) OnUpdate(func(scan.Observation)) {}

// DefaultQuad is the outline offered when a still image yields no
// detection: an inset rectangle covering the middle of the frame.
func DefaultQuad() geometry.Quad {
	return geometry.Quad{
		TopLeft:     geometry.Pt(0.2, 0.8),
		TopRight:    geometry.Pt(0.8, 0.8),
		BottomRight: geometry.Pt(0.8, 0.2),
		BottomLeft:  geometry.Pt(0.2, 0.2),
	}
}

// DetectOrDefault runs d on img and falls back to DefaultQuad when nothing
// is found. The boolean reports whether the quad came from the detector.
func DetectOrDefault(ctx context.Context, d ImageDetector, img image.Image) (geometry.Quad, bool, error) {
	q, err := d.Detect(ctx, img)
	if err != nil {
		return geometry.Quad{}, false, err
	}
	if q == nil {
		return DefaultQuad(), false, nil
	}
	return *q, true, nil
}
