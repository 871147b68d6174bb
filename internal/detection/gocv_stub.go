//go:build !gocv

package detection

import (
	"context"
	"image"

	"github.com/cockroachdb/errors"
	"github.com/ironsheep/docscan-mcp/internal/geometry"
)

// ContourAvailable reports whether the OpenCV backend was compiled in.
func ContourAvailable() bool { return false }

// Detect always fails: this build has no OpenCV backend.
func (d *ContourDetector) Detect(ctx context.Context, img image.Image) (*geometry.Quad, error) {
	_ = ctx
	_ = img
	return nil, errors.WithHint(ErrBackendUnavailable, "rebuild with -tags gocv to enable contour detection")
}
