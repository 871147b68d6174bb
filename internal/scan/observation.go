package scan

import (
	"github.com/ironsheep/docscan-mcp/internal/geometry"
	"github.com/ironsheep/docscan-mcp/internal/imaging"
)

// Observation is one frame's detection result. Quad is nil when the
// backend found nothing. Observations are passed by value and must not be
// modified once fed.
type Observation struct {
	Quad  *geometry.Quad
	Frame imaging.Frame
}

// HasQuad reports whether the backend produced a candidate for this frame.
func (o Observation) HasQuad() bool {
	return o.Quad != nil
}
