package rectify

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Origin names the corner that normalized input coordinates are measured
// from.
type Origin int

const (
	// OriginBottomLeft is the convention of camera-side vision backends:
	// y grows upward from the bottom edge.
	OriginBottomLeft Origin = iota
	// OriginTopLeft matches image space: y grows downward.
	OriginTopLeft
)

// String returns the configuration name of o.
func (o Origin) String() string {
	if o == OriginTopLeft {
		return "top-left"
	}
	return "bottom-left"
}

// ParseOrigin maps a configuration name to an Origin. The empty string
// selects OriginBottomLeft.
func ParseOrigin(name string) (Origin, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "bottom-left", "bottom_left", "bottomleft":
		return OriginBottomLeft, nil
	case "top-left", "top_left", "topleft":
		return OriginTopLeft, nil
	default:
		return OriginBottomLeft, errors.Newf("unknown origin %q (want bottom-left or top-left)", name)
	}
}
