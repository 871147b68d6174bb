package imaging

import (
	"image"
	"strings"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"github.com/cockroachdb/errors"
)

// EnhanceMode selects the filter applied to a rectified page.
type EnhanceMode string

const (
	// EnhanceNone leaves the page untouched.
	EnhanceNone EnhanceMode = "none"
	// EnhanceGrayscale drops color.
	EnhanceGrayscale EnhanceMode = "grayscale"
	// EnhanceDocument is grayscale with extra contrast and a sharpen pass,
	// which keeps printed text crisp on unevenly lit paper.
	EnhanceDocument EnhanceMode = "document"
	// EnhanceBinary thresholds the page to pure black and white.
	EnhanceBinary EnhanceMode = "binary"
)

const (
	documentContrast = 0.35
	binaryLevel      = 140
)

// ParseEnhanceMode maps a user supplied name to an EnhanceMode. The empty
// string selects EnhanceNone.
func ParseEnhanceMode(name string) (EnhanceMode, error) {
	switch mode := EnhanceMode(strings.ToLower(strings.TrimSpace(name))); mode {
	case "":
		return EnhanceNone, nil
	case EnhanceNone, EnhanceGrayscale, EnhanceDocument, EnhanceBinary:
		return mode, nil
	default:
		return EnhanceNone, errors.Newf("unknown enhance mode %q", name)
	}
}

// Enhance applies mode to img and returns a new image. The input is never
// modified. Unknown modes behave like EnhanceNone.
func Enhance(img image.Image, mode EnhanceMode) image.Image {
	switch mode {
	case EnhanceGrayscale:
		return effect.Grayscale(img)
	case EnhanceDocument:
		gray := effect.Grayscale(img)
		return effect.Sharpen(adjust.Contrast(gray, documentContrast))
	case EnhanceBinary:
		return segment.Threshold(img, binaryLevel)
	default:
		return img
	}
}
