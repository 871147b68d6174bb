package detection

// ContourDetector finds a page as the largest four-sided contour in an
// edge map. Zero fields fall back to the NewContourDetector defaults.
type ContourDetector struct {
	// MinAreaRatio is the smallest accepted contour area as a fraction of
	// the image area.
	MinAreaRatio float64
	// Epsilon scales the contour perimeter into the polygon approximation
	// tolerance.
	Epsilon float64
	// CannyLow and CannyHigh are the hysteresis thresholds of the edge pass.
	CannyLow  float32
	CannyHigh float32
}

// NewContourDetector returns a ContourDetector tuned for a page that fills
// a good part of the frame.
func NewContourDetector() *ContourDetector {
	return &ContourDetector{
		MinAreaRatio: 0.1,
		Epsilon:      0.02,
		CannyLow:     50,
		CannyHigh:    150,
	}
}

func (d *ContourDetector) withDefaults() ContourDetector {
	def := NewContourDetector()
	c := *d
	if c.MinAreaRatio <= 0 {
		c.MinAreaRatio = def.MinAreaRatio
	}
	if c.Epsilon <= 0 {
		c.Epsilon = def.Epsilon
	}
	if c.CannyLow <= 0 {
		c.CannyLow = def.CannyLow
	}
	if c.CannyHigh <= 0 {
		c.CannyHigh = def.CannyHigh
	}
	return c
}
