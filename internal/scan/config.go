package scan

import "github.com/cockroachdb/errors"

// ErrInvalidConfig is returned when a Config cannot drive a Stabilizer.
var ErrInvalidConfig = errors.New("invalid stabilizer config")

// Config holds the Stabilizer tuning. It is fixed for the lifetime of a
// Stabilizer.
type Config struct {
	// MinCorrectFrames is the history length at which Update events start.
	MinCorrectFrames int `json:"min_correct_frames" mapstructure:"min_correct_frames"`
	// MaxDroppedFrames is the number of observations without a quad that
	// are tolerated before the history is discarded.
	MaxDroppedFrames int `json:"max_dropped_frames" mapstructure:"max_dropped_frames"`
	// FrameBufferSize bounds the history; filling it finishes the scan.
	FrameBufferSize int `json:"frame_buffer_size" mapstructure:"frame_buffer_size"`
	// Threshold is the per-axis corner tolerance in normalized units.
	Threshold float64 `json:"threshold" mapstructure:"threshold"`
}

// DefaultConfig returns the tuning used by the camera scanner: lock after
// 64 consistent frames, report progress from the 8th.
func DefaultConfig() Config {
	return Config{
		MinCorrectFrames: 8,
		MaxDroppedFrames: 5,
		FrameBufferSize:  64,
		Threshold:        0.05,
	}
}

// Validate reports whether c can drive a Stabilizer.
func (c Config) Validate() error {
	switch {
	case c.MinCorrectFrames <= 0:
		return errors.Wrapf(ErrInvalidConfig, "min_correct_frames must be positive, got %d", c.MinCorrectFrames)
	case c.MaxDroppedFrames <= 0:
		return errors.Wrapf(ErrInvalidConfig, "max_dropped_frames must be positive, got %d", c.MaxDroppedFrames)
	case c.FrameBufferSize <= 0:
		return errors.Wrapf(ErrInvalidConfig, "frame_buffer_size must be positive, got %d", c.FrameBufferSize)
	case !(c.Threshold > 0):
		return errors.Wrapf(ErrInvalidConfig, "threshold must be positive, got %g", c.Threshold)
	case c.MinCorrectFrames > c.FrameBufferSize:
		return errors.WithHint(
			errors.Wrapf(ErrInvalidConfig, "min_correct_frames %d exceeds frame_buffer_size %d",
				c.MinCorrectFrames, c.FrameBufferSize),
			"a stabilizer whose window is smaller than min_correct_frames can never report progress")
	}
	return nil
}
