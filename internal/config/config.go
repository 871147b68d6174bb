// Package config loads docscan-mcp settings from a TOML file and DOCSCAN_
// environment variables using Viper.
//
// Precedence (lowest to highest): built-in defaults, config file,
// environment. Environment keys are the dotted config keys upper-cased with
// dots replaced by underscores, for example DOCSCAN_STABILIZER_THRESHOLD.
package config

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ironsheep/docscan-mcp/internal/detection"
	"github.com/ironsheep/docscan-mcp/internal/imaging"
	"github.com/ironsheep/docscan-mcp/internal/rectify"
	"github.com/ironsheep/docscan-mcp/internal/scan"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DOCSCAN"

// Config is the complete application configuration.
type Config struct {
	Stabilizer scan.Config     `mapstructure:"stabilizer"`
	Rectifier  RectifierConfig `mapstructure:"rectifier"`
	Detection  DetectionConfig `mapstructure:"detection"`
	OCR        OCRConfig       `mapstructure:"ocr"`
	Log        LogConfig       `mapstructure:"log"`
}

// RectifierConfig tunes page rectification.
type RectifierConfig struct {
	MaxDimension int    `mapstructure:"max_dimension"`
	Enhance      string `mapstructure:"enhance"`
	Workers      int    `mapstructure:"workers"`
	Origin       string `mapstructure:"origin"`
}

// DetectionConfig tunes the detection backend and its sequence adapter.
type DetectionConfig struct {
	Workers      int     `mapstructure:"workers"`
	MaxFPS       float64 `mapstructure:"max_fps"`
	MinAreaRatio float64 `mapstructure:"min_area_ratio"`
}

// OCRConfig selects the Tesseract language.
type OCRConfig struct {
	Language string `mapstructure:"language"`
}

// LogConfig controls logger construction.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// SetDefaults configures default values for all configuration options.
func SetDefaults(v *viper.Viper) {
	stab := scan.DefaultConfig()
	v.SetDefault("stabilizer.min_correct_frames", stab.MinCorrectFrames)
	v.SetDefault("stabilizer.max_dropped_frames", stab.MaxDroppedFrames)
	v.SetDefault("stabilizer.frame_buffer_size", stab.FrameBufferSize)
	v.SetDefault("stabilizer.threshold", stab.Threshold)

	v.SetDefault("rectifier.max_dimension", 0) // Keep full resolution
	v.SetDefault("rectifier.enhance", string(imaging.EnhanceNone))
	v.SetDefault("rectifier.workers", 4)
	v.SetDefault("rectifier.origin", rectify.OriginBottomLeft.String())

	v.SetDefault("detection.workers", 1)
	v.SetDefault("detection.max_fps", 15.0)
	v.SetDefault("detection.min_area_ratio", detection.NewContourDetector().MinAreaRatio)

	v.SetDefault("ocr.language", "eng")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
}

// Default returns the built-in configuration.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Load reads configuration from path, which may be empty to use only
// defaults and the environment, and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Stabilizer.Validate(); err != nil {
		return errors.Wrap(err, "stabilizer")
	}
	if _, err := imaging.ParseEnhanceMode(c.Rectifier.Enhance); err != nil {
		return errors.Wrap(err, "rectifier.enhance")
	}
	if _, err := rectify.ParseOrigin(c.Rectifier.Origin); err != nil {
		return errors.Wrap(err, "rectifier.origin")
	}
	if c.Rectifier.MaxDimension < 0 {
		return errors.Newf("rectifier.max_dimension must not be negative, got %d", c.Rectifier.MaxDimension)
	}
	if c.Rectifier.Workers < 1 {
		return errors.Newf("rectifier.workers must be at least 1, got %d", c.Rectifier.Workers)
	}
	if c.Detection.Workers < 1 {
		return errors.Newf("detection.workers must be at least 1, got %d", c.Detection.Workers)
	}
	if c.Detection.MaxFPS < 0 {
		return errors.Newf("detection.max_fps must not be negative, got %g", c.Detection.MaxFPS)
	}
	if c.Detection.MinAreaRatio < 0 || c.Detection.MinAreaRatio >= 1 {
		return errors.Newf("detection.min_area_ratio must be in [0, 1), got %g", c.Detection.MinAreaRatio)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(err, "log.level")
	}
	return nil
}

// RectifyOptions translates the rectifier section. The config must have
// been validated.
func (c *Config) RectifyOptions(logger *zap.SugaredLogger) []rectify.Option {
	mode, _ := imaging.ParseEnhanceMode(c.Rectifier.Enhance)
	origin, _ := rectify.ParseOrigin(c.Rectifier.Origin)
	return []rectify.Option{
		rectify.WithMaxDimension(c.Rectifier.MaxDimension),
		rectify.WithEnhance(mode),
		rectify.WithWorkers(c.Rectifier.Workers),
		rectify.WithOrigin(origin),
		rectify.WithLogger(logger),
	}
}

// SequenceOptions translates the detection section for NewSequence.
func (c *Config) SequenceOptions(logger *zap.SugaredLogger) []detection.SequenceOption {
	return []detection.SequenceOption{
		detection.WithWorkers(c.Detection.Workers),
		detection.WithMaxFPS(c.Detection.MaxFPS),
		detection.WithLogger(logger),
	}
}

// ContourDetector returns the OpenCV detector tuned by the detection
// section.
func (c *Config) ContourDetector() *detection.ContourDetector {
	d := detection.NewContourDetector()
	if c.Detection.MinAreaRatio > 0 {
		d.MinAreaRatio = c.Detection.MinAreaRatio
	}
	return d
}
