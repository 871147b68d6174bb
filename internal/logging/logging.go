// Package logging builds the zap loggers used across docscan-mcp.
//
// Logs always go to stderr: when serving MCP over stdio, stdout carries
// the protocol stream and must stay clean.
package logging

import (
	"os"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Standard field names for structured log lines.
const (
	FieldStabilizer = "stabilizer"
	FieldEvent      = "event"
	FieldHistory    = "history"
	FieldDropped    = "dropped"
	FieldWidth      = "width"
	FieldHeight     = "height"
	FieldTool       = "tool"
	FieldSession    = "session"
	FieldPath       = "path"
	FieldError      = "error"
	FieldQuad       = "quad"
	FieldReason     = "reason"
)

// New returns a logger at the given level ("debug", "info", "warn",
// "error"). json selects machine-readable output instead of the console
// encoder.
func New(level string, json bool) (*zap.SugaredLogger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", level)
	}
	return zap.New(newCore(lvl, json, zapcore.Lock(os.Stderr))).Sugar(), nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func newCore(level zapcore.Level, json bool, out zapcore.WriteSyncer) zapcore.Core {
	var encoder zapcore.Encoder
	if json {
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(cfg)
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		cfg.EncodeCaller = zapcore.ShortCallerEncoder
		encoder = zapcore.NewConsoleEncoder(cfg)
	}
	return zapcore.NewCore(encoder, out, level)
}
