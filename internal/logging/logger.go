// Package logging builds the logr.Logger used by the command line tools.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ParseLevel maps a level name to a zap level. The empty string means info.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info", "":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q (expected debug, info, warn, or error)", level)
	}
}

// New returns a logger writing to stderr at the given level and a func that
// flushes buffered entries. Callers defer the flush.
func New(level string) (logr.Logger, func(), error) {
	return NewWithWriter(level, os.Stderr)
}

// NewWithWriter returns a logger writing console-encoded entries to w.
// Debug level enables logr V(1) messages.
func NewWithWriter(level string, w io.Writer) (logr.Logger, func(), error) {
	zapLevel, err := ParseLevel(level)
	if err != nil {
		return logr.Logger{}, func() {}, err
	}
	atomic := zap.NewAtomicLevelAt(zapLevel)

	encCfg := zap.NewDevelopmentEncoderConfig()
	if zapLevel > zapcore.DebugLevel {
		encCfg = zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), atomic)
	zl := zap.New(core)
	return zapr.NewLogger(zl), func() { _ = zl.Sync() }, nil
}
