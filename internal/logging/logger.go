// Package logging builds the zap logger used by a pipeline run.
//
// A run logs to two places: a human readable console stream on stderr and a
// dated file under the configured log directory (etl_DD-MM-YYYY.log).
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/ginjaninja78/sales-etl/pkg/utils"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls logger construction.
type Options struct {
	// Level is one of debug, info, warn, error. Unknown values mean info.
	Level string

	// Dir receives the dated log file. Empty disables the file sink.
	Dir string

	// Date names the log file.
	Date civil.Date
}

// New returns a logger writing to stderr and, when opts.Dir is set, to the
// dated log file. The returned close function syncs and closes the file.
func New(opts Options) (*zap.Logger, func(), error) {
	level := ParseLevel(opts.Level)

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), level),
	}

	closeFn := func() {}
	if opts.Dir != "" {
		path := filepath.Join(opts.Dir, FileName(opts.Date))
		if err := utils.EnsureParentDir(path); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(file), level))
		closeFn = func() { _ = file.Sync(); _ = file.Close() }
	}

	logger := zap.New(zapcore.NewTee(cores...))
	return logger, func() { _ = logger.Sync(); closeFn() }, nil
}

// FileName returns the log file name for a run date.
func FileName(date civil.Date) string {
	return "etl_" + utils.DayStamp(date) + ".log"
}

// ParseLevel converts a textual level to a zap level.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
