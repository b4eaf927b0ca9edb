// Package logger provides structured logging functionality
// using the Uber zap logging library. It supports log levels, an optional
// rotated log file and an adapter that routes ORM statements through zap.
package logger

import (
	"errors"
	"os"
	"strings"
	"syscall"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is a global SugaredLogger instance from the zap logging library.
// It is a no-op logger until Init is called.
var Log = zap.NewNop().Sugar()

type initOptions struct {
	filePath   string
	maxSize    int
	maxBackups int
	maxAge     int
}

// InitOption customises Init.
type InitOption func(*initOptions)

// WithFile additionally writes JSON log entries to a size-rotated file.
func WithFile(path string, maxSizeMB, maxBackups, maxAgeDays int) InitOption {
	return func(options *initOptions) {
		options.filePath = path
		options.maxSize = maxSizeMB
		options.maxBackups = maxBackups
		options.maxAge = maxAgeDays
	}
}

func normalizeLevel(level string) string {
	if strings.EqualFold(level, "warning") {
		return "warn"
	}

	return level
}

// Init initializes the global logger configuration.
// It sets the output destinations and global log level.
func Init(level string, optionsProto ...InitOption) error {
	options := &initOptions{}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	lvl, err := zap.ParseAtomicLevel(normalizeLevel(level))
	if err != nil {
		return err
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = lvl
	zl, err := cfg.Build()
	if err != nil {
		return err
	}

	if options.filePath != "" {
		fileCore := zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(&lumberjack.Logger{
				Filename:   options.filePath,
				MaxSize:    options.maxSize,
				MaxBackups: options.maxBackups,
				MaxAge:     options.maxAge,
			}),
			lvl,
		)
		zl = zl.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewTee(core, fileCore)
		}))
	}

	Log = zl.Sugar()

	return nil
}

// Sync flushes any buffered log entries to the output.
// It should be called when shutting down to ensure all logs are written.
// Console outputs that cannot be synced (pipes, terminals) are not an error.
func Sync() error {
	err := Log.Sync()
	if err != nil &&
		!errors.Is(err, os.ErrInvalid) &&
		!errors.Is(err, syscall.EINVAL) &&
		!errors.Is(err, syscall.ENOTTY) {
		return err
	}

	return nil
}
