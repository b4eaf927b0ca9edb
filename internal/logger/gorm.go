package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger adapts the global zap logger to gorm's logger.Interface.
// At gormlogger.Info every executed statement is logged.
type GormLogger struct {
	level gormlogger.LogLevel
}

// NewGormLogger returns a statement logger. With showSQL every statement is
// echoed at info level, otherwise only failed statements are logged.
func NewGormLogger(showSQL bool) *GormLogger {
	level := gormlogger.Error
	if showSQL {
		level = gormlogger.Info
	}

	return &GormLogger{level: level}
}

// LogMode returns a copy of the logger with the given level.
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	return &GormLogger{level: level}
}

// Info logs an informational ORM message.
func (l *GormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		Log.Infof(msg, args...)
	}
}

// Warn logs an ORM warning.
func (l *GormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		Log.Warnf(msg, args...)
	}
}

// Error logs an ORM error.
func (l *GormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		Log.Errorf(msg, args...)
	}
}

// Trace logs a single executed statement.
func (l *GormLogger) Trace(
	_ context.Context,
	begin time.Time,
	fc func() (sql string, rowsAffected int64),
	err error,
) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)

	switch {
	case err != nil && l.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		Log.Errorw("sql failed",
			"sql", sql,
			"rows", rows,
			"elapsed", elapsed,
			"error", err,
		)
	case l.level >= gormlogger.Info:
		sql, rows := fc()
		Log.Infow("sql",
			"sql", sql,
			"rows", rows,
			"elapsed", fmt.Sprintf("%.3fms", float64(elapsed.Nanoseconds())/1e6),
		)
	}
}
