package logger

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

// SQLOptions tune which statements reach the log and how much of them
type SQLOptions struct {
	// SlowThreshold marks a statement slow; zero disables slow reporting
	SlowThreshold time.Duration
	// FullSQL keeps bound literals. Order and user rows carry addresses and
	// phone numbers, so literals are masked unless this is set.
	FullSQL bool
	// LogNotFound reports gorm.ErrRecordNotFound as a failure. Lookups by
	// email or gateway order id miss routinely.
	LogNotFound bool
}

// SQLLogger routes gorm's statement log through zap, tagged with the
// request and trace ids found on the context
type SQLLogger struct {
	log   *zap.Logger
	level gormlogger.LogLevel
	opts  SQLOptions
}

// NewSQLLogger builds a gorm logger whose verbosity follows the application
// log level name
func NewSQLLogger(log *zap.Logger, level string, opts SQLOptions) *SQLLogger {
	return &SQLLogger{
		log:   log.Named("sql"),
		level: sqlLevel(level),
		opts:  opts,
	}
}

// LogMode implements gormlogger.Interface
func (l *SQLLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

// Info implements gormlogger.Interface
func (l *SQLLogger) Info(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Info, zapcore.InfoLevel, msg, data)
}

// Warn implements gormlogger.Interface
func (l *SQLLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

// Error implements gormlogger.Interface
func (l *SQLLogger) Error(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

func (l *SQLLogger) printf(ctx context.Context, min gormlogger.LogLevel, lvl zapcore.Level, msg string, data []any) {
	if l.level < min {
		return
	}
	if ce := l.log.Check(lvl, fmt.Sprintf(msg, data...)); ce != nil {
		ce.Write(contextFields(ctx)...)
	}
}

// Trace implements gormlogger.Interface. Failures log at error, slow
// statements at warn and everything else at debug when the level is Info.
func (l *SQLLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	failed := err != nil && (l.opts.LogNotFound || !errors.Is(err, gormlogger.ErrRecordNotFound))
	slow := l.opts.SlowThreshold > 0 && elapsed >= l.opts.SlowThreshold

	var lvl zapcore.Level
	var msg string
	switch {
	case failed && l.level >= gormlogger.Error:
		lvl, msg = zapcore.ErrorLevel, "sql failed"
	case slow && l.level >= gormlogger.Warn:
		lvl, msg = zapcore.WarnLevel, "slow sql"
	case l.level >= gormlogger.Info:
		lvl, msg = zapcore.DebugLevel, "sql"
	default:
		return
	}

	ce := l.log.Check(lvl, msg)
	if ce == nil {
		return
	}
	stmt, rows := fc()
	if !l.opts.FullSQL {
		stmt = maskLiterals(stmt)
	}
	fields := append(contextFields(ctx),
		zap.String("statement", stmt),
		zap.Duration("elapsed", elapsed),
	)
	// gorm reports -1 for statements that do not count rows
	if rows >= 0 {
		fields = append(fields, zap.Int64("rows", rows))
	}
	if slow {
		fields = append(fields, zap.Duration("threshold", l.opts.SlowThreshold))
	}
	if failed {
		fields = append(fields, zap.Error(err))
	}
	ce.Write(fields...)
}

func contextFields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if id := GetTraceID(ctx); id != "" {
		fields = append(fields, zap.String("trace_id", id))
	}
	return fields
}

// sqlLevel maps the application log level onto gorm's coarser scale.
// Statements only show up at debug.
func sqlLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent", "off":
		return gormlogger.Silent
	case "error", "fatal":
		return gormlogger.Error
	case "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

var quotedLiteral = regexp.MustCompile(`'(?:[^']|'')*'`)

func maskLiterals(stmt string) string {
	return quotedLiteral.ReplaceAllString(stmt, "'?'")
}
