package observability

import (
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LoggerConfig contains logger configuration
type LoggerConfig struct {
	Level   string    // debug, info, warn, error
	Format  string    // text or json
	Output  io.Writer // defaults to os.Stderr
	Service string
	Version string

	// File, when set, receives a copy of every entry and is rotated by size
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Logger provides structured logging on top of logrus
type Logger struct {
	entry *logrus.Entry
	file  *lumberjack.Logger
}

// NewLogger creates a new logger instance
func NewLogger(config LoggerConfig) *Logger {
	if config.Output == nil {
		config.Output = os.Stderr
	}

	base := logrus.New()
	base.SetLevel(LogLevelFromString(config.Level))

	if strings.EqualFold(config.Format, "json") {
		base.SetFormatter(&logrus.JSONFormatter{})
	} else {
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	var file *lumberjack.Logger
	if config.File != "" {
		file = &lumberjack.Logger{
			Filename:   config.File,
			MaxSize:    config.MaxSizeMB,
			MaxBackups: config.MaxBackups,
			MaxAge:     config.MaxAgeDays,
		}
		base.SetOutput(io.MultiWriter(config.Output, file))
	} else {
		base.SetOutput(config.Output)
	}

	fields := logrus.Fields{}
	if config.Service != "" {
		fields["service"] = config.Service
	}
	if config.Version != "" {
		fields["version"] = config.Version
	}

	return &Logger{entry: base.WithFields(fields), file: file}
}

// Close releases the rotated log file, if any
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// WithField returns a new logger with an additional field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value), file: l.file}
}

// WithFields returns a new logger with additional fields
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{entry: l.entry.WithFields(fields), file: l.file}
}

// WithError returns a new logger carrying err under the "error" key
func (l *Logger) WithError(err error) *Logger {
	return &Logger{entry: l.entry.WithError(err), file: l.file}
}

// WithRunID tags every entry with a run identifier. A logger that already
// carries one is returned unchanged, so nested steps share the caller's id.
func (l *Logger) WithRunID() (*Logger, string) {
	if id, ok := l.RunID(); ok {
		return l, id
	}
	id := uuid.NewString()
	return l.WithField("run_id", id), id
}

// RunID returns the run identifier attached by WithRunID
func (l *Logger) RunID() (string, bool) {
	id, ok := l.entry.Data["run_id"].(string)
	return id, ok
}

// Debug logs a debug message
func (l *Logger) Debug(msg string) {
	l.entry.Debug(msg)
}

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.entry.Debugf(format, args...)
}

// DebugWithFields logs a debug message with fields
func (l *Logger) DebugWithFields(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Debug(msg)
}

// Info logs an info message
func (l *Logger) Info(msg string) {
	l.entry.Info(msg)
}

// Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.entry.Infof(format, args...)
}

// InfoWithFields logs an info message with fields
func (l *Logger) InfoWithFields(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Info(msg)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string) {
	l.entry.Warn(msg)
}

// Warnf logs a formatted warning message
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.entry.Warnf(format, args...)
}

// Error logs an error message
func (l *Logger) Error(msg string) {
	l.entry.Error(msg)
}

// Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.entry.Errorf(format, args...)
}

// ErrorWithFields logs an error message with fields
func (l *Logger) ErrorWithFields(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Error(msg)
}

// SetLevel sets the minimum log level
func (l *Logger) SetLevel(level string) {
	l.entry.Logger.SetLevel(LogLevelFromString(level))
}

// LogLevelFromString converts a string to a logrus level, defaulting to info
func LogLevelFromString(level string) logrus.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return logrus.DebugLevel
	case "INFO":
		return logrus.InfoLevel
	case "WARN", "WARNING":
		return logrus.WarnLevel
	case "ERROR":
		return logrus.ErrorLevel
	case "FATAL":
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}

// Global logger instance
var defaultLogger = NewLogger(LoggerConfig{
	Level:   "info",
	Service: "featuredrop",
})

// SetDefaultLogger sets the global default logger
func SetDefaultLogger(logger *Logger) {
	defaultLogger = logger
}

// GetDefaultLogger returns the global default logger
func GetDefaultLogger() *Logger {
	return defaultLogger
}

// Package-level convenience functions

// Debugf logs a formatted debug message using the default logger
func Debugf(format string, args ...interface{}) {
	defaultLogger.Debugf(format, args...)
}

// Infof logs a formatted info message using the default logger
func Infof(format string, args ...interface{}) {
	defaultLogger.Infof(format, args...)
}

// Warnf logs a formatted warning message using the default logger
func Warnf(format string, args ...interface{}) {
	defaultLogger.Warnf(format, args...)
}

// Errorf logs a formatted error message using the default logger
func Errorf(format string, args ...interface{}) {
	defaultLogger.Errorf(format, args...)
}
