package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger provides structured logging for the pipeline
type Logger struct {
	prefix string
	entry  *logrus.Entry
}

// NewLogger creates a new logger with a component prefix
func NewLogger(prefix string) *Logger {
	base := logrus.New()
	base.SetOutput(os.Stdout)
	base.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	return &Logger{
		prefix: prefix,
		entry:  base.WithField("component", prefix),
	}
}

// SetDebug toggles debug-level output on the underlying logger
func (l *Logger) SetDebug(enabled bool) {
	if enabled {
		l.entry.Logger.SetLevel(logrus.DebugLevel)
	} else {
		l.entry.Logger.SetLevel(logrus.InfoLevel)
	}
}

// WithRun returns a logger scoped to one processing run
func (l *Logger) WithRun(runID string) *Logger {
	return &Logger{
		prefix: l.prefix,
		entry:  l.entry.WithField("run_id", runID),
	}
}

// Info logs an informational message with key-value pairs
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.withKV(keysAndValues...).Info(msg)
}

// Warn logs a warning message with key-value pairs
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.withKV(keysAndValues...).Warn(msg)
}

// Error logs an error message with key-value pairs
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.withKV(keysAndValues...).Error(msg)
}

// Debug logs a debug message with key-value pairs
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.withKV(keysAndValues...).Debug(msg)
}

func (l *Logger) withKV(keysAndValues ...interface{}) *logrus.Entry {
	entry := l.entry
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		entry = entry.WithField(key, keysAndValues[i+1])
	}
	return entry
}
