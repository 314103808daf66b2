package aclproxy

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger is the logging surface the core calls on every "logged, not
// fatal" path. An embedder supplies its own implementation via
// SetLogger; the default wraps logrus.
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})

	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})

	// ChildLogger returns a Logger that annotates every message with
	// the given fields, e.g. the connection handle or transport under
	// discussion.
	ChildLogger(fields map[string]interface{}) Logger
}

var (
	loggerMu sync.Mutex
	logger   Logger = buildDefaultLogger()
)

// SetLogger replaces the package-level logger.
func SetLogger(l Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	logger = l
}

// GetLogger returns the package-level logger.
func GetLogger() Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	return logger
}

type defaultLogger struct {
	entry *logrus.Entry
}

func buildDefaultLogger() Logger {
	l := logrus.New()
	l.Formatter = &logrus.TextFormatter{DisableTimestamp: true}
	return &defaultLogger{entry: logrus.NewEntry(l)}
}

func (d *defaultLogger) Debug(args ...interface{}) { d.entry.Debug(args...) }
func (d *defaultLogger) Info(args ...interface{})  { d.entry.Info(args...) }
func (d *defaultLogger) Warn(args ...interface{})  { d.entry.Warn(args...) }
func (d *defaultLogger) Error(args ...interface{}) { d.entry.Error(args...) }

func (d *defaultLogger) Debugf(format string, args ...interface{}) { d.entry.Debugf(format, args...) }
func (d *defaultLogger) Infof(format string, args ...interface{})  { d.entry.Infof(format, args...) }
func (d *defaultLogger) Warnf(format string, args ...interface{})  { d.entry.Warnf(format, args...) }
func (d *defaultLogger) Errorf(format string, args ...interface{}) { d.entry.Errorf(format, args...) }

func (d *defaultLogger) ChildLogger(fields map[string]interface{}) Logger {
	return &defaultLogger{entry: d.entry.WithFields(logrus.Fields(fields))}
}
