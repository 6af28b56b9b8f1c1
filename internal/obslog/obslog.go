// Package obslog is the logging facade shared by every reader, loader,
// and emitter in the core: a small Logger/Helper/Filter surface in the
// style of go-kratos/kratos, built on top of
// github.com/sirupsen/logrus.
package obslog

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Level is a logging severity, matching kratos log.Level's four-level
// scheme.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) toLogrus() logrus.Level {
	switch l {
	case LevelDebug:
		return logrus.DebugLevel
	case LevelInfo:
		return logrus.InfoLevel
	case LevelWarn:
		return logrus.WarnLevel
	default:
		return logrus.ErrorLevel
	}
}

// Logger is the minimal structured-logging contract the core depends on.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// entryLogger adapts a *logrus.Logger to Logger.
type entryLogger struct {
	l *logrus.Logger
}

func (e *entryLogger) Debugf(format string, args ...interface{}) { e.l.Debugf(format, args...) }
func (e *entryLogger) Infof(format string, args ...interface{})  { e.l.Infof(format, args...) }
func (e *entryLogger) Warnf(format string, args ...interface{})  { e.l.Warnf(format, args...) }
func (e *entryLogger) Errorf(format string, args ...interface{}) { e.l.Errorf(format, args...) }

// NewStdLogger builds a Logger writing to w.
func NewStdLogger(w io.Writer) Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.DebugLevel)
	return &entryLogger{l: l}
}

// FilterOption configures NewFilter.
type FilterOption func(*filterLogger)

// FilterLevel sets the minimum level a NewFilter-wrapped Logger passes
// through.
func FilterLevel(level Level) FilterOption {
	return func(f *filterLogger) { f.level = level }
}

type filterLogger struct {
	next  Logger
	level Level
}

func (f *filterLogger) setLevel(inner Logger) {
	if e, ok := inner.(*entryLogger); ok {
		e.l.SetLevel(f.level.toLogrus())
	}
}

func (f *filterLogger) Debugf(format string, args ...interface{}) {
	if f.level <= LevelDebug {
		f.next.Debugf(format, args...)
	}
}
func (f *filterLogger) Infof(format string, args ...interface{}) {
	if f.level <= LevelInfo {
		f.next.Infof(format, args...)
	}
}
func (f *filterLogger) Warnf(format string, args ...interface{}) {
	if f.level <= LevelWarn {
		f.next.Warnf(format, args...)
	}
}
func (f *filterLogger) Errorf(format string, args ...interface{}) {
	if f.level <= LevelError {
		f.next.Errorf(format, args...)
	}
}

// NewFilter wraps logger so only records at or above the configured
// level pass through.
func NewFilter(logger Logger, opts ...FilterOption) Logger {
	f := &filterLogger{next: logger, level: LevelInfo}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Helper wraps a Logger, in the shape of kratos log.Helper.
type Helper struct {
	Logger
}

// NewHelper wraps logger in a Helper.
func NewHelper(logger Logger) *Helper {
	return &Helper{Logger: logger}
}

// With returns a Helper over the same underlying logger. The key/value
// pair is not attached to any record.
func (h *Helper) With(key string, value interface{}) *Helper {
	if e, ok := h.Logger.(*entryLogger); ok {
		return &Helper{Logger: &entryLogger{l: e.l}}
	}
	return h
}

// Default is the process-wide logger used by packages that don't take an
// explicit Logger (the plugin ABI has no room to thread one through C
// entry points).
var defaultBase = NewStdLogger(os.Stderr).(*entryLogger)
var Default = NewHelper(NewFilter(defaultBase, FilterLevel(LevelError)))

// SetVerbose toggles Default between error-only and debug-level output,
// backing heimdall_set_verbose.
func SetVerbose(verbose bool) {
	level := LevelError
	if verbose {
		level = LevelDebug
	}
	if f, ok := Default.Logger.(*filterLogger); ok {
		f.level = level
	}
	defaultBase.l.SetLevel(level.toLogrus())
}
