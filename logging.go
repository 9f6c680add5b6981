package softbody

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// Logger is the leveled logger systems receive through App.Logger or
// Commands.Logger.
type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type logLevel int

const (
	levelDebug logLevel = iota
	levelInfo
	levelWarn
	levelError
)

func (l logLevel) String() string {
	switch l {
	case levelDebug:
		return "DEBUG"
	case levelInfo:
		return "INFO"
	case levelWarn:
		return "WARN"
	default:
		return "ERROR"
	}
}

// DefaultLogger writes debug and info lines to stdout, warnings and errors
// to stderr. Debug lines are dropped unless enabled at runtime.
type DefaultLogger struct {
	mu     sync.Mutex
	debug  bool
	prefix string
	out    *log.Logger
	err    *log.Logger
}

func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	return newLoggerTo(os.Stdout, os.Stderr, prefix, debug)
}

func newLoggerTo(out, errOut io.Writer, prefix string, debug bool) *DefaultLogger {
	flags := log.LstdFlags | log.Lmicroseconds
	return &DefaultLogger{
		debug:  debug,
		prefix: prefix,
		out:    log.New(out, "", flags),
		err:    log.New(errOut, "", flags),
	}
}

func (l *DefaultLogger) DebugEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debug
}

func (l *DefaultLogger) SetDebug(enabled bool) {
	l.mu.Lock()
	l.debug = enabled
	l.mu.Unlock()
}

func (l *DefaultLogger) emit(level logLevel, format string, args ...any) {
	if level == levelDebug && !l.DebugEnabled() {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if l.prefix != "" {
		msg = fmt.Sprintf("[%s] %s: %s", l.prefix, level, msg)
	} else {
		msg = fmt.Sprintf("%s: %s", level, msg)
	}
	if level >= levelWarn {
		l.err.Print(msg)
		return
	}
	l.out.Print(msg)
}

func (l *DefaultLogger) Debugf(format string, args ...any) { l.emit(levelDebug, format, args...) }
func (l *DefaultLogger) Infof(format string, args ...any)  { l.emit(levelInfo, format, args...) }
func (l *DefaultLogger) Warnf(format string, args ...any)  { l.emit(levelWarn, format, args...) }
func (l *DefaultLogger) Errorf(format string, args ...any) { l.emit(levelError, format, args...) }

// LoggingModule installs a DefaultLogger; install it first so later modules
// log their setup through it.
type LoggingModule struct {
	Prefix string
	Debug  bool
}

func (m LoggingModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(NewDefaultLogger(m.Prefix, m.Debug))
}

// NopLogger discards everything. Headless apps and tests get it when no
// LoggingModule is installed.
type NopLogger struct{}

func NewNopLogger() Logger { return NopLogger{} }

func (NopLogger) DebugEnabled() bool    { return false }
func (NopLogger) SetDebug(bool)         {}
func (NopLogger) Debugf(string, ...any) {}
func (NopLogger) Infof(string, ...any)  {}
func (NopLogger) Warnf(string, ...any)  {}
func (NopLogger) Errorf(string, ...any) {}

// Logger never returns nil.
func (app *App) Logger() Logger {
	if app == nil {
		return NopLogger{}
	}
	if l, ok := Resource[DefaultLogger](app); ok {
		return l
	}
	return NopLogger{}
}
