package logutil

type Log interface {
	Fatalf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Debugf(key string, format string, args ...interface{})

	Child(name string) Log
	SetLevel(level LogLevel)
}

type LogLevel int

const (
	// LogLevelDebug controls the most detailed logs, disabled by default:
	// enable concrete debug keys via the DEBUG env var.
	LogLevelDebug LogLevel = iota

	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

type Func func(format string, args ...interface{})
