package logger

// ── Logging interface ───────────────────────────────────────
// Small structured-logging surface the library writes to. Fields are
// alternating key/value pairs. Callers plug in the zerolog adapter or
// anything else that satisfies Interface; the default is Nop so the
// library stays quiet unless asked.

// Interface is implemented by loggers the client and services accept.
type Interface interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)
	Error(msg string, fields ...any)
}

// LogLevel gates adapter output.
type LogLevel int

const (
	// Silent drops everything.
	Silent LogLevel = iota
	// Error prints errors only.
	Error
	// Warn prints warnings and errors.
	Warn
	// Info prints info, warnings and errors.
	Info
	// Debug prints everything.
	Debug
)

// Config tunes an adapter.
type Config struct {
	Level LogLevel
}

// Nop discards all output.
var Nop Interface = nop{}

type nop struct{}

func (nop) Debug(string, ...any) {}
func (nop) Info(string, ...any)  {}
func (nop) Warn(string, ...any)  {}
func (nop) Error(string, ...any) {}
