package logger

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Zerolog adapts a zerolog.Logger to Interface.
type Zerolog struct {
	Logger zerolog.Logger
	Level  LogLevel
}

// NewZerolog wraps an existing zerolog logger.
func NewZerolog(logger zerolog.Logger, config Config) *Zerolog {
	return &Zerolog{
		Logger: logger,
		Level:  config.Level,
	}
}

// New builds a console-writer zerolog adapter at the configured level.
func New(config Config) *Zerolog {
	consoleWriter := zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
		w.TimeFormat = time.RFC3339
	})
	logger := zerolog.New(consoleWriter).
		Level(ZerologLevel(config.Level)).
		With().
		Timestamp().
		Logger()
	return NewZerolog(logger, config)
}

// LogMode returns a copy of the adapter gated at level. The receiver
// is not modified.
func (l *Zerolog) LogMode(level LogLevel) *Zerolog {
	newLogger := *l
	newLogger.Level = level
	return &newLogger
}

// Debug logs debug messages.
func (l *Zerolog) Debug(msg string, fields ...any) {
	if l.Level >= Debug {
		emit(l.Logger.Debug(), msg, fields)
	}
}

// Info logs info messages.
func (l *Zerolog) Info(msg string, fields ...any) {
	if l.Level >= Info {
		emit(l.Logger.Info(), msg, fields)
	}
}

// Warn logs warning messages.
func (l *Zerolog) Warn(msg string, fields ...any) {
	if l.Level >= Warn {
		emit(l.Logger.Warn(), msg, fields)
	}
}

// Error logs error messages.
func (l *Zerolog) Error(msg string, fields ...any) {
	if l.Level >= Error {
		emit(l.Logger.Error(), msg, fields)
	}
}

// emit attaches alternating key/value pairs to the event. A trailing
// key without a value is ignored.
func emit(event *zerolog.Event, msg string, fields []any) {
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			key = fmt.Sprint(fields[i])
		}
		event = event.Interface(key, fields[i+1])
	}
	event.Msg(msg)
}

// ZerologLevel converts LogLevel to zerolog.Level.
func ZerologLevel(level LogLevel) zerolog.Level {
	switch level {
	case Silent:
		return zerolog.Disabled
	case Error:
		return zerolog.ErrorLevel
	case Warn:
		return zerolog.WarnLevel
	case Info:
		return zerolog.InfoLevel
	case Debug:
		return zerolog.DebugLevel
	default:
		return zerolog.InfoLevel
	}
}
