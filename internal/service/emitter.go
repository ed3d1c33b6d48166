package service

import (
	"context"

	"gridbase/logger"
)

// ─────────────────────────────────────────────────────────────
// EventEmitter — decouples the sync service from its host surface
// ─────────────────────────────────────────────────────────────

// EventEmitter is an interface for announcing sync lifecycle events.
// The serve daemon logs them; an embedding application can forward
// them wherever it likes. Services receive this interface instead of
// a concrete sink, which makes them independently testable.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// LogEmitter writes every event to the structured log at info level.
type LogEmitter struct {
	Log logger.Interface
}

func (l *LogEmitter) Emit(_ context.Context, event string, data any) {
	l.Log.Info("event", "name", event, "data", data)
}

// MockEmitter is a test-friendly EventEmitter that records all calls.
type MockEmitter struct {
	Events []EmittedEvent
}

// EmittedEvent holds a single recorded emission for test assertions.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.Events = append(m.Events, EmittedEvent{Event: event, Data: data})
}
