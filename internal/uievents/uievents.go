// Package uievents defines the narrow interface the bootstrap subsystem uses
// to publish UI-bound events ("ssh_prompt" being the only one defined by the
// spec) without depending on any particular UI framework.
package uievents

import "log/slog"

// Emitter publishes a named event with an arbitrary JSON-serializable
// payload to whatever is listening on the UI side.
type Emitter interface {
	Emit(event string, payload any)
}

// LogEmitter emits events as structured log lines — the default when no UI
// is attached (CLI-only usage, tests).
type LogEmitter struct {
	Logger *slog.Logger
}

func NewLogEmitter(logger *slog.Logger) *LogEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogEmitter{Logger: logger}
}

func (e *LogEmitter) Emit(event string, payload any) {
	e.Logger.Info("ui event", "event", event, "payload", payload)
}

// ChannelEmitter fans events out over a buffered channel, consumed by the
// watch TUI dashboard. Emit never blocks: a full channel drops the event
// rather than stall the caller (typically an askpass connection handler).
type ChannelEmitter struct {
	ch chan Event
}

// Event is one published occurrence, queued for the watch TUI to render.
type Event struct {
	Name    string
	Payload any
}

func NewChannelEmitter(buffer int) *ChannelEmitter {
	return &ChannelEmitter{ch: make(chan Event, buffer)}
}

func (e *ChannelEmitter) Emit(event string, payload any) {
	select {
	case e.ch <- Event{Name: event, Payload: payload}:
	default:
	}
}

// Events returns the read side of the channel for a consumer to range over.
func (e *ChannelEmitter) Events() <-chan Event { return e.ch }

// MultiEmitter fans a single Emit out to every wrapped Emitter, letting the
// CLI log every event while also feeding the watch dashboard's queue.
type MultiEmitter struct {
	targets []Emitter
}

func NewMultiEmitter(targets ...Emitter) *MultiEmitter {
	return &MultiEmitter{targets: targets}
}

func (e *MultiEmitter) Emit(event string, payload any) {
	for _, t := range e.targets {
		t.Emit(event, payload)
	}
}
