package agent

import (
	"context"
	"sync"
)

// EventType names one kind of reasoning step.
type EventType string

const (
	EventThought     EventType = "thought"
	EventAction      EventType = "action"
	EventObservation EventType = "observation"
	EventAnswer      EventType = "answer"
	EventError       EventType = "error"
)

// Event is published for every reasoning step as it happens.
type Event struct {
	RunID string
	Step  int
	Type  EventType
	Tool  string
	Input string
	Text  string
}

// EventSink receives events while a run is in progress.
type EventSink interface {
	Publish(ctx context.Context, event Event) error
}

// SinkFunc adapts a function to EventSink.
type SinkFunc func(ctx context.Context, event Event) error

func (f SinkFunc) Publish(ctx context.Context, event Event) error { return f(ctx, event) }

type noopSink struct{}

func (noopSink) Publish(context.Context, Event) error { return nil }

// Recorder is an EventSink that keeps every event, safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
	return nil
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Fanout publishes to every sink in order and returns the first error.
type Fanout []EventSink

func (f Fanout) Publish(ctx context.Context, event Event) error {
	var first error
	for _, s := range f {
		if s == nil {
			continue
		}
		if err := s.Publish(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}
