// Package eventstest provides an in-memory publisher for tests.
package eventstest

import (
	"context"
	"sync"

	"github.com/SAP-F-2025/examprep-service/internal/events"
)

// Recorder keeps every published event for later inspection.
type Recorder struct {
	mu     sync.Mutex
	events []events.Event
}

var _ events.EventPublisher = (*Recorder)(nil)

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(_ context.Context, event *events.Event) error {
	r.mu.Lock()
	r.events = append(r.events, *event)
	r.mu.Unlock()
	return nil
}

func (r *Recorder) Close() error { return nil }

// Published returns a snapshot of the recorded events.
func (r *Recorder) Published() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}
