// Package events provides the notification bus between the single
// mutator thread and the renderer: the mutator publishes change
// descriptors, the renderer drains them on its own tick. Background
// workers publish through the same bus instead of calling UI code.
package events

import (
	"sync"
)

// Event is a change descriptor published on the bus.
type Event interface {
	Type() string
}

// LayerChanged signals that a container's content changed and its view
// needs a redraw.
type LayerChanged struct {
	LayerName string
}

func (LayerChanged) Type() string { return "layer.changed" }

// SelectionChanged signals that the global selection moved.
type SelectionChanged struct{}

func (SelectionChanged) Type() string { return "selection.changed" }

// JobProgress mirrors a background job's published progress value.
type JobProgress struct {
	JobID   string
	Percent int
}

func (JobProgress) Type() string { return "job.progress" }

// RedrawNeeded is a coarse repaint hint, published for example when a
// batch of thumbnails lands on disk.
type RedrawNeeded struct {
	Reason string
}

func (RedrawNeeded) Type() string { return "redraw.needed" }

// Handler consumes one event during a Drain.
type Handler func(Event)

// Bus queues published events until the consumer's next tick. Publish
// is safe from any goroutine; Drain is meant to be called by a single
// consumer.
type Bus struct {
	mu       sync.Mutex
	queue    []Event
	handlers map[string][]Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
	}
}

// Subscribe registers a handler invoked during Drain for events of the
// given type.
func (b *Bus) Subscribe(eventType string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], h)
}

// Publish enqueues an event for the next Drain.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	b.queue = append(b.queue, e)
	b.mu.Unlock()
}

// Pending reports whether any events are waiting.
func (b *Bus) Pending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue) > 0
}

// Drain removes and returns every queued event, invoking subscribed
// handlers along the way. Called by the renderer on its tick.
func (b *Bus) Drain() []Event {
	b.mu.Lock()
	queue := b.queue
	b.queue = nil
	handlers := b.handlers
	b.mu.Unlock()

	for _, e := range queue {
		for _, h := range handlers[e.Type()] {
			h(e)
		}
	}
	return queue
}
