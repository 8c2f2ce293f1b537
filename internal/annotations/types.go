// Package annotations is a low-overhead event collector for observing the
// dynamic filter service from the outside: tick boundaries, per-filter
// finalization, and supplier failures, without coupling the collection
// path to any particular sink.
package annotations

import (
	"sync"
	"time"
)

// Event names, hierarchical so a sink can filter by prefix.
const (
	CollectorTickBegin    = "collector/tick.begin"
	CollectorTickComplete = "collector/tick.complete"
	FilterFinalized       = "filter/finalized"
	SupplierError         = "supplier/error"
)

// Event is a single observed occurrence, optionally timed.
type Event struct {
	Name    string
	Start   time.Time
	End     time.Time
	Latency time.Duration
	Data    map[string]any
}

// Handler processes events as they occur.
type Handler func(Event)

// Collector accumulates events and forwards them to an optional Handler.
// A nil handler still accumulates events; Collector itself never blocks
// the caller beyond appending to its own buffer.
type Collector struct {
	handler Handler

	mu     sync.Mutex
	events []Event
}

// NewCollector returns a Collector that forwards to handler (which may be
// nil: Events() and Reset() still work, just nothing is notified live).
func NewCollector(handler Handler) *Collector {
	return &Collector{
		handler: handler,
		events:  make([]Event, 0, 64),
	}
}

// Add records event and, if a handler is set, forwards it outside the lock.
func (c *Collector) Add(event Event) {
	c.mu.Lock()
	c.events = append(c.events, event)
	c.mu.Unlock()

	if c.handler != nil {
		c.handler(event)
	}
}

// AddTiming records an event whose latency is measured from start to now.
func (c *Collector) AddTiming(name string, start time.Time, data map[string]any) {
	end := time.Now()
	c.Add(Event{
		Name:    name,
		Start:   start,
		End:     end,
		Latency: end.Sub(start),
		Data:    data,
	})
}

// Events returns a copy of every event recorded so far.
func (c *Collector) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

// Reset clears recorded events; the handler is left attached.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = c.events[:0]
}
