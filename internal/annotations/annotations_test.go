package annotations

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorAccumulatesWithoutHandler(t *testing.T) {
	c := NewCollector(nil)
	c.Add(Event{Name: FilterFinalized, Data: map[string]any{"filterId": "f1"}})
	c.Add(Event{Name: SupplierError})

	events := c.Events()
	require.Len(t, events, 2)
	assert.Equal(t, FilterFinalized, events[0].Name)
	assert.Equal(t, SupplierError, events[1].Name)
}

func TestCollectorForwardsToHandler(t *testing.T) {
	var seen []Event
	c := NewCollector(func(e Event) { seen = append(seen, e) })

	c.Add(Event{Name: CollectorTickBegin})
	require.Len(t, seen, 1)
	assert.Equal(t, CollectorTickBegin, seen[0].Name)
}

func TestAddTimingRecordsElapsedLatency(t *testing.T) {
	c := NewCollector(nil)
	start := time.Now()
	time.Sleep(time.Millisecond)
	c.AddTiming(CollectorTickComplete, start, nil)

	events := c.Events()
	require.Len(t, events, 1)
	assert.GreaterOrEqual(t, events[0].Latency, time.Duration(0))
}

func TestResetClearsEventsButKeepsHandler(t *testing.T) {
	var calls int
	c := NewCollector(func(Event) { calls++ })
	c.Add(Event{Name: SupplierError})
	c.Reset()

	assert.Empty(t, c.Events())
	c.Add(Event{Name: SupplierError})
	assert.Equal(t, 2, calls, "handler should still fire after Reset")
}

func TestOutputFormatterRendersKnownEvents(t *testing.T) {
	var buf bytes.Buffer
	f := NewOutputFormatter(&buf)

	f.Handle(Event{Name: FilterFinalized, Data: map[string]any{"filterId": "f1", "queryId": "q1"}})
	assert.Contains(t, buf.String(), "f1")
	assert.Contains(t, buf.String(), "q1")
}

func TestOutputFormatterIgnoresUnknownEvents(t *testing.T) {
	f := NewOutputFormatter(&bytes.Buffer{})
	assert.Equal(t, "", f.Format(Event{Name: "unknown/event"}))
}
