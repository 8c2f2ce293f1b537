package dynfilter

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sqlcoord/dynfilter/domain"
	"github.com/sqlcoord/dynfilter/internal/signal"
)

// queryContext holds the mutable aggregation state for one query. It is
// created by Registry.Register, mutated only by the collector, and
// dropped by Registry.Remove. Consumer handles hold a shared reference
// and may legally outlive removal: they just never see any more filters
// arrive.
type queryContext struct {
	supplier   Supplier
	expected   map[domain.FilterId]struct{}
	replicated map[domain.FilterId]struct{}

	// summaries is insert-only: once a key is present its value never
	// changes. sync.Map gives consumer handles lock-free reads against
	// the collector's single-writer updates.
	summaries sync.Map // domain.FilterId -> domain.Domain

	// signals holds one Cell per lazy filter, fired exactly once at the
	// same linearization point its entry is added to summaries.
	signals map[domain.FilterId]*signal.Cell

	completed atomic.Bool

	// mu serializes addDynamicFilters against itself (the collector calls
	// it from at most one goroutine per query per tick, but guards
	// against overlapping ticks for the same query).
	mu sync.Mutex
}

func newQueryContext(supplier Supplier, expected, lazy, replicated map[domain.FilterId]struct{}) *queryContext {
	qc := &queryContext{
		supplier:   supplier,
		expected:   expected,
		replicated: replicated,
		signals:    make(map[domain.FilterId]*signal.Cell, len(lazy)),
	}
	for id := range lazy {
		qc.signals[id] = signal.New()
	}
	return qc
}

// addDynamicFilters installs newly finalized domains atomically: each
// insert must not already exist, each insert of a lazy filter fires its
// readiness signal immediately after the insert, and completed is
// recomputed once the whole batch has landed.
func (qc *queryContext) addDynamicFilters(batch map[domain.FilterId]domain.Domain) {
	if len(batch) == 0 {
		return
	}

	qc.mu.Lock()
	defer qc.mu.Unlock()

	for id, d := range batch {
		if _, exists := qc.summaries.Load(id); exists {
			panic(fmt.Sprintf("dynfilter: filter %q finalized twice", id))
		}
		qc.summaries.Store(id, d)

		if cell, ok := qc.signals[id]; ok {
			cell.Fire()
		}
	}

	if qc.allSummariesPresent() {
		qc.completed.Store(true)
	}
}

func (qc *queryContext) allSummariesPresent() bool {
	for id := range qc.expected {
		if _, ok := qc.summaries.Load(id); !ok {
			return false
		}
	}
	return true
}

// domainFor returns the finalized domain for id, if present.
func (qc *queryContext) domainFor(id domain.FilterId) (domain.Domain, bool) {
	v, ok := qc.summaries.Load(id)
	if !ok {
		return nil, false
	}
	return v.(domain.Domain), true
}

// uncollected returns expected minus whatever summaries already hold, the
// work list for one collector tick.
func (qc *queryContext) uncollected() map[domain.FilterId]struct{} {
	out := make(map[domain.FilterId]struct{})
	for id := range qc.expected {
		if _, ok := qc.summaries.Load(id); !ok {
			out[id] = struct{}{}
		}
	}
	return out
}

func (qc *queryContext) isCompleted() bool {
	return qc.completed.Load()
}

// signalFor returns the lazy-filter readiness cell for id, if it is lazy
// in this context. Non-lazy filters have no cell: they're either already
// present in summaries or not requested yet, and the caller treats the
// absence as "already ready".
func (qc *queryContext) signalFor(id domain.FilterId) (*signal.Cell, bool) {
	c, ok := qc.signals[id]
	return c, ok
}

// blockedOn returns an AnyOf combinator over the still-pending signals
// among ids.
func (qc *queryContext) blockedOn(ctx context.Context, ids []domain.FilterId) <-chan struct{} {
	var pending []*signal.Cell
	for _, id := range ids {
		if cell, ok := qc.signals[id]; ok && !cell.Fired() {
			pending = append(pending, cell)
		}
	}
	return signal.AnyOf(ctx, pending...)
}
