package dynfilter

import (
	"context"
	"sync"

	"github.com/sqlcoord/dynfilter/domain"
)

// Symbol is a plan-side variable name, the same namespace scan-filter
// expressions and join nodes use to refer to a dynamic filter's column.
type Symbol string

// Descriptor names one dynamic filter a scan operator intends to use and
// the symbol its expression applies to.
type Descriptor struct {
	FilterId domain.FilterId
	Symbol   Symbol
}

// DynamicFilter is the view a probe-side scan operator consumes: the
// best-known predicate so far, whether it is final, and an awaitable that
// wakes the scan whenever the set of ready filters grows.
type DynamicFilter interface {
	// IsComplete reports whether every requested filter has a finalized
	// domain.
	IsComplete() bool
	// CurrentPredicate recomputes (or, once complete, returns the
	// memoized) best-known TupleDomain.
	CurrentPredicate() domain.TupleDomain
	// Blocked returns a channel that closes when any one of the
	// currently-pending requested filters becomes ready, or when ctx is
	// cancelled. Callers re-call Blocked in a loop until IsComplete or
	// their own cancellation fires.
	Blocked(ctx context.Context) <-chan struct{}
}

// Factory builds DynamicFilter views over a Registry.
type Factory struct {
	registry *Registry
}

// NewFactory returns a Factory over registry.
func NewFactory(registry *Registry) *Factory {
	return &Factory{registry: registry}
}

// New builds a DynamicFilter for one scan operator. symbolToCol resolves
// each descriptor's Symbol to the concrete source column the scan sees.
// If queryId has no registered context (already removed, or dynamic
// filtering disabled for this query), it returns the always-complete
// empty sentinel and no error, never ErrQueryNotFound: callers treat an
// unregistered query as "filtering disabled", not a fault.
func (f *Factory) New(queryId QueryId, descriptors []Descriptor, symbolToCol map[Symbol]domain.ColHandle) (DynamicFilter, error) {
	sourceCols := make(map[domain.FilterId]domain.ColHandle, len(descriptors))
	for _, d := range descriptors {
		col, ok := symbolToCol[d.Symbol]
		if !ok {
			return nil, ErrUnknownSymbol
		}
		sourceCols[d.FilterId] = col
	}

	qc, ok := f.registry.get(queryId)
	if !ok {
		return emptyDynamicFilter{}, nil
	}

	ids := make([]domain.FilterId, 0, len(sourceCols))
	for id := range sourceCols {
		ids = append(ids, id)
	}

	return &handle{
		qc:         qc,
		filterIDs:  ids,
		sourceCols: sourceCols,
	}, nil
}

// handle is the concrete, non-sentinel DynamicFilter view.
type handle struct {
	qc         *queryContext
	filterIDs  []domain.FilterId
	sourceCols map[domain.FilterId]domain.ColHandle

	mu          sync.Mutex
	memoized    domain.TupleDomain
	memoizedSet bool
}

func (h *handle) IsComplete() bool {
	for _, id := range h.filterIDs {
		if _, ok := h.qc.domainFor(id); !ok {
			return false
		}
	}
	return true
}

func (h *handle) CurrentPredicate() domain.TupleDomain {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.memoizedSet {
		return h.memoized
	}

	result := domain.AllTuples()
	complete := true
	for _, id := range h.filterIDs {
		d, ok := h.qc.domainFor(id)
		if !ok {
			complete = false
			continue
		}
		col := h.sourceCols[id]
		result = result.Intersect(domain.WithColumnDomain(col, d))
	}

	if complete {
		h.memoized = result
		h.memoizedSet = true
	}
	return result
}

func (h *handle) Blocked(ctx context.Context) <-chan struct{} {
	return h.qc.blockedOn(ctx, h.filterIDs)
}

// emptyDynamicFilter is the sentinel returned for an unknown queryId:
// always complete, always the universe tuple domain, never blocks.
type emptyDynamicFilter struct{}

func (emptyDynamicFilter) IsComplete() bool                    { return true }
func (emptyDynamicFilter) CurrentPredicate() domain.TupleDomain { return domain.AllTuples() }
func (emptyDynamicFilter) Blocked(context.Context) <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
