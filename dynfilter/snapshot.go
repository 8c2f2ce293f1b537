package dynfilter

import "github.com/sqlcoord/dynfilter/domain"

// Snapshot is a point-in-time, read-only projection of one query's
// aggregation state, purpose-built for introspection endpoints. Building
// a Snapshot never mutates context state.
type Snapshot struct {
	QueryId    QueryId
	Expected   []domain.FilterId
	Lazy       []domain.FilterId
	Replicated []domain.FilterId
	Completed  bool
	// Domains holds only the filters that have finalized so far.
	Domains map[domain.FilterId]domain.Domain
}

// Snapshot returns a Snapshot for queryId, or ok=false if there is no
// registered context (already removed, or never registered).
func (r *Registry) Snapshot(queryId QueryId) (Snapshot, bool) {
	qc, ok := r.get(queryId)
	if !ok {
		return Snapshot{}, false
	}

	snap := Snapshot{
		QueryId:   queryId,
		Completed: qc.isCompleted(),
		Domains:   make(map[domain.FilterId]domain.Domain),
	}
	for id := range qc.expected {
		snap.Expected = append(snap.Expected, id)
	}
	for id := range qc.signals {
		snap.Lazy = append(snap.Lazy, id)
	}
	for id := range qc.replicated {
		snap.Replicated = append(snap.Replicated, id)
	}
	qc.summaries.Range(func(k, v any) bool {
		snap.Domains[k.(domain.FilterId)] = v.(domain.Domain)
		return true
	})
	return snap, true
}
