package dynfilter

import (
	"sync"

	"github.com/sqlcoord/dynfilter/domain"
)

// Registry is the process-wide mapping from QueryId to its aggregation
// context. It is safe for concurrent mutation: many consumer-handle
// lookups and collector reads run concurrently with occasional
// Register/Remove writes, the same read-heavy/write-rare shape the
// teacher's tuple-builder cache targets with sync.Map.
type Registry struct {
	contexts sync.Map // QueryId -> *queryContext
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register idempotently inserts a context for queryId. It is a no-op if a
// context already exists. Only call this when expected is non-empty;
// registering with no expected filters is a programming error.
func (r *Registry) Register(queryId QueryId, supplier Supplier, expected, lazy, replicated map[domain.FilterId]struct{}) {
	if len(expected) == 0 {
		panic("dynfilter: Register called with empty expected filter set")
	}
	qc := newQueryContext(supplier, expected, lazy, replicated)
	r.contexts.LoadOrStore(queryId, qc)
}

// Remove drops the context for queryId. Any collector job already holding
// a reference to the context finishes harmlessly against the now-orphaned
// object; its results are simply never observed again (see DESIGN.md's
// Open Question resolution).
func (r *Registry) Remove(queryId QueryId) {
	r.contexts.Delete(queryId)
}

func (r *Registry) get(queryId QueryId) (*queryContext, bool) {
	v, ok := r.contexts.Load(queryId)
	if !ok {
		return nil, false
	}
	return v.(*queryContext), true
}

// Len returns the number of currently registered queries.
func (r *Registry) Len() int {
	n := 0
	r.contexts.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}

// QueryIds returns a snapshot of currently registered query IDs, in no
// particular order; concurrent register/remove during iteration is
// tolerated.
func (r *Registry) QueryIds() []QueryId {
	var ids []QueryId
	r.contexts.Range(func(k, _ any) bool {
		ids = append(ids, k.(QueryId))
		return true
	})
	return ids
}
