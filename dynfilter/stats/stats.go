// Package stats is the stateless, read-only projection of a query's
// dynamic filter aggregation state used by introspection endpoints and
// EXPLAIN-style output. It never mutates a dynfilter.Registry.
package stats

import (
	"encoding/json"
	"sort"

	"github.com/sqlcoord/dynfilter/domain"
	"github.com/sqlcoord/dynfilter/dynfilter"
)

// DomainStat is one filter's display-simplified domain.
type DomainStat struct {
	FilterId            domain.FilterId `json:"filterId"`
	SimplifiedDomain    string          `json:"simplifiedDomain"`
	RangeCount          int             `json:"rangeCount"`
	DiscreteValuesCount int             `json:"discreteValuesCount"`
}

// Stats is the JSON-serializable introspection record for one query.
type Stats struct {
	QueryId                  dynfilter.QueryId `json:"queryId"`
	DynamicFilterDomainStats []DomainStat      `json:"dynamicFilterDomainStats"`
	LazyDynamicFilters       int               `json:"lazyDynamicFilters"`
	ReplicatedDynamicFilters int               `json:"replicatedDynamicFilters"`
	TotalDynamicFilters      int               `json:"totalDynamicFilters"`
	DynamicFiltersCompleted  int               `json:"dynamicFiltersCompleted"`
}

// simplifyThreshold bounds the rendered domain's disjunct count before it
// is truncated with a "+N more" suffix.
const simplifyThreshold = 1

// For builds a Stats projection for queryId, or dynfilter.ErrQueryNotFound
// if the query has no registered context.
func For(registry *dynfilter.Registry, queryId dynfilter.QueryId) (Stats, error) {
	snap, ok := registry.Snapshot(queryId)
	if !ok {
		return Stats{}, dynfilter.ErrQueryNotFound
	}

	s := Stats{
		QueryId:                  queryId,
		LazyDynamicFilters:       len(snap.Lazy),
		ReplicatedDynamicFilters: len(snap.Replicated),
		TotalDynamicFilters:      len(snap.Expected),
		DynamicFiltersCompleted:  len(snap.Domains),
	}

	ids := make([]domain.FilterId, 0, len(snap.Expected))
	for _, id := range snap.Expected {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		d, ok := snap.Domains[id]
		if !ok {
			continue
		}
		s.DynamicFilterDomainStats = append(s.DynamicFilterDomainStats, DomainStat{
			FilterId:            id,
			SimplifiedDomain:    d.Simplify(simplifyThreshold),
			RangeCount:          d.RangeCount(),
			DiscreteValuesCount: d.DiscreteValueCount(),
		})
	}

	return s, nil
}

// JSON renders the stats as indented JSON, the machine-readable contract
// an introspection endpoint returns.
func (s Stats) JSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
