package dynfilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlcoord/dynfilter/domain"
)

func expectedSet(ids ...domain.FilterId) map[domain.FilterId]struct{} {
	out := make(map[domain.FilterId]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

// TestWriteOnceSummaries: once summaries[f] is set, a second finalization
// of the same filter is a programming error.
func TestWriteOnceSummariesPanicsOnDoubleFinalize(t *testing.T) {
	qc := newQueryContext(nil, expectedSet("f1"), nil, nil)
	qc.addDynamicFilters(map[domain.FilterId]domain.Domain{"f1": domain.NewDiscrete(1)})

	defer func() {
		assert.NotNil(t, recover(), "expected panic on double-finalization of f1")
	}()
	qc.addDynamicFilters(map[domain.FilterId]domain.Domain{"f1": domain.NewDiscrete(2)})
}

// TestLazySignalCoupling: a lazy filter's signal fires at the same point
// its domain lands in summaries, so any observer of the fired signal
// subsequently observes the domain.
func TestLazySignalCoupling(t *testing.T) {
	qc := newQueryContext(nil, expectedSet("f1"), expectedSet("f1"), nil)

	cell, ok := qc.signalFor("f1")
	require.True(t, ok, "f1 should have a readiness signal (it's lazy)")
	assert.False(t, cell.Fired(), "signal should not be fired before finalization")

	qc.addDynamicFilters(map[domain.FilterId]domain.Domain{"f1": domain.NewDiscrete(42)})

	assert.True(t, cell.Fired(), "signal should be fired immediately after finalization")
	d, ok := qc.domainFor("f1")
	require.True(t, ok, "domain should be present once signal observed fired")
	assert.Equal(t, 1, d.DiscreteValueCount())
}

// TestCompletedTransitionsOnceAllPresent: completed flips true only once
// every expected filter's domain has landed.
func TestCompletedTransitionsOnceAllPresent(t *testing.T) {
	qc := newQueryContext(nil, expectedSet("f1", "f2"), nil, nil)

	assert.False(t, qc.isCompleted(), "should not be completed initially")

	qc.addDynamicFilters(map[domain.FilterId]domain.Domain{"f1": domain.All()})
	assert.False(t, qc.isCompleted(), "should not be completed with only f1 present")

	qc.addDynamicFilters(map[domain.FilterId]domain.Domain{"f2": domain.All()})
	assert.True(t, qc.isCompleted(), "should be completed once both f1 and f2 present")
}

func TestUncollectedShrinksAsFiltersFinalize(t *testing.T) {
	qc := newQueryContext(nil, expectedSet("f1", "f2"), nil, nil)
	assert.Len(t, qc.uncollected(), 2)
	qc.addDynamicFilters(map[domain.FilterId]domain.Domain{"f1": domain.All()})
	assert.Len(t, qc.uncollected(), 1)
}

func TestNonLazyFilterHasNoSignal(t *testing.T) {
	qc := newQueryContext(nil, expectedSet("f1"), nil, nil)
	_, ok := qc.signalFor("f1")
	assert.False(t, ok, "non-lazy filter should have no readiness signal")
}
