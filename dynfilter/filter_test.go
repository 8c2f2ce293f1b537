package dynfilter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlcoord/dynfilter/domain"
)

func TestFactoryNewReturnsEmptySentinelForUnknownQuery(t *testing.T) {
	f := NewFactory(NewRegistry())
	df, err := f.New("missing-query", []Descriptor{{FilterId: "f1", Symbol: "x"}}, map[Symbol]domain.ColHandle{"x": "col"})
	require.NoError(t, err)
	assert.True(t, df.IsComplete(), "sentinel filter should report complete")
	assert.True(t, df.CurrentPredicate().IsAll(), "sentinel filter should predicate to the universe")
	select {
	case <-df.Blocked(context.Background()):
	default:
		require.Fail(t, "sentinel filter's Blocked() channel should already be closed")
	}
}

func TestFactoryNewReturnsUnknownSymbolError(t *testing.T) {
	r := NewRegistry()
	r.Register("q1", noopSupplier, expectedSet("f1"), nil, nil)
	f := NewFactory(r)

	_, err := f.New("q1", []Descriptor{{FilterId: "f1", Symbol: "unbound"}}, map[Symbol]domain.ColHandle{})
	assert.ErrorIs(t, err, ErrUnknownSymbol)
}

func TestCurrentPredicateTightensMonotonicallyThenMemoizes(t *testing.T) {
	r := NewRegistry()
	r.Register("q1", noopSupplier, expectedSet("f1", "f2"), nil, nil)
	f := NewFactory(r)

	descriptors := []Descriptor{
		{FilterId: "f1", Symbol: "a"},
		{FilterId: "f2", Symbol: "b"},
	}
	symbols := map[Symbol]domain.ColHandle{"a": "colA", "b": "colB"}

	df, err := f.New("q1", descriptors, symbols)
	require.NoError(t, err)

	assert.True(t, df.CurrentPredicate().IsAll(), "predicate should start as the universe with no filters finalized")

	qc, _ := r.get("q1")
	qc.addDynamicFilters(map[domain.FilterId]domain.Domain{
		"f1": domain.NewDiscrete(1, 2),
	})

	narrowed := df.CurrentPredicate()
	assert.False(t, narrowed.IsAll(), "predicate should narrow once f1 finalizes")
	assert.False(t, df.IsComplete(), "should not be complete until f2 finalizes too")

	qc.addDynamicFilters(map[domain.FilterId]domain.Domain{
		"f2": domain.NewDiscrete(10),
	})

	assert.True(t, df.IsComplete(), "should be complete once both filters finalize")
	final := df.CurrentPredicate()
	assert.Equal(t, 2, final.ColumnDomain("colA").DiscreteValueCount())
	assert.Equal(t, 1, final.ColumnDomain("colB").DiscreteValueCount())

	// Memoization: a further CurrentPredicate call on an already-complete
	// handle returns the same, now-fixed predicate.
	second := df.CurrentPredicate()
	assert.Equal(t, final.ColumnDomain("colA").DiscreteValueCount(), second.ColumnDomain("colA").DiscreteValueCount(),
		"memoized predicate should be stable across calls")
}

func TestBlockedUnblocksWhenLazyFilterFinalizes(t *testing.T) {
	r := NewRegistry()
	r.Register("q1", noopSupplier, expectedSet("f1"), expectedSet("f1"), nil)
	f := NewFactory(r)

	df, err := f.New("q1", []Descriptor{{FilterId: "f1", Symbol: "a"}}, map[Symbol]domain.ColHandle{"a": "colA"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	ch := df.Blocked(ctx)

	select {
	case <-ch:
		require.Fail(t, "Blocked() should not resolve before f1 finalizes")
	default:
	}

	qc, _ := r.get("q1")
	qc.addDynamicFilters(map[domain.FilterId]domain.Domain{"f1": domain.NewDiscrete(5)})

	select {
	case <-ch:
	case <-time.After(time.Second):
		require.Fail(t, "Blocked() did not unblock after f1 finalized")
	}
}
