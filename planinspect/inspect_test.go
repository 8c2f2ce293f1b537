package planinspect

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sqlcoord/dynfilter/domain"
)

// buildPlan models: a first fragment rooted at a replicated Join(f2) whose
// probe is Join(f1), whose probe in turn is a Scan consuming f1 in the SAME
// fragment (so f1 is not lazy), and a second fragment whose only Scan
// consumes f2 (so f2, produced in the first fragment, is lazy).
func buildPlan() (frag1, frag2 *Fragment) {
	scanSameFragment := &Scan{Consumes: []domain.FilterId{"f1"}}
	joinF1 := &Join{FilterID: "f1", HasFilter: true, Build: &Scan{}, Probe: scanSameFragment}

	joinF2 := &Join{FilterID: "f2", HasFilter: true, Replicated: true, Build: &Scan{}, Probe: joinF1}
	frag1 = &Fragment{Root: joinF2}

	scanOtherFragment := &Scan{Consumes: []domain.FilterId{"f2"}}
	frag2 = &Fragment{Root: scanOtherFragment}

	return frag1, frag2
}

func TestProduced(t *testing.T) {
	frag1, frag2 := buildPlan()

	p := Produced(frag1)
	assert.Contains(t, p, domain.FilterId("f1"))
	assert.Contains(t, p, domain.FilterId("f2"))
	assert.Empty(t, Produced(frag2))
}

func TestConsumed(t *testing.T) {
	frag1, frag2 := buildPlan()
	c1 := Consumed(frag1)
	assert.Contains(t, c1, domain.FilterId("f1"))
	c2 := Consumed(frag2)
	assert.Contains(t, c2, domain.FilterId("f2"))
}

func TestReplicated(t *testing.T) {
	frag1, _ := buildPlan()
	r := Replicated(frag1)
	assert.Contains(t, r, domain.FilterId("f2"))
	assert.NotContains(t, r, domain.FilterId("f1"))
}

// TestLazyExcludesSameFragment verifies that f1, produced and consumed
// within frag1, must not appear in Lazy.
func TestLazyExcludesSameFragment(t *testing.T) {
	frag1, frag2 := buildPlan()
	lazy := Lazy([]*Fragment{frag1, frag2})

	assert.NotContains(t, lazy, domain.FilterId("f1"))
	assert.Contains(t, lazy, domain.FilterId("f2"))
}
