package dynfilter

import (
	"github.com/google/uuid"
	"github.com/sqlcoord/dynfilter/domain"
)

// NewFilterId mints a fresh opaque filter identifier. Real deployments get
// FilterId values from the planner's already-analyzed plan; this helper
// exists for callers, tests, and the CLI harness that need to mint one
// without a planner.
func NewFilterId() domain.FilterId {
	return domain.FilterId(uuid.NewString())
}
