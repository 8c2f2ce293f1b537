// Package dynfilter is the runtime coordination core of dynamic filtering:
// it registers each executing query and the dynamic filters it expects to
// produce, periodically harvests per-task partial summaries from a
// supplier, merges them into per-filter domains once the completion
// predicate permits, and exposes a monotonically tightening DynamicFilter
// view to probe-side consumers.
//
// Query planning, stage/task execution, and wire transport are external
// collaborators; this package only consumes their already-analyzed output
// through the Supplier contract.
package dynfilter

import "github.com/sqlcoord/dynfilter/domain"

// QueryId identifies one executing query.
type QueryId string

// StageState is the execution state of one build stage. The only bit the
// collector uses is CanScheduleMoreTasks.
type StageState int

const (
	StagePlanned StageState = iota
	StageScheduling
	StageRunning
	StageFinishing
	StageDone
)

// CanScheduleMoreTasks reports whether the stage might still add tasks
// that haven't reported yet. Once false, a stage's task count and the
// tasks that have reported are final.
func (s StageState) CanScheduleMoreTasks() bool {
	switch s {
	case StagePlanned, StageScheduling, StageRunning:
		return true
	default:
		return false
	}
}

func (s StageState) String() string {
	switch s {
	case StagePlanned:
		return "PLANNED"
	case StageScheduling:
		return "SCHEDULING"
	case StageRunning:
		return "RUNNING"
	case StageFinishing:
		return "FINISHING"
	case StageDone:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

// TaskSummary is one task's partial per-filter domain report.
type TaskSummary map[domain.FilterId]domain.Domain

// StageSnapshot is an immutable record of one build stage at one moment.
type StageSnapshot struct {
	State         StageState
	NumberOfTasks int
	TaskSummaries []TaskSummary
}

// Supplier returns the current list of stage snapshots for one query. It
// must be safe to call concurrently and at any moment; an empty slice
// means "no progress to report". A non-nil error isolates to that query's
// tick: the collector logs it and moves on.
type Supplier func() ([]StageSnapshot, error)
