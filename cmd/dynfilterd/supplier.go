package main

import (
	"sync"

	"github.com/sqlcoord/dynfilter/domain"
	"github.com/sqlcoord/dynfilter/dynfilter"
)

// syntheticSupplier simulates one build stage whose tasks report a small
// discrete domain one at a time as advance is called, so dynfilterd's
// watch loop has something visibly changing to print each tick.
type syntheticSupplier struct {
	mu           sync.Mutex
	filterID     domain.FilterId
	totalTasks   int
	reported     int
	taskSummaries []dynfilter.TaskSummary
}

func newSyntheticSupplier(filterID domain.FilterId, totalTasks int) *syntheticSupplier {
	if totalTasks <= 0 {
		totalTasks = 1
	}
	return &syntheticSupplier{filterID: filterID, totalTasks: totalTasks}
}

// advance makes one more task "report in", widening the discrete domain.
func (s *syntheticSupplier) advance() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reported >= s.totalTasks {
		return
	}
	s.taskSummaries = append(s.taskSummaries, dynfilter.TaskSummary{
		s.filterID: domain.NewDiscrete(s.reported),
	})
	s.reported++
}

func (s *syntheticSupplier) supply() ([]dynfilter.StageSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := dynfilter.StageRunning
	if s.reported >= s.totalTasks {
		state = dynfilter.StageDone
	}

	summaries := make([]dynfilter.TaskSummary, len(s.taskSummaries))
	copy(summaries, s.taskSummaries)

	return []dynfilter.StageSnapshot{{
		State:         state,
		NumberOfTasks: s.totalTasks,
		TaskSummaries: summaries,
	}}, nil
}
