package dynfilter

import (
	"context"
	"log"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sqlcoord/dynfilter/config"
	"github.com/sqlcoord/dynfilter/domain"
	"github.com/sqlcoord/dynfilter/internal/annotations"
)

// Collector is the single background actor that periodically folds
// supplier snapshots into every active query's context. It is the only
// writer of summaries, the only firer of readiness signals, and the only
// mutator of completed.
type Collector struct {
	registry  *Registry
	cfg       config.DynamicFilterConfig
	logger    *log.Logger
	annotator *annotations.Collector
}

// NewCollector builds a collector over registry using cfg. cfg is
// validated eagerly so a misconfigured refresh interval fails at
// construction, not on the first silently-skipped tick.
func NewCollector(registry *Registry, cfg config.DynamicFilterConfig) (*Collector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Collector{
		registry: registry,
		cfg:      cfg,
		logger:   log.Default(),
	}, nil
}

// SetLogger overrides the default logger (log.Default()).
func (c *Collector) SetLogger(l *log.Logger) {
	c.logger = l
}

// SetAnnotator attaches an annotations.Collector that observes tick
// boundaries, per-filter finalization, and supplier errors. Nil (the
// default) disables event emission entirely.
func (c *Collector) SetAnnotator(a *annotations.Collector) {
	c.annotator = a
}

// Start runs the periodic collection loop on its own goroutine until ctx
// is cancelled. It does not block; the caller stops the service by
// cancelling ctx.
func (c *Collector) Start(ctx context.Context) {
	go c.run(ctx)
}

func (c *Collector) run(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.tick(ctx)
		}
	}
}

// tick scans a snapshot of current contexts (order irrelevant; concurrent
// register/remove tolerated) and processes each concurrently, bounded by
// cfg.CollectorConcurrency. One query's supplier failure never aborts
// another query's processing this tick.
func (c *Collector) tick(ctx context.Context) {
	ids := c.registry.QueryIds()
	if len(ids) == 0 {
		return
	}

	start := time.Now()
	c.annotate(annotations.Event{Name: annotations.CollectorTickBegin, Data: map[string]any{"queries": len(ids)}})

	g, gctx := errgroup.WithContext(ctx)
	limit := c.cfg.CollectorConcurrency
	if limit == 0 {
		limit = runtime.NumCPU()
	}
	g.SetLimit(limit)

	for _, id := range ids {
		id := id
		g.Go(func() error {
			c.tickQuery(gctx, id)
			return nil
		})
	}
	// Errors are never returned by tickQuery itself; Wait only blocks
	// until every job has finished this tick.
	_ = g.Wait()

	if c.annotator != nil {
		c.annotator.AddTiming(annotations.CollectorTickComplete, start, nil)
	}
}

// annotate is a nil-safe convenience for events that carry no latency.
func (c *Collector) annotate(e annotations.Event) {
	if c.annotator != nil {
		c.annotator.Add(e)
	}
}

func (c *Collector) tickQuery(ctx context.Context, id QueryId) {
	qc, ok := c.registry.get(id)
	if !ok {
		// Removed concurrently with this tick starting; discard quietly
		// per the documented lenient removeQuery behavior.
		return
	}
	if qc.isCompleted() {
		return
	}

	uncollected := qc.uncollected()
	if len(uncollected) == 0 {
		return
	}

	snapshots, err := qc.supplier()
	if err != nil {
		c.logger.Printf("dynfilter: supplier failed for query %s: %v", id, err)
		c.annotate(annotations.Event{
			Name: annotations.SupplierError,
			Data: map[string]any{"queryId": id, "error": err.Error()},
		})
		return
	}

	finalized := make(map[domain.FilterId]domain.Domain)
	for _, stage := range snapshots {
		groups := groupByFilter(stage, uncollected)
		for fid, doms := range groups {
			if _, already := finalized[fid]; already {
				continue
			}
			if final, ok := applyCompletionPredicate(fid, doms, stage, qc.replicated); ok {
				finalized[fid] = final
			}
		}
	}

	for fid := range finalized {
		c.annotate(annotations.Event{
			Name: annotations.FilterFinalized,
			Data: map[string]any{"queryId": id, "filterId": fid},
		})
	}

	qc.addDynamicFilters(finalized)
}

// groupByFilter collects, for each uncollected filter ID appearing in any
// task of stage, the ordered list of per-task domains reported for it.
func groupByFilter(stage StageSnapshot, uncollected map[domain.FilterId]struct{}) map[domain.FilterId][]domain.Domain {
	groups := make(map[domain.FilterId][]domain.Domain)
	for _, task := range stage.TaskSummaries {
		for fid, d := range task {
			if _, wanted := uncollected[fid]; !wanted {
				continue
			}
			groups[fid] = append(groups[fid], d)
		}
	}
	return groups
}

// applyCompletionPredicate decides whether the per-task domains reported
// so far for fid may be finalized: an ALL summary short-circuits, a
// replicated build's single authoritative report finalizes on its own,
// and any other filter needs every task of a closed stage accounted for.
func applyCompletionPredicate(
	fid domain.FilterId,
	doms []domain.Domain,
	stage StageSnapshot,
	replicated map[domain.FilterId]struct{},
) (domain.Domain, bool) {
	// Short-circuit on ALL. A summary that already filters nothing can
	// only widen, so there's nothing to gain by waiting for more tasks.
	for _, d := range doms {
		if d.IsAll() {
			return domain.All(), true
		}
	}

	// Replicated build: one task's view is authoritative, but union
	// whatever is present (semantically equal for a broadcast build).
	if _, isReplicated := replicated[fid]; isReplicated {
		return unionAll(doms), true
	}

	// Otherwise every task of a closed stage must have reported.
	if !stage.State.CanScheduleMoreTasks() && len(doms) == stage.NumberOfTasks {
		return unionAll(doms), true
	}

	return nil, false
}

func unionAll(doms []domain.Domain) domain.Domain {
	result := doms[0]
	for _, d := range doms[1:] {
		result = result.Union(d)
	}
	return result
}
