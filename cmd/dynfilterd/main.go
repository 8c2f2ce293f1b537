// Command dynfilterd is a small harness that wires a Registry, a
// Collector, and a scriptable synthetic Supplier so the collection loop,
// registry, and stats view can be exercised and watched tick over without
// a real coordinator or query planner attached.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/sqlcoord/dynfilter/config"
	"github.com/sqlcoord/dynfilter/domain"
	"github.com/sqlcoord/dynfilter/dynfilter"
	"github.com/sqlcoord/dynfilter/dynfilter/stats"
	"github.com/sqlcoord/dynfilter/internal/annotations"
)

func main() {
	var refreshInterval time.Duration
	var collectorConcurrency int
	var taskCount int
	var trace bool
	var help bool

	flag.DurationVar(&refreshInterval, "refresh-interval", time.Second, "collector tick period")
	flag.IntVar(&collectorConcurrency, "collector-concurrency", 0, "bound on concurrent per-query collection (0 = NumCPU)")
	flag.IntVar(&taskCount, "tasks", 3, "number of synthetic build tasks to simulate")
	flag.BoolVar(&trace, "trace", false, "print per-tick annotation events alongside the stats table")
	flag.BoolVar(&help, "h", false, "show help")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Watches a synthetic dynamic filter registered against a scripted supplier.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                              # default one-second refresh, 3 tasks\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -refresh-interval 200ms      # faster tick for a quick demo\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -trace                       # also print tick/finalize/error events\n", os.Args[0])
	}
	flag.Parse()

	if help {
		flag.Usage()
		os.Exit(0)
	}

	cfg := config.DynamicFilterConfig{
		RefreshInterval:      refreshInterval,
		CollectorConcurrency: collectorConcurrency,
	}

	registry := dynfilter.NewRegistry()
	collector, err := dynfilter.NewCollector(registry, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dynfilterd: %v\n", err)
		os.Exit(1)
	}

	if trace {
		collector.SetAnnotator(annotations.NewCollector(annotations.NewOutputFormatter(os.Stdout).Handle))
	}

	filterID := dynfilter.NewFilterId()
	queryID := dynfilter.QueryId("watch-demo")
	supplier := newSyntheticSupplier(filterID, taskCount)

	registry.Register(
		queryID,
		supplier.supply,
		map[domain.FilterId]struct{}{filterID: {}},
		map[domain.FilterId]struct{}{filterID: {}},
		map[domain.FilterId]struct{}{},
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	collector.Start(ctx)
	fmt.Printf("watching query %q, filter %q, refresh every %s\n", queryID, filterID, refreshInterval)

	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			supplier.advance()
			printStats(registry, queryID)
		}
	}
}

func printStats(registry *dynfilter.Registry, queryID dynfilter.QueryId) {
	s, err := stats.For(registry, queryID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dynfilterd: %v\n", err)
		return
	}
	if s.DynamicFiltersCompleted == s.TotalDynamicFilters {
		color.Green("tick: %d/%d filters completed", s.DynamicFiltersCompleted, s.TotalDynamicFilters)
	} else {
		color.Yellow("tick: %d/%d filters completed", s.DynamicFiltersCompleted, s.TotalDynamicFilters)
	}
	stats.Render(os.Stdout, s)
}
