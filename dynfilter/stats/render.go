package stats

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

// Render writes s as an ASCII table to w, EXPLAIN-style: one row per
// filter plus a summary line. Purely read-only.
func Render(w io.Writer, s Stats) {
	alignment := []tw.Align{tw.AlignLeft, tw.AlignLeft, tw.AlignRight, tw.AlignRight}
	table := tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment(alignment),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	table.Header([]string{"filter", "domain", "ranges", "discrete"})

	for _, d := range s.DynamicFilterDomainStats {
		table.Append([]string{
			string(d.FilterId),
			d.SimplifiedDomain,
			fmt.Sprintf("%d", d.RangeCount),
			fmt.Sprintf("%d", d.DiscreteValuesCount),
		})
	}
	table.Render()

	fmt.Fprintf(w, "\n%d/%d filters completed (%d lazy, %d replicated)\n",
		s.DynamicFiltersCompleted, s.TotalDynamicFilters, s.LazyDynamicFilters, s.ReplicatedDynamicFilters)
}
