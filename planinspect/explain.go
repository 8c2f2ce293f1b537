package planinspect

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/sqlcoord/dynfilter/domain"
)

// Explain renders a one-row-per-node summary of which filters each node
// produces, consumes, and whether its build side is replicated. It is a
// debugging/EXPLAIN aid only; it is never called from the collection path
// and never mutates plan.
func Explain(plan Node) string {
	sb := &strings.Builder{}

	alignment := []tw.Align{tw.AlignLeft, tw.AlignLeft, tw.AlignLeft, tw.AlignLeft}
	table := tablewriter.NewTable(sb,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment(alignment),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	table.Header([]string{"node", "produces", "consumes", "replicated"})

	walk(plan, func(n Node) {
		produces, consumes, replicated := "-", "-", "-"
		switch t := n.(type) {
		case *Join:
			if t.HasFilter {
				produces = string(t.FilterID)
				if t.Replicated {
					replicated = "yes"
				} else {
					replicated = "no"
				}
			}
		case *Scan:
			consumes = joinIDs(t.Consumes)
		case *Filter:
			consumes = joinIDs(t.Consumes)
		}
		table.Append([]string{fmt.Sprintf("%T", n), produces, consumes, replicated})
	})

	table.Render()
	return sb.String()
}

func joinIDs(ids []domain.FilterId) string {
	if len(ids) == 0 {
		return "-"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ",")
}
