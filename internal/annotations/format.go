package annotations

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// OutputFormatter renders events as human-readable, color-coded lines
// for tracing a live service from the outside.
type OutputFormatter struct {
	writer io.Writer
}

// NewOutputFormatter returns a formatter writing to w.
func NewOutputFormatter(w io.Writer) *OutputFormatter {
	return &OutputFormatter{writer: w}
}

// Handle implements Handler: it formats and prints the event immediately.
func (f *OutputFormatter) Handle(event Event) {
	if line := f.Format(event); line != "" {
		fmt.Fprintln(f.writer, line)
	}
}

// Format converts one event to a single display line.
func (f *OutputFormatter) Format(event Event) string {
	switch event.Name {
	case CollectorTickBegin:
		return fmt.Sprintf("%s tick begin: %d active queries",
			color.YellowString("==="), event.Data["queries"])
	case CollectorTickComplete:
		return fmt.Sprintf("%s tick done in %s",
			color.YellowString("==="), event.Latency)
	case FilterFinalized:
		return fmt.Sprintf("%s filter %v finalized for query %v",
			color.GreenString("+"), event.Data["filterId"], event.Data["queryId"])
	case SupplierError:
		return fmt.Sprintf("%s supplier error for query %v: %v",
			color.RedString("x"), event.Data["queryId"], event.Data["error"])
	default:
		return ""
	}
}
