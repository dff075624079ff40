package batch

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/go-scripts/constituents/internal/types"
)

// RenderSummary prints the run totals and any failed URLs as a table
func RenderSummary(w io.Writer, s *types.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetTitle("Scraping Summary")

	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRows([]table.Row{
		{"Total URLs", s.Total},
		{"Successful", fmt.Sprintf("%d (%.1f%%)", s.Succeeded, s.SuccessRate())},
		{"Failed", fmt.Sprintf("%d (%.1f%%)", s.Failed, s.FailureRate())},
		{"Duration", s.Duration.Round(time.Millisecond).String()},
	})
	t.Render()

	if len(s.FailedURLs) == 0 {
		return
	}

	failed := table.NewWriter()
	failed.SetOutputMirror(w)
	failed.SetStyle(table.StyleRounded)
	failed.AppendHeader(table.Row{"#", "Failed URL"})
	for i, u := range s.FailedURLs {
		failed.AppendRow(table.Row{i + 1, u})
	}
	failed.Render()
}
