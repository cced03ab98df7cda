package report

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// RenderTable writes the summary as a two column console table.
func RenderTable(w io.Writer, summary Summary) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Value"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)

	rows := [][]string{
		{"Total papers", printer.Sprintf("%d", summary.TotalPapers)},
		{"Target authors", printer.Sprintf("%d", summary.Targets)},
		{"Selected papers", printer.Sprintf("%d", summary.Selected)},
		{"Compression ratio", printer.Sprintf("%.2f%%", summary.CompressionRatio())},
		{"Covered authors", printer.Sprintf("%d", summary.Covered)},
		{"Coverage", printer.Sprintf("%.2f%%", summary.CoveragePercent())},
		{"Elapsed", summary.Elapsed.String()},
	}
	table.AppendBulk(rows)
	table.Render()
}
