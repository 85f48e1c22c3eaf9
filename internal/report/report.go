// Package report renders the end-of-run summary table.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/kosmylo/geospatial-retrieval/internal/pipeline"
)

// RenderSummary formats pipeline results as an aligned text table.
func RenderSummary(results []pipeline.Result) string {
	table := [][]string{
		{"DATASET", "STATUS", "DURATION", "FILES"},
	}

	for _, r := range results {
		status := "ok"
		if r.Err != nil {
			status = "failed: " + r.Err.Error()
		}

		table = append(table, []string{
			r.Name,
			status,
			r.Duration.Round(time.Millisecond).String(),
			fmt.Sprintf("%d", len(r.Files)),
		})
	}

	return renderTable(table)
}

// renderTable pads each column to its widest cell by display width, so
// non-ASCII error text keeps the columns aligned.
func renderTable(table [][]string) string {
	colCount := 0
	for _, row := range table {
		if len(row) > colCount {
			colCount = len(row)
		}
	}

	colWidths := make([]int, colCount)

	for _, row := range table {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > colWidths[i] {
				colWidths[i] = w
			}
		}
	}

	var sb strings.Builder

	for rIdx, row := range table {
		sb.WriteString("|")

		for j := 0; j < colCount; j++ {
			content := ""
			if j < len(row) {
				content = row[j]
			}

			sb.WriteString(" ")
			sb.WriteString(content)

			if padding := colWidths[j] - runewidth.StringWidth(content); padding > 0 {
				sb.WriteString(strings.Repeat(" ", padding))
			}

			sb.WriteString(" |")
		}

		sb.WriteString("\n")

		if rIdx == 0 {
			sb.WriteString("|")

			for j := 0; j < colCount; j++ {
				sb.WriteString(" ")
				sb.WriteString(strings.Repeat("-", colWidths[j]))
				sb.WriteString(" |")
			}

			sb.WriteString("\n")
		}
	}

	return sb.String()
}
