package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderTable lays out rows under a header line. Columns are padded to the
// widest cell; rows shorter than the header are padded with empty cells.
func RenderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	b.WriteString(renderRow(TableHeaderStyle, headers, widths))
	for _, row := range rows {
		b.WriteString("\n")
		b.WriteString(renderRow(TableCellStyle, row, widths))
	}
	return b.String()
}

func renderRow(style lipgloss.Style, cells []string, widths []int) string {
	rendered := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		rendered[i] = TableCellStyle.Width(w + 2).Render(cell)
	}
	return style.UnsetPaddingRight().Render(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
}
