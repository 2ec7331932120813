package fix

import (
	"strings"

	"github.com/yaklabco/mdtablefix/pkg/table"
)

// Table renders tbl with aligned pipes and single-space padding.
// It returns the new text and whether it differs from the source rows.
// Tables that are not well formed are returned unchanged.
func Table(tbl *table.Table) (string, bool) {
	if !tbl.WellFormed() {
		return tbl.Text(), false
	}
	rendered := strings.Join(RenderRows(tbl), "\n")
	return rendered, rendered != tbl.Text()
}

// RenderRows returns the aligned text of every row of tbl, one per row.
// Every row keeps the header's indentation so nested tables stay inside
// their container. tbl must be well formed.
func RenderRows(tbl *table.Table) []string {
	widths := tbl.ColumnWidths()
	indent := tbl.Indent()
	out := make([]string, len(tbl.Rows))
	for i, row := range tbl.Rows {
		out[i] = renderRow(row, indent, widths, tbl.IsSeparatorRow(i))
	}
	return out
}

func renderRow(row table.Row, indent string, widths []int, separator bool) string {
	var sb strings.Builder
	sb.WriteString(indent)
	sb.WriteByte('|')
	for i, cell := range row.Cells {
		sb.WriteByte(' ')
		if separator {
			sb.WriteString(separatorCell(cell.Content, widths[i]))
		} else {
			sb.WriteString(cell.Text())
			sb.WriteString(strings.Repeat(" ", max(widths[i]-cell.DisplayWidth(), 0)))
		}
		sb.WriteString(" |")
	}
	return sb.String()
}

// separatorCell fills width with dashes, keeping the alignment colons.
func separatorCell(content string, width int) string {
	left, right := table.Alignment(content)
	dashes := width
	var sb strings.Builder
	if left {
		sb.WriteByte(':')
		dashes--
	}
	if right {
		dashes--
	}
	sb.WriteString(strings.Repeat("-", max(dashes, 1)))
	if right {
		sb.WriteByte(':')
	}
	return sb.String()
}
