// Package table tokenizes Markdown pipe-table lines and groups them into tables.
package table

import (
	"strings"

	"github.com/yaklabco/mdtablefix/pkg/width"
)

// Cell is one cell of a table row.
type Cell struct {
	// Content is the raw text between the surrounding pipes, whitespace included.
	// HTML entities are left undecoded.
	Content string

	// StartCol and EndCol are the 0-based byte offsets of Content in the raw line.
	StartCol int
	EndCol   int
}

// Text returns the cell content without surrounding whitespace.
func (c Cell) Text() string {
	return strings.TrimSpace(c.Content)
}

// DisplayWidth returns the rendered width of the trimmed, entity-decoded content.
func (c Cell) DisplayWidth() int {
	return width.Of(c.Content)
}

// Row is a single source line of a table.
type Row struct {
	Cells []Cell

	// LineNumber is the 1-based line in the source file.
	LineNumber int

	// RawLine is the verbatim source line without its line terminator.
	RawLine string

	// IsSeparator is true when every cell matches the separator grammar.
	IsSeparator bool

	// Indent is the leading run of spaces and tabs of RawLine. Tables nested
	// in list items and other containers carry one.
	Indent string
}

// NewRow tokenizes raw into a row.
func NewRow(raw string, lineNumber int) Row {
	segs := cellSegments(raw)
	cells := make([]Cell, len(segs))
	separator := len(segs) > 0
	for i, seg := range segs {
		cells[i] = Cell{Content: seg.text, StartCol: seg.start, EndCol: seg.end}
		if !IsSeparatorCell(seg.text) {
			separator = false
		}
	}
	return Row{
		Cells:       cells,
		LineNumber:  lineNumber,
		RawLine:     raw,
		IsSeparator: separator,
		Indent:      raw[:len(raw)-len(strings.TrimLeft(raw, " \t"))],
	}
}

// PipePositions returns the byte offsets of the row's delimiter pipes.
func (r Row) PipePositions() []int {
	return PipePositions(r.RawLine)
}

// PipeColumns returns the display column of each delimiter pipe.
//
// Columns are measured with width.Span over the text between pipes, so a row
// containing wide glyphs or entities lines up with an ASCII row exactly when
// the fixer would render them aligned. For ASCII rows the result equals
// PipePositions.
func (r Row) PipeColumns() []int {
	positions := r.PipePositions()
	cols := make([]int, len(positions))
	prev, col := 0, 0
	for i, p := range positions {
		if i > 0 {
			col++
		}
		col += width.Span(r.RawLine[prev:p])
		cols[i] = col
		prev = p + 1
	}
	return cols
}

// Table is a contiguous run of table rows.
type Table struct {
	// Rows holds the header, separator and data rows in source order.
	Rows []Row

	StartLine int
	EndLine   int
	FilePath  string
}

// ColumnCount returns the number of cells in the header row.
func (t *Table) ColumnCount() int {
	if len(t.Rows) == 0 {
		return 0
	}
	return len(t.Rows[0].Cells)
}

// HasHeader reports whether the first row is a header followed by a separator
// of matching width.
func (t *Table) HasHeader() bool {
	if len(t.Rows) < 2 {
		return false
	}
	return !t.Rows[0].IsSeparator &&
		t.Rows[1].IsSeparator &&
		len(t.Rows[1].Cells) == t.ColumnCount()
}

// WellFormed reports whether every row has the header's cell count.
func (t *Table) WellFormed() bool {
	n := t.ColumnCount()
	for _, row := range t.Rows {
		if len(row.Cells) != n {
			return false
		}
	}
	return n > 0
}

// Separator returns the row following the header, if any.
func (t *Table) Separator() (Row, bool) {
	if len(t.Rows) < 2 {
		return Row{}, false
	}
	return t.Rows[1], true
}

// IsSeparatorRow reports whether row i is rendered as a separator: the row
// after the header, or any later row made entirely of separator cells.
func (t *Table) IsSeparatorRow(i int) bool {
	return i == 1 || t.Rows[i].IsSeparator
}

// MinColumnWidth is the narrowest rendered column, wide enough for "---".
const MinColumnWidth = 3

// ColumnWidths returns the target display width of each header column: the
// widest cell of that column over the non-separator rows, at least
// MinColumnWidth.
func (t *Table) ColumnWidths() []int {
	widths := make([]int, t.ColumnCount())
	for i := range widths {
		widths[i] = MinColumnWidth
	}
	for i, row := range t.Rows {
		if t.IsSeparatorRow(i) {
			continue
		}
		for col, cell := range row.Cells {
			if col < len(widths) {
				widths[col] = max(widths[col], cell.DisplayWidth())
			}
		}
	}
	return widths
}

// Indent returns the leading whitespace of the header row. Every rendered row
// starts with it.
func (t *Table) Indent() string {
	if len(t.Rows) == 0 {
		return ""
	}
	return t.Rows[0].Indent
}

// Text returns the table's raw lines joined with "\n".
func (t *Table) Text() string {
	lines := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		lines[i] = row.RawLine
	}
	return strings.Join(lines, "\n")
}
