package lint

import (
	"fmt"
	"strings"

	"github.com/yaklabco/mdtablefix/pkg/config"
	"github.com/yaklabco/mdtablefix/pkg/table"
	"github.com/yaklabco/mdtablefix/pkg/width"
)

// DefaultMaxLineLength is the MD013 limit used when none is configured.
const DefaultMaxLineLength = config.DefaultMaxLineLength

// Validator reports formatting defects in a table.
type Validator struct {
	// MaxLineLength is the widest row allowed before LINE_TOO_LONG.
	MaxLineLength int

	// RuleEnabled reports whether a rule is switched on by configuration.
	// A nil func enables every rule.
	RuleEnabled func(rule string) bool
}

// NewValidator returns a Validator with the default line length and every
// rule enabled.
func NewValidator() *Validator {
	return &Validator{MaxLineLength: DefaultMaxLineLength}
}

func (v *Validator) enabled(rule string) bool {
	return v.RuleEnabled == nil || v.RuleEnabled(rule)
}

// Validate returns the violations of tbl in row order. Within a row the order
// is separator grammar, cell count, pipe positions, column widths, padding,
// then line length.
//
// INCONSISTENT_ALIGNMENT covers two defects: a row whose cell count differs
// from the header, and a row whose column spans differ from the header's. The
// second is reported once per row, at the first disagreeing column.
//
// Inline suppression is not applied here; see Check.
func (v *Validator) Validate(tbl *table.Table) []Violation {
	checkFormat := v.enabled(RuleTableFormat)
	checkLength := v.enabled(RuleLineLength)
	if (!checkFormat && !checkLength) || len(tbl.Rows) == 0 {
		return nil
	}

	maxLen := v.MaxLineLength
	if maxLen <= 0 {
		maxLen = DefaultMaxLineLength
	}

	rv := rowValidator{
		table:       tbl,
		widths:      tbl.ColumnWidths(),
		header:      tbl.Rows[0].PipeColumns(),
		headerSpans: cellSpans(tbl.Rows[0]),
		columns:     tbl.ColumnCount(),
	}

	for i, row := range tbl.Rows {
		if checkFormat {
			if i == 1 {
				rv.separator(row)
			}
			if len(row.Cells) != rv.columns {
				rv.add(row, InconsistentAlignment, 1,
					fmt.Sprintf("Row has %d cells, header has %d", len(row.Cells), rv.columns))
			} else {
				rv.pipes(row)
				if i > 0 {
					rv.columnSpans(row)
				}
			}
			rv.padding(row)
		}
		if checkLength {
			if n := width.Span(row.RawLine); n > maxLen {
				rv.add(row, LineTooLong, maxLen+1,
					fmt.Sprintf("Line length %d exceeds maximum %d", n, maxLen))
			}
		}
	}

	return rv.out
}

// rowValidator accumulates the violations of one table.
type rowValidator struct {
	table       *table.Table
	widths      []int
	header      []int
	headerSpans []int
	columns     int
	out         []Violation
}

func (rv *rowValidator) add(row table.Row, typ ViolationType, column int, msg string) {
	rv.out = append(rv.out, Violation{
		Type:           typ,
		Line:           row.LineNumber,
		Column:         column,
		Message:        msg,
		FilePath:       rv.table.FilePath,
		TableStartLine: rv.table.StartLine,
	})
}

func (rv *rowValidator) separator(row table.Row) {
	for _, cell := range row.Cells {
		if !table.IsSeparatorCell(cell.Content) {
			rv.add(row, MalformedSeparator, displayColumn(row, cell.StartCol),
				fmt.Sprintf("Separator cell %q does not match :?-+:?", cell.Text()))
		}
	}
}

func (rv *rowValidator) pipes(row table.Row) {
	for i, col := range row.PipeColumns() {
		switch {
		case i >= len(rv.header):
			rv.add(row, MisalignedPipe, col+1,
				fmt.Sprintf("Unexpected pipe at column %d", col+1))
		case col != rv.header[i]:
			rv.add(row, MisalignedPipe, col+1,
				fmt.Sprintf("Pipe at column %d, expected column %d", col+1, rv.header[i]+1))
		}
	}
}

func (rv *rowValidator) padding(row table.Row) {
	for i, cell := range row.Cells {
		content := cell.Content
		col := displayColumn(row, cell.StartCol)

		if strings.TrimSpace(content) == "" {
			if content == "" {
				rv.add(row, MissingSpaceLeft, col, "Empty cell has no padding")
			}
			continue
		}

		leading := len(content) - len(strings.TrimLeft(content, " "))
		trailing := len(content) - len(strings.TrimRight(content, " "))
		w := cell.DisplayWidth()
		target := w
		if i < len(rv.widths) {
			target = max(rv.widths[i], w)
		}

		switch {
		case leading == 0:
			rv.add(row, MissingSpaceLeft, col, "Missing space after pipe")
		case leading > 1:
			rv.add(row, ExtraSpaceLeft, col,
				fmt.Sprintf("%d spaces after pipe, expected 1", leading))
		}

		switch limit := target - w + 1; {
		case trailing == 0:
			rv.add(row, MissingSpaceRight, displayColumn(row, cell.EndCol), "Missing space before pipe")
		case trailing > limit:
			rv.add(row, ExtraSpaceRight, displayColumn(row, cell.EndCol),
				fmt.Sprintf("%d spaces before pipe, expected at most %d", trailing, limit))
		}
	}
}

func (rv *rowValidator) columnSpans(row table.Row) {
	for i, span := range cellSpans(row) {
		if i < len(rv.headerSpans) && span != rv.headerSpans[i] {
			rv.add(row, InconsistentAlignment, displayColumn(row, row.Cells[i].StartCol),
				fmt.Sprintf("Column %d spans %d columns, header spans %d", i+1, span, rv.headerSpans[i]))
			return
		}
	}
}

// cellSpans returns the display width of each cell of row, padding included.
func cellSpans(row table.Row) []int {
	spans := make([]int, len(row.Cells))
	for i, cell := range row.Cells {
		spans[i] = width.Span(cell.Content)
	}
	return spans
}

// displayColumn converts a byte offset in row's raw line to a 1-based display
// column.
func displayColumn(row table.Row, offset int) int {
	return width.Span(row.RawLine[:offset]) + 1
}
