package fix

import (
	"errors"
	"fmt"

	"github.com/yaklabco/mdtablefix/pkg/config"
	"github.com/yaklabco/mdtablefix/pkg/suppress"
	"github.com/yaklabco/mdtablefix/pkg/table"
	"github.com/yaklabco/mdtablefix/pkg/width"
)

// ErrUnsafeFix indicates a fix that would change how a GFM parser reads the
// document's tables. Such a fix is never written.
var ErrUnsafeFix = errors.New("fix would change table structure")

// Suppression comments placed around tables that stay too wide after alignment.
const (
	LineLengthDisable = "<!-- markdownlint-disable MD013 -->"
	LineLengthEnable  = "<!-- markdownlint-enable MD013 -->"
)

const (
	ruleLineLength  = "MD013"
	ruleTableFormat = "MD060"
)

// FileOptions controls File.
type FileOptions struct {
	// MaxLineLength is the MD013 limit. Zero means config.DefaultMaxLineLength.
	MaxLineLength int

	// MD013Enabled and MD060Enabled are the configured rule activations for
	// the file. With MD060 off no table is rewritten.
	MD013Enabled bool
	MD060Enabled bool

	// Disabler supplies inline suppression. A table whose first line has
	// MD060 disabled is left alone.
	Disabler *suppress.Disabler
}

// FileResult is the outcome of fixing one file's content.
type FileResult struct {
	// Content is the fixed content. It is the input slice itself when
	// nothing changed.
	Content []byte

	// TablesFixed counts the tables that were rewritten or bracketed.
	TablesFixed int

	// Edits are the applied edits, sorted.
	Edits []TextEdit
}

// Changed reports whether any table was fixed.
func (r *FileResult) Changed() bool {
	return r.TablesFixed > 0
}

// File aligns every fixable table in content. tables must have been parsed
// from content. Each changed row becomes one edit that keeps the row's line
// terminator. When MD013 is enabled and an aligned row is still longer than
// the limit, the table is wrapped in LineLengthDisable and LineLengthEnable
// unless MD013 is already disabled at its first line. Rendered rows and
// directives carry the header row's indentation.
func File(content []byte, tables []*table.Table, opts FileOptions) (*FileResult, error) {
	result := &FileResult{Content: content}
	if !opts.MD060Enabled || len(tables) == 0 {
		return result, nil
	}

	lines := table.BuildLines(content)
	eol := table.Terminator(content, lines)

	var edits []TextEdit
	for _, tbl := range tables {
		if !tbl.WellFormed() || opts.Disabler.DisabledAt(tbl.StartLine, ruleTableFormat) {
			continue
		}
		if tbl.EndLine > len(lines) {
			return nil, fmt.Errorf("table at line %d ends past the last line %d", tbl.StartLine, len(lines))
		}

		tableEdits := alignEdits(tbl, lines)
		if opts.MD013Enabled && needsBracket(tbl, opts) {
			first := lines[tbl.StartLine-1]
			last := lines[tbl.EndLine-1]
			indent := tbl.Indent()
			tableEdits = append(tableEdits,
				Insert(first.StartOffset, indent+LineLengthDisable+eol),
				Insert(last.NewlineStart, eol+indent+LineLengthEnable),
			)
		}
		if len(tableEdits) > 0 {
			edits = append(edits, tableEdits...)
			result.TablesFixed++
		}
	}

	if len(edits) == 0 {
		return result, nil
	}

	prepared, err := PrepareEdits(edits, len(content))
	if err != nil {
		return nil, fmt.Errorf("prepare edits: %w", err)
	}
	result.Edits = prepared
	result.Content = ApplyEdits(content, prepared)
	return result, nil
}

func alignEdits(tbl *table.Table, lines []table.LineInfo) []TextEdit {
	var edits []TextEdit
	for i, text := range RenderRows(tbl) {
		row := tbl.Rows[i]
		if text == row.RawLine {
			continue
		}
		li := lines[row.LineNumber-1]
		edits = append(edits, Replace(li.StartOffset, li.NewlineStart, text))
	}
	return edits
}

// needsBracket reports whether an aligned row of tbl exceeds the line limit
// and no directive already covers the table.
func needsBracket(tbl *table.Table, opts FileOptions) bool {
	if opts.Disabler.DisabledAt(tbl.StartLine, ruleLineLength) {
		return false
	}
	limit := opts.MaxLineLength
	if limit <= 0 {
		limit = config.DefaultMaxLineLength
	}
	for _, text := range RenderRows(tbl) {
		if width.Span(text) > limit {
			return true
		}
	}
	return false
}
