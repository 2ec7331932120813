package table

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yaklabco/mdtablefix/pkg/fsutil"
)

// ErrFileAccess indicates the Markdown file could not be read.
var ErrFileAccess = errors.New("file access failed")

// ParseFile reads path and returns the tables it contains.
// A file without tables yields an empty slice; an unreadable file is an error
// wrapping ErrFileAccess.
func ParseFile(ctx context.Context, path string) ([]*Table, error) {
	content, _, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileAccess, err)
	}
	return ParseContent(path, content), nil
}

// ParseContent parses tables from in-memory file content.
func ParseContent(path string, content []byte) []*Table {
	return Parse(path, SplitLines(content))
}

// Parse groups lines into tables. Line numbers are 1-based indexes into lines.
// Trailing "\r" and "\n" on each line are ignored, so lines split with their
// terminators kept work as well.
//
// A table is a maximal run of consecutive lines containing at least one
// delimiter pipe whose second line is a separator row. A separator whose
// cells mix "-" and ":" out of grammar still starts a table. Rows whose cell count
// differs from the header stay in the table so the validator can report them.
func Parse(path string, lines []string) []*Table {
	var tables []*Table

	i := 0
	for i < len(lines) {
		if !isCandidate(clean(lines[i])) {
			i++
			continue
		}

		end := i
		for end < len(lines) && isCandidate(clean(lines[end])) {
			end++
		}

		if tbl := buildTable(path, lines, i, end); tbl != nil {
			tables = append(tables, tbl)
		}
		i = end
	}

	return tables
}

// buildTable turns the candidate run lines[start:end] into a table whose
// header is the first line followed by a separator. Leading lines of the run
// that are not part of the table are skipped.
func buildTable(path string, lines []string, start, end int) *Table {
	for h := start; h+1 < end; h++ {
		header := NewRow(clean(lines[h]), h+1)
		if separatorLike(header.Cells) {
			continue
		}
		if !separatorLike(NewRow(clean(lines[h+1]), h+2).Cells) {
			continue
		}

		rows := make([]Row, 0, end-h)
		for n := h; n < end; n++ {
			rows = append(rows, NewRow(clean(lines[n]), n+1))
		}
		return &Table{
			Rows:      rows,
			StartLine: h + 1,
			EndLine:   end,
			FilePath:  path,
		}
	}
	return nil
}

func isCandidate(line string) bool {
	if strings.TrimSpace(line) == "" {
		return false
	}
	return len(PipePositions(line)) > 0
}

func clean(line string) string {
	return strings.TrimRight(line, "\r\n")
}
