package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yaklabco/mdtablefix/pkg/runner"
)

const (
	tablePadding    = 2
	minFileWidth    = 20
	tablesWidth     = len("TABLES")
	violationsWidth = len("VIOLATIONS")
	statusWidth     = len("pending")
	heavySeparator  = "="
)

// FileRow is one line of the files table.
type FileRow struct {
	Path       string
	Tables     int
	Violations int
	Status     FileStatus
}

// StatusOf classifies a file outcome.
func StatusOf(outcome runner.FileOutcome) FileStatus {
	pr := outcome.Result
	switch {
	case outcome.Err() != nil:
		return StatusError
	case pr == nil:
		return StatusOK
	case pr.Written:
		return StatusFixed
	case pr.Skipped:
		return StatusSkipped
	case pr.Modified:
		return StatusPending
	case pr.FileResult != nil && pr.HasIssues():
		return StatusIssues
	default:
		return StatusOK
	}
}

// RowsNeedingAttention returns a row for every file with violations or an
// error, in result order. display maps a file path to the form shown.
func RowsNeedingAttention(result *runner.Result, display func(string) string) []FileRow {
	if result == nil {
		return nil
	}
	var rows []FileRow
	for _, file := range result.Files {
		status := StatusOf(file)
		var tables, violations int
		if pr := file.Result; pr != nil && pr.FileResult != nil {
			tables = pr.TablesFound
			violations = pr.IssueCount()
		}
		if violations == 0 && status != StatusError {
			continue
		}
		rows = append(rows, FileRow{Path: display(file.Path), Tables: tables, Violations: violations, Status: status})
	}
	return rows
}

// TableFormatter lays out the files table within a terminal width.
type TableFormatter struct {
	styles    *Styles
	termWidth int
}

// NewTableFormatter returns a formatter. A non-positive termWidth means
// DefaultTermWidth.
func NewTableFormatter(styles *Styles, termWidth int) *TableFormatter {
	if termWidth <= 0 {
		termWidth = DefaultTermWidth
	}
	return &TableFormatter{styles: styles, termWidth: termWidth}
}

// FormatFiles renders rows as a FILE / TABLES / VIOLATIONS / STATUS table.
// Long paths are shortened from the left to fit the terminal.
func (t *TableFormatter) FormatFiles(rows []FileRow) string {
	if len(rows) == 0 {
		return ""
	}

	fileWidth := minFileWidth
	for _, row := range rows {
		fileWidth = max(fileWidth, len(row.Path))
	}
	fixed := tablesWidth + violationsWidth + statusWidth + tablePadding*4
	if fileWidth+fixed > t.termWidth {
		fileWidth = max(minFileWidth, t.termWidth-fixed)
	}
	total := fileWidth + fixed

	var sb strings.Builder
	header := fmt.Sprintf(" %-*s  %*s  %*s  %-*s ",
		fileWidth, "FILE", tablesWidth, "TABLES", violationsWidth, "VIOLATIONS", statusWidth, "STATUS")
	sb.WriteString(t.styles.TableHeader.Render(header) + "\n")
	sb.WriteString(t.styles.TableSeparator.Render(strings.Repeat(heavySeparator, total)) + "\n")

	for _, row := range rows {
		fmt.Fprintf(&sb, " %s  %*s  %*s  %s\n",
			padRight(truncatePath(row.Path, fileWidth), fileWidth),
			tablesWidth, strconv.Itoa(row.Tables),
			violationsWidth, strconv.Itoa(row.Violations),
			t.styles.FormatStatus(row.Status),
		)
	}

	sb.WriteString(t.styles.TableSeparator.Render(strings.Repeat(heavySeparator, total)) + "\n")
	return sb.String()
}
