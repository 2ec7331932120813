package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/mdtablefix/pkg/lint"
)

// FormatViolation renders one violation as an indented line:
//
//	path:line:col  TYPE  message  (RULE)
func (s *Styles) FormatViolation(path string, v lint.Violation) string {
	location := fmt.Sprintf("%s:%d:%d", s.FilePath.Render(path), v.Line, v.Column)
	return fmt.Sprintf("  %s  %s  %s  %s\n",
		location,
		s.Type.Render(v.Type.String()),
		s.Message.Render(v.Message),
		s.Rule.Render("("+v.Rule()+")"),
	)
}

// FormatFileHeader renders the heading above a file's violations.
func (s *Styles) FormatFileHeader(path string, count int) string {
	header := s.FilePath.Render(path)
	if count > 0 {
		header += s.Dim.Render(fmt.Sprintf(" (%d %s)", count, plural(count, "violation", "violations")))
	}
	return header
}

// FormatMore renders the marker for violations left out of a file's listing.
func (s *Styles) FormatMore(hidden int) string {
	return s.Dim.Render(fmt.Sprintf("  ... and %d more %s", hidden, plural(hidden, "violation", "violations"))) + "\n"
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// FileStatus names what happened to a file, for the status column.
type FileStatus string

const (
	StatusFixed   FileStatus = "fixed"
	StatusPending FileStatus = "pending"
	StatusSkipped FileStatus = "skipped"
	StatusError   FileStatus = "error"
	StatusIssues  FileStatus = "issues"
	StatusOK      FileStatus = "ok"
)

// FormatStatus styles a file status.
func (s *Styles) FormatStatus(status FileStatus) string {
	switch status {
	case StatusFixed, StatusOK:
		return s.Success.Render(string(status))
	case StatusError:
		return s.Error.Render(string(status))
	default:
		return s.Warning.Render(string(status))
	}
}

// truncatePath shortens path to maxLen, keeping the end.
func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	if maxLen <= 3 {
		return path[len(path)-maxLen:]
	}
	return "..." + path[len(path)-maxLen+3:]
}

func padRight(s string, width int) string {
	return s + strings.Repeat(" ", max(width-len(s), 0))
}
