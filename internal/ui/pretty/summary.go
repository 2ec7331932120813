package pretty

import (
	"fmt"
	"slices"
	"strings"

	"github.com/yaklabco/mdtablefix/pkg/runner"
)

// FormatSummaryOneLine renders run statistics on one line, for example
// "24 violations in 2 files (3 scanned), 2 fixed".
func (s *Styles) FormatSummaryOneLine(stats runner.Stats) string {
	scanned := s.Dim.Render(fmt.Sprintf("(%d %s scanned)", stats.FilesScanned, plural(stats.FilesScanned, "file", "files")))

	if stats.TotalViolations == 0 && stats.FilesErrored == 0 {
		return s.Success.Render("No issues found") + " " + scanned + "\n"
	}

	var parts []string
	if stats.TotalViolations > 0 {
		parts = append(parts, fmt.Sprintf("%s in %d %s %s",
			s.Warning.Render(fmt.Sprintf("%d %s", stats.TotalViolations,
				plural(stats.TotalViolations, "violation", "violations"))),
			stats.FilesWithIssues, plural(stats.FilesWithIssues, "file", "files"),
			scanned))
	} else {
		parts = append(parts, scanned)
	}
	if stats.FilesFixed > 0 {
		parts = append(parts, s.Success.Render(fmt.Sprintf("%d %s fixed (%d %s)",
			stats.FilesFixed, plural(stats.FilesFixed, "file", "files"),
			stats.TotalFixes, plural(stats.TotalFixes, "table", "tables"))))
	}
	if stats.FilesSkipped > 0 {
		parts = append(parts, s.Warning.Render(fmt.Sprintf("%d skipped", stats.FilesSkipped)))
	}
	if stats.FilesErrored > 0 {
		parts = append(parts, s.Error.Render(fmt.Sprintf("%d %s failed",
			stats.FilesErrored, plural(stats.FilesErrored, "file", "files"))))
	}
	return strings.Join(parts, ", ") + "\n"
}

// FormatOutcome renders the closing line: a success message when nothing is
// left to do, otherwise a hint.
func (s *Styles) FormatOutcome(result *runner.Result, fixing bool) string {
	stats := result.Stats
	switch {
	case !result.Unresolved() && stats.FilesFixed > 0:
		return s.Success.Render(fmt.Sprintf("Fixed %d %s", stats.FilesFixed, plural(stats.FilesFixed, "file", "files"))) + "\n"
	case !result.Unresolved():
		return s.Success.Render("All tables are formatted") + "\n"
	case stats.FilesWithIssues > stats.FilesFixed && !fixing:
		return s.Dim.Render("Run with --fix to rewrite the tables") + "\n"
	default:
		return s.Failure.Render("Some files still need attention") + "\n"
	}
}

// FormatByRule renders per-rule violation counts in rule order.
func (s *Styles) FormatByRule(byRule map[string]int) string {
	if len(byRule) == 0 {
		return ""
	}
	rules := make([]string, 0, len(byRule))
	for rule := range byRule {
		rules = append(rules, rule)
	}
	slices.Sort(rules)

	parts := make([]string, len(rules))
	for i, rule := range rules {
		parts[i] = fmt.Sprintf("%s %d", s.Rule.Render(rule), byRule[rule])
	}
	return "  " + strings.Join(parts, "  ") + "\n"
}
