package lint

// FileResult summarizes one processed file.
type FileResult struct {
	Path string

	// TablesFound is the number of tables parsed from the file.
	TablesFound int

	// Violations are the unsuppressed violations of the original content.
	Violations []Violation

	// FixesApplied is the number of tables rewritten.
	FixesApplied int

	// Err is set when the file could not be processed.
	Err error
}

// HasIssues reports whether any violations were found.
func (fr *FileResult) HasIssues() bool {
	return len(fr.Violations) > 0
}

// IssueCount returns the number of violations.
func (fr *FileResult) IssueCount() int {
	return len(fr.Violations)
}

// ViolationsByRule counts violations per rule code.
func (fr *FileResult) ViolationsByRule() map[string]int {
	counts := make(map[string]int)
	for _, v := range fr.Violations {
		counts[v.Rule()]++
	}
	return counts
}
