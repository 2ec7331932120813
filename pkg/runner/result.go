package runner

import "github.com/yaklabco/mdtablefix/pkg/lint"

// FileOutcome is what happened to one file.
type FileOutcome struct {
	Path string

	// Result is nil when Error is set.
	Result *lint.PipelineResult

	Error error
}

// Err returns the processing error, including a fix that was computed but
// refused.
func (o FileOutcome) Err() error {
	if o.Error != nil {
		return o.Error
	}
	if o.Result != nil && o.Result.FileResult != nil {
		return o.Result.Err
	}
	return nil
}

// Stats aggregates a run.
type Stats struct {
	FilesScanned    int
	FilesWithIssues int
	FilesFixed      int
	FilesSkipped    int
	FilesErrored    int
	TotalViolations int

	// TotalFixes counts rewritten tables.
	TotalFixes int

	// ByRule counts violations per rule code.
	ByRule map[string]int
}

// Result is the outcome of a run.
type Result struct {
	// Files are ordered by path.
	Files []FileOutcome
	Stats Stats
}

// HasIssues reports whether any violation was found.
func (r *Result) HasIssues() bool {
	return r != nil && r.Stats.TotalViolations > 0
}

// Unresolved reports whether the run leaves work behind: a file failed, or a
// file with violations was not fixed.
func (r *Result) Unresolved() bool {
	if r == nil {
		return false
	}
	return r.Stats.FilesErrored > 0 || r.Stats.FilesWithIssues > r.Stats.FilesFixed
}

func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)
	r.Stats.FilesScanned++

	if outcome.Err() != nil {
		r.Stats.FilesErrored++
	}

	pr := outcome.Result
	if pr == nil || pr.FileResult == nil {
		return
	}

	if pr.Skipped {
		r.Stats.FilesSkipped++
	}
	if pr.HasIssues() {
		r.Stats.FilesWithIssues++
	}
	if pr.Written {
		r.Stats.FilesFixed++
		r.Stats.TotalFixes += pr.FixesApplied
	}

	r.Stats.TotalViolations += pr.IssueCount()
	for rule, n := range pr.ViolationsByRule() {
		r.Stats.ByRule[rule] += n
	}
}
