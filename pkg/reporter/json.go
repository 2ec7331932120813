package reporter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/yaklabco/mdtablefix/pkg/runner"
)

// JSONOutput is the document written by the JSON reporter.
type JSONOutput struct {
	FilesScanned    int              `json:"files_scanned"`
	FilesWithIssues int              `json:"files_with_issues"`
	FilesFixed      int              `json:"files_fixed"`
	TotalViolations int              `json:"total_violations"`
	TotalFixes      int              `json:"total_fixes"`
	Files           []JSONFileResult `json:"files"`
}

// JSONFileResult is one file's entry.
type JSONFileResult struct {
	Path         string  `json:"path"`
	TablesFound  int     `json:"tables_found"`
	Violations   int     `json:"violations"`
	FixesApplied int     `json:"fixes_applied"`
	Error        *string `json:"error"`

	ViolationDetails []JSONViolation `json:"violation_details,omitempty"`
}

// JSONViolation is one violation.
type JSONViolation struct {
	Type    string `json:"type"`
	Rule    string `json:"rule"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Message string `json:"message"`
}

// JSONReporter writes results as indented JSON.
type JSONReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewJSONReporter returns a JSONReporter writing to opts.Writer.
func NewJSONReporter(opts Options) *JSONReporter {
	return &JSONReporter{opts: opts, bw: bufio.NewWriterSize(opts.Writer, bufWriterSize)}
}

// Report implements Reporter.
func (r *JSONReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	output := BuildJSON(result, r.opts.displayPath)

	encoder := json.NewEncoder(r.bw)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(output); err != nil {
		return 0, fmt.Errorf("encode JSON: %w", err)
	}
	return output.TotalViolations, nil
}

// BuildJSON converts result to its JSON document. display maps file paths
// to the form shown; nil keeps them as they are.
func BuildJSON(result *runner.Result, display func(string) string) *JSONOutput {
	output := &JSONOutput{Files: []JSONFileResult{}}
	if result == nil {
		return output
	}
	if display == nil {
		display = func(p string) string { return p }
	}

	stats := result.Stats
	output.FilesScanned = stats.FilesScanned
	output.FilesWithIssues = stats.FilesWithIssues
	output.FilesFixed = stats.FilesFixed
	output.TotalViolations = stats.TotalViolations
	output.TotalFixes = stats.TotalFixes

	for _, file := range result.Files {
		entry := JSONFileResult{Path: display(file.Path)}
		if err := file.Err(); err != nil {
			msg := err.Error()
			entry.Error = &msg
		}

		if pr := file.Result; pr != nil && pr.FileResult != nil {
			entry.TablesFound = pr.TablesFound
			entry.Violations = pr.IssueCount()
			if pr.Written {
				entry.FixesApplied = pr.FixesApplied
			}
			for _, v := range pr.Violations {
				entry.ViolationDetails = append(entry.ViolationDetails, JSONViolation{
					Type:    v.Type.String(),
					Rule:    v.Rule(),
					Line:    v.Line,
					Column:  v.Column,
					Message: v.Message,
				})
			}
		}

		output.Files = append(output.Files, entry)
	}
	return output
}
