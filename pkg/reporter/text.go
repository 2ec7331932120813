package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/yaklabco/mdtablefix/internal/ui/pretty"
	"github.com/yaklabco/mdtablefix/pkg/runner"
)

// TextReporter writes violations grouped by file, a table of the files that
// need attention and a summary.
type TextReporter struct {
	opts      Options
	styles    *pretty.Styles
	termWidth int
	bw        *bufio.Writer
}

// NewTextReporter returns a TextReporter writing to opts.Writer.
func NewTextReporter(opts Options) *TextReporter {
	return &TextReporter{
		opts:      opts,
		styles:    pretty.NewStyles(pretty.IsColorEnabled(opts.Color, opts.Writer)),
		termWidth: pretty.TerminalWidth(opts.Writer),
		bw:        bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *TextReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil || len(result.Files) == 0 {
		if !r.opts.Quiet {
			fmt.Fprintln(r.bw, r.styles.Dim.Render("No Markdown files found."))
		}
		return 0, nil
	}

	stats := result.Stats
	if r.opts.Quiet {
		if n := stats.FilesWithIssues + stats.FilesErrored; n > 0 && result.Unresolved() {
			fmt.Fprintf(r.bw, "Found issues in %d file(s)\n", n)
		}
		return stats.TotalViolations, nil
	}

	total := r.writeFiles(result)

	if table := pretty.NewTableFormatter(r.styles, r.termWidth).FormatFiles(
		pretty.RowsNeedingAttention(result, r.opts.displayPath),
	); table != "" {
		fmt.Fprint(r.bw, table)
		fmt.Fprintln(r.bw)
	}

	fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(stats))
	fmt.Fprint(r.bw, r.styles.FormatByRule(stats.ByRule))
	fmt.Fprint(r.bw, r.styles.FormatOutcome(result, r.opts.Fixing))

	return total, nil
}

func (r *TextReporter) writeFiles(result *runner.Result) int {
	var total int
	for _, file := range result.Files {
		path := r.opts.displayPath(file.Path)

		if err := file.Err(); err != nil {
			fmt.Fprintf(r.bw, "%s: %s\n",
				r.styles.FilePath.Render(path),
				r.styles.Error.Render(fmt.Sprintf("error: %v", err)))
		}

		pr := file.Result
		if pr == nil || pr.FileResult == nil || !pr.HasIssues() {
			continue
		}

		fmt.Fprintln(r.bw, r.styles.FormatFileHeader(path, pr.IssueCount()))
		shown := pr.Violations
		if r.opts.MaxPerFile > 0 && len(shown) > r.opts.MaxPerFile {
			shown = shown[:r.opts.MaxPerFile]
		}
		for _, v := range shown {
			fmt.Fprint(r.bw, r.styles.FormatViolation(path, v))
		}
		if hidden := pr.IssueCount() - len(shown); hidden > 0 {
			fmt.Fprint(r.bw, r.styles.FormatMore(hidden))
		}
		fmt.Fprintln(r.bw)

		total += pr.IssueCount()
	}
	return total
}
