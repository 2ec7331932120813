package reporter

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/yaklabco/mdtablefix/internal/ui/pretty"
	"github.com/yaklabco/mdtablefix/pkg/fix"
	"github.com/yaklabco/mdtablefix/pkg/runner"
)

// DiffReporter writes the proposed fixes as git-style unified diffs. Diffs
// are only computed in dry-run mode.
type DiffReporter struct {
	opts   Options
	styles *pretty.Styles
	out    io.Writer
}

// NewDiffReporter returns a DiffReporter writing to opts.Writer.
func NewDiffReporter(opts Options) *DiffReporter {
	return &DiffReporter{
		opts:   opts,
		styles: pretty.NewStyles(pretty.IsColorEnabled(opts.Color, opts.Writer)),
		out:    opts.Writer,
	}
}

// Report implements Reporter.
func (r *DiffReporter) Report(_ context.Context, result *runner.Result) (int, error) {
	if result == nil {
		return 0, nil
	}

	var files, additions, deletions int
	for _, file := range result.Files {
		if err := file.Err(); err != nil {
			fmt.Fprintf(r.out, "%s: %s\n",
				r.styles.FilePath.Render(r.opts.displayPath(file.Path)),
				r.styles.Error.Render(fmt.Sprintf("error: %v", err)))
			continue
		}
		if file.Result == nil || !file.Result.Diff.HasChanges() {
			continue
		}

		d := file.Result.Diff
		files++
		additions += d.Additions
		deletions += d.Deletions
		r.writeDiff(r.opts.displayPath(file.Path), d)
	}

	if files > 0 && !r.opts.Quiet {
		r.writeSummary(files, additions, deletions)
	}
	return files, nil
}

func (r *DiffReporter) writeDiff(path string, d *fix.Diff) {
	path = strings.TrimPrefix(path, "/")
	fmt.Fprintln(r.out, r.styles.DiffHeader.Render(fmt.Sprintf("diff --git a/%s b/%s", path, path)))
	fmt.Fprintln(r.out, r.styles.DiffRemove.Render("--- a/"+path))
	fmt.Fprintln(r.out, r.styles.DiffAdd.Render("+++ b/"+path))

	for _, h := range d.Hunks {
		fmt.Fprintln(r.out, r.styles.DiffHunk.Render(fmt.Sprintf("@@ -%d,%d +%d,%d @@",
			h.OriginalStart, h.OriginalCount, h.ModifiedStart, h.ModifiedCount)))
		for _, line := range h.Lines {
			text := line.Kind.Prefix() + line.Content
			switch line.Kind {
			case fix.DiffLineAdd:
				fmt.Fprintln(r.out, r.styles.DiffAdd.Render(text))
			case fix.DiffLineRemove:
				fmt.Fprintln(r.out, r.styles.DiffRemove.Render(text))
			default:
				fmt.Fprintln(r.out, r.styles.DiffContext.Render(text))
			}
		}
	}
	fmt.Fprintln(r.out)
}

func (r *DiffReporter) writeSummary(files, additions, deletions int) {
	parts := []string{fmt.Sprintf("%d %s changed", files, plural(files, "file", "files"))}
	if additions > 0 {
		parts = append(parts, r.styles.DiffAdd.Render(
			fmt.Sprintf("%d %s(+)", additions, plural(additions, "insertion", "insertions"))))
	}
	if deletions > 0 {
		parts = append(parts, r.styles.DiffRemove.Render(
			fmt.Sprintf("%d %s(-)", deletions, plural(deletions, "deletion", "deletions"))))
	}
	fmt.Fprintln(r.out, strings.Join(parts, ", "))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
