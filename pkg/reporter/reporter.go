// Package reporter renders run results as styled text, JSON or unified diffs.
package reporter

import (
	"context"
	"fmt"
	"os"

	"github.com/yaklabco/mdtablefix/pkg/runner"
)

// Reporter writes a run result.
type Reporter interface {
	// Report writes result and returns the number of items reported:
	// violations for text and JSON, changed files for diff.
	Report(ctx context.Context, result *runner.Result) (int, error)
}

// New returns the Reporter for opts.Format.
func New(opts Options) (Reporter, error) {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}
	if opts.Format == "" {
		opts.Format = FormatText
	}

	switch opts.Format {
	case FormatText:
		return NewTextReporter(opts), nil
	case FormatJSON:
		return NewJSONReporter(opts), nil
	case FormatDiff:
		return NewDiffReporter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", opts.Format)
	}
}
