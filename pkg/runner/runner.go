package runner

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/yaklabco/mdtablefix/internal/logging"
	"github.com/yaklabco/mdtablefix/pkg/lint"
)

// Runner processes discovered files with a shared Pipeline.
type Runner struct {
	Pipeline *lint.Pipeline
}

// New returns a Runner using pipeline.
func New(pipeline *lint.Pipeline) *Runner {
	return &Runner{Pipeline: pipeline}
}

// Run discovers files and processes them on opts.Jobs workers. Outcomes are
// collected in path order whatever order the workers finish in. A cancelled
// context stops the run and returns the outcomes gathered so far with the
// context error.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	logger := logging.FromContext(ctx)

	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Files: make([]FileOutcome, 0, len(files)),
		Stats: Stats{ByRule: make(map[string]int)},
	}
	if len(files) == 0 {
		return result, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	jobs = min(jobs, len(files))

	logger.Debug("processing files",
		logging.FieldFiles, len(files),
		logging.FieldJobs, jobs,
		logging.FieldFix, opts.Pipeline.Fix,
		logging.FieldDryRun, opts.Pipeline.DryRun)

	work := make(chan int)
	outcomes := make([]FileOutcome, len(files))
	done := make([]bool, len(files))

	var wg sync.WaitGroup
	for range jobs {
		wg.Go(func() {
			for idx := range work {
				outcomes[idx] = r.process(ctx, files[idx], opts)
				done[idx] = true
			}
		})
	}

feed:
	for idx := range files {
		select {
		case <-ctx.Done():
			break feed
		case work <- idx:
		}
	}
	close(work)
	wg.Wait()

	for idx, outcome := range outcomes {
		if done[idx] {
			result.accumulate(outcome)
		}
	}

	logger.Debug("run complete",
		logging.FieldFilesScanned, result.Stats.FilesScanned,
		logging.FieldFilesWithIssues, result.Stats.FilesWithIssues,
		logging.FieldFilesFixed, result.Stats.FilesFixed,
		logging.FieldFilesErrored, result.Stats.FilesErrored)

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("run cancelled: %w", err)
	}
	return result, nil
}

func (r *Runner) process(ctx context.Context, path string, opts Options) FileOutcome {
	logger := logging.FromContext(ctx).With(logging.FieldPath, path)

	pr, err := r.Pipeline.ProcessFile(ctx, path, opts.Pipeline)
	if err != nil {
		logger.Debug("file failed", logging.FieldError, err)
		return FileOutcome{Path: path, Error: err}
	}

	switch {
	case pr.Skipped:
		logger.Warn("fix not written", logging.FieldReason, pr.SkipReason)
	case pr.Written:
		logger.Debug("file fixed", logging.FieldFixes, pr.FixesApplied)
	default:
		logger.Debug("file checked", logging.FieldViolations, pr.IssueCount())
	}
	return FileOutcome{Path: path, Result: pr}
}
