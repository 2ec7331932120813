package lint

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/yaklabco/mdtablefix/internal/logging"
	"github.com/yaklabco/mdtablefix/pkg/config"
	"github.com/yaklabco/mdtablefix/pkg/fix"
	"github.com/yaklabco/mdtablefix/pkg/fsutil"
	"github.com/yaklabco/mdtablefix/pkg/parser/goldmark"
	"github.com/yaklabco/mdtablefix/pkg/table"
	"github.com/yaklabco/mdtablefix/pkg/width"
)

// Pipeline error types for categorization.
var (
	// ErrFileNotFound indicates the file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrPermissionDenied indicates a permission error.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrParseFailure indicates the post-fix re-parse could not run.
	ErrParseFailure = errors.New("parse failure")

	// ErrWriteFailure indicates a write error.
	ErrWriteFailure = errors.New("write failure")
)

// PipelineResult is the outcome of running one file through the pipeline.
type PipelineResult struct {
	*FileResult

	// OriginalInfo is the file state before processing. Nil for in-memory content.
	OriginalInfo *fsutil.FileInfo

	// Modified is true if fixing changed the content.
	Modified bool

	// ModifiedContent is the fixed content, nil when unchanged.
	ModifiedContent []byte

	// Diff is set in dry-run mode.
	Diff *fix.Diff

	// Skipped is true when a fix was computed but not written.
	Skipped    bool
	SkipReason string

	BackupCreated bool
	Written       bool
}

// Summary returns a short human-readable status.
func (pr *PipelineResult) Summary() string {
	switch {
	case pr.Skipped:
		return "skipped: " + pr.SkipReason
	case pr.Written && pr.BackupCreated:
		return "fixed (backup created)"
	case pr.Written:
		return "fixed"
	case pr.Modified:
		return "changes pending"
	case pr.FileResult != nil && pr.HasIssues():
		return "issues found"
	default:
		return "ok"
	}
}

// PipelineOptions controls pipeline behavior.
type PipelineOptions struct {
	// Fix rewrites misformatted tables.
	Fix bool

	// DryRun computes fixes and diffs without writing.
	DryRun bool

	// MaxLineLength is the MD013 limit.
	MaxLineLength int

	// Backup configures the copy made before a file is rewritten.
	Backup fsutil.BackupConfig

	// StrictRaceDetection re-hashes the file before writing. When false only
	// the modification time and size are compared.
	StrictRaceDetection bool

	// VerifyTables re-parses fixed content with goldmark and rejects fixes
	// that lose a table or change its column count.
	VerifyTables bool
}

// DefaultPipelineOptions returns check-only defaults.
func DefaultPipelineOptions() PipelineOptions {
	return PipelineOptions{
		MaxLineLength:       DefaultMaxLineLength,
		Backup:              fsutil.DefaultBackupConfig(),
		StrictRaceDetection: true,
		VerifyTables:        true,
	}
}

// PipelineOptionsFromConfig maps the tool configuration onto PipelineOptions.
func PipelineOptionsFromConfig(cfg *config.Config) PipelineOptions {
	opts := DefaultPipelineOptions()
	if cfg == nil {
		return opts
	}
	opts.Fix = cfg.Fix
	opts.DryRun = cfg.DryRun
	opts.MaxLineLength = cfg.MaxLineLength
	opts.Backup.Enabled = cfg.Backups
	return opts
}

// Pipeline checks and fixes one file at a time. It is safe for concurrent
// use on distinct files.
type Pipeline struct {
	// Resolver supplies markdownlint rule activation. Nil enables all rules.
	Resolver RuleResolver

	gfm *goldmark.Parser
}

// NewPipeline creates a Pipeline using resolver for rule activation.
func NewPipeline(resolver RuleResolver) *Pipeline {
	return &Pipeline{Resolver: resolver, gfm: goldmark.New()}
}

// ProcessFile runs the full pipeline for a file on disk:
//  1. Read and hash the file.
//  2. Check and fix the content in memory.
//  3. Return a diff in dry-run mode.
//  4. Skip the write if the file changed since it was read.
//  5. Create a backup if enabled.
//  6. Write the fixed content atomically.
//
// A file changed by someone else after step 1 is skipped with an error
// wrapping fsutil.ErrConcurrentModification.
func (p *Pipeline) ProcessFile(ctx context.Context, path string, opts PipelineOptions) (*PipelineResult, error) {
	content, info, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", table.ErrFileAccess, categorizeError(err))
	}

	result, err := p.ProcessContent(ctx, path, content, opts)
	if err != nil {
		return nil, err
	}
	result.OriginalInfo = info

	if !result.Modified || opts.DryRun {
		return result, nil
	}

	modified, err := checkModified(ctx, info, opts.StrictRaceDetection)
	if err != nil {
		return nil, err
	}
	if modified {
		result.Skipped = true
		result.SkipReason = fsutil.ErrConcurrentModification.Error()
		result.Err = fmt.Errorf("%w: %s", fsutil.ErrConcurrentModification, path)
		return result, nil
	}

	if opts.Backup.Enabled {
		created, err := fsutil.CreateBackup(ctx, path, opts.Backup)
		if err != nil {
			return nil, fmt.Errorf("create backup: %w", err)
		}
		result.BackupCreated = created
	}

	written, err := fsutil.WriteAtomicIfChanged(ctx, path, result.ModifiedContent, info.Mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}
	result.Written = written

	return result, nil
}

// ProcessContent checks content and, in fix mode, computes the fixed content.
// Nothing is written. Pull request files go through here as well.
func (p *Pipeline) ProcessContent(
	ctx context.Context,
	path string,
	content []byte,
	opts PipelineOptions,
) (*PipelineResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("processing cancelled: %w", err)
	}

	check := Check(path, content, CheckOptions{MaxLineLength: opts.MaxLineLength, Resolver: p.Resolver})

	result := &PipelineResult{
		FileResult: &FileResult{
			Path:        path,
			TablesFound: len(check.Tables),
			Violations:  check.Violations,
		},
	}

	if !opts.Fix || len(check.Tables) == 0 {
		return result, nil
	}

	fixed, err := fix.File(content, check.Tables, fix.FileOptions{
		MaxLineLength: opts.MaxLineLength,
		MD013Enabled:  check.Enabled(RuleLineLength),
		MD060Enabled:  check.Enabled(RuleTableFormat),
		Disabler:      check.Disabler,
	})
	if err != nil {
		return nil, fmt.Errorf("fix %s: %w", path, err)
	}
	if !fixed.Changed() {
		return result, nil
	}

	if opts.VerifyTables {
		if err := p.verify(ctx, content, fixed.Content); err != nil {
			result.Skipped = true
			result.SkipReason = err.Error()
			result.Err = err
			return result, nil
		}
	}

	result.Modified = true
	result.ModifiedContent = fixed.Content
	result.FixesApplied = fixed.TablesFixed
	logWideGlyphTables(ctx, path, check.Tables)

	if opts.DryRun {
		result.Diff = fix.GenerateDiff(path, content, fixed.Content)
	}

	return result, nil
}

// verify returns fix.ErrUnsafeFix when a GFM parser sees fewer or different
// tables in the fixed content than in the original.
func (p *Pipeline) verify(ctx context.Context, original, fixed []byte) error {
	gfm := p.gfm
	if gfm == nil {
		gfm = goldmark.New()
	}

	before, err := gfm.Shapes(ctx, original)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrParseFailure, err)
	}
	after, err := gfm.Shapes(ctx, fixed)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrParseFailure, err)
	}
	if !goldmark.Preserved(before, after) {
		return fmt.Errorf("%w: tables %v became %v", fix.ErrUnsafeFix, before, after)
	}
	return nil
}

// logWideGlyphTables notes rewritten tables whose alignment depends on
// emoji or other double-width glyphs. Terminals and editors disagree on their
// width, so such tables may still look ragged.
func logWideGlyphTables(ctx context.Context, path string, tables []*table.Table) {
	logger := logging.FromContext(ctx)
	for _, tbl := range tables {
		if _, changed := fix.Table(tbl); !changed || !width.HasEmoji(tbl.Text()) {
			continue
		}
		logger.Debug("aligned table contains wide glyphs",
			logging.FieldPath, path,
			logging.FieldLine, tbl.StartLine)
	}
}

func checkModified(ctx context.Context, info *fsutil.FileInfo, strict bool) (bool, error) {
	check := fsutil.CheckModifiedQuick
	if strict {
		check = fsutil.CheckModified
	}
	modified, err := check(ctx, info)
	if err != nil {
		return false, fmt.Errorf("check modified: %w", err)
	}
	return modified, nil
}

// categorizeError wraps an error with the matching pipeline error type.
func categorizeError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fsutil.ErrNotFound), errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%w: %w", ErrFileNotFound, err)
	case errors.Is(err, fsutil.ErrPermissionDenied), errors.Is(err, os.ErrPermission):
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	default:
		return err
	}
}

// IsPipelineError reports whether err is one of the pipeline error types.
func IsPipelineError(err error) bool {
	return errors.Is(err, ErrFileNotFound) ||
		errors.Is(err, ErrPermissionDenied) ||
		errors.Is(err, ErrParseFailure) ||
		errors.Is(err, ErrWriteFailure)
}
