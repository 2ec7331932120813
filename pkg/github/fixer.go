package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/yaklabco/mdtablefix/internal/logging"
	"github.com/yaklabco/mdtablefix/pkg/fix"
	"github.com/yaklabco/mdtablefix/pkg/lint"
)

// FixOptions controls FixPR.
type FixOptions struct {
	// DryRun computes fixes without committing or commenting.
	DryRun bool

	// Comment posts a summary comment after committing fixes.
	Comment bool

	// MaxLineLength is the MD013 limit. Zero means lint.DefaultMaxLineLength.
	MaxLineLength int
}

// FixedFile is a file whose tables were rewritten.
type FixedFile struct {
	Path   string
	Tables int

	// Diff is set in dry-run mode.
	Diff *fix.Diff
}

// FileFailure is a file that could not be fixed.
type FileFailure struct {
	Path string
	Err  error
}

// FixResult is the outcome of fixing one pull request.
type FixResult struct {
	Ref    PRRef
	Branch string
	DryRun bool

	// MarkdownFiles is the number of Markdown files the pull request changes.
	MarkdownFiles int

	Fixed  []FixedFile
	Failed []FileFailure

	// Commented is true when the summary comment was posted.
	Commented bool
}

// FilesFixed returns the number of files rewritten, or that would be in a
// dry run.
func (r *FixResult) FilesFixed() int {
	return len(r.Fixed)
}

// TablesFixed returns the number of tables rewritten.
func (r *FixResult) TablesFixed() int {
	var n int
	for _, f := range r.Fixed {
		n += f.Tables
	}
	return n
}

// Fixer rewrites misformatted tables on pull request branches.
type Fixer struct {
	Client *Client

	// Pipeline checks and fixes content. Pull request files have no local
	// markdownlint configuration, so its resolver is normally nil.
	Pipeline *lint.Pipeline
}

// NewFixer returns a Fixer using client and a pipeline with every rule
// enabled.
func NewFixer(client *Client) *Fixer {
	return &Fixer{Client: client, Pipeline: lint.NewPipeline(nil)}
}

// FixPRByRef fetches a pull request and fixes it.
func (f *Fixer) FixPRByRef(ctx context.Context, ref PRRef, opts FixOptions) (*FixResult, error) {
	pr, err := f.Client.PullRequest(ctx, ref.Owner, ref.Repo, ref.Number)
	if err != nil {
		return nil, err
	}
	return f.FixPR(ctx, ref.Owner, ref.Repo, *pr, opts)
}

// FixPR checks every Markdown file the pull request changes, at the head
// branch, and commits fixed content back to the branch one file at a time.
// A file that fails is recorded in Failed and the rest are still processed.
// When anything was committed and opts.Comment is set a summary comment is
// posted; a failed comment is logged only.
func (f *Fixer) FixPR(ctx context.Context, owner, repo string, pr PullRequest, opts FixOptions) (*FixResult, error) {
	ref := PRRef{Owner: owner, Repo: repo, Number: pr.Number}
	if pr.Number <= 0 || pr.Head.Ref == "" || pr.Head.SHA == "" {
		return nil, fmt.Errorf("%w: pull request %s is missing its number or head branch", ErrInvalidTarget, ref)
	}

	logger := logging.FromContext(ctx).With(
		logging.FieldRepo, owner+"/"+repo,
		logging.FieldPR, pr.Number,
		logging.FieldBranch, pr.Head.Ref)
	ctx = logging.WithLogger(ctx, logger)

	files, err := f.Client.PRFiles(ctx, owner, repo, pr.Number)
	if err != nil {
		return nil, err
	}
	markdown := MarkdownFiles(files)

	result := &FixResult{Ref: ref, Branch: pr.Head.Ref, DryRun: opts.DryRun, MarkdownFiles: len(markdown)}
	if len(markdown) == 0 {
		logger.Info("no Markdown files to fix")
		return result, nil
	}

	for _, file := range markdown {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("fix %s cancelled: %w", ref, err)
		}
		fixed, changed, err := f.fixFile(ctx, ref, pr, file, opts)
		switch {
		case err != nil:
			logger.Warn("could not fix file", logging.FieldPath, file.Filename, logging.FieldError, err)
			result.Failed = append(result.Failed, FileFailure{Path: file.Filename, Err: err})
		case changed:
			result.Fixed = append(result.Fixed, fixed)
		}
	}

	logger.Info("pull request processed",
		logging.FieldFilesFixed, result.FilesFixed(),
		logging.FieldFixes, result.TablesFixed(),
		logging.FieldDryRun, opts.DryRun)

	if opts.Comment && !opts.DryRun && result.FilesFixed() > 0 {
		if err := f.Client.CreateComment(ctx, owner, repo, pr.Number, CommentBody(result)); err != nil {
			logger.Warn("could not post comment", logging.FieldError, err)
		} else {
			result.Commented = true
		}
	}

	return result, nil
}

// fixFile reports changed=false when the file needs no change.
func (f *Fixer) fixFile(
	ctx context.Context,
	ref PRRef,
	pr PullRequest,
	file PRFile,
	opts FixOptions,
) (FixedFile, bool, error) {
	logger := logging.FromContext(ctx).With(logging.FieldPath, file.Filename)

	fc, err := f.Client.FileContent(ctx, ref.Owner, ref.Repo, file.Filename, pr.Head.Ref)
	if err != nil {
		return FixedFile{}, false, err
	}

	pipeOpts := lint.DefaultPipelineOptions()
	pipeOpts.Fix = true
	pipeOpts.DryRun = opts.DryRun
	if opts.MaxLineLength > 0 {
		pipeOpts.MaxLineLength = opts.MaxLineLength
	}

	res, err := f.Pipeline.ProcessContent(ctx, file.Filename, fc.Content, pipeOpts)
	if err != nil {
		return FixedFile{}, false, err
	}
	if res.Skipped {
		return FixedFile{}, false, res.Err
	}
	if !res.Modified {
		logger.Debug("no changes", logging.FieldViolations, res.IssueCount())
		return FixedFile{}, false, nil
	}

	fixed := FixedFile{Path: file.Filename, Tables: res.FixesApplied, Diff: res.Diff}
	if opts.DryRun {
		logger.Info("would fix file", logging.FieldFixes, fixed.Tables)
		return fixed, true, nil
	}

	// The branch may have moved since the content was read.
	current, err := f.Client.FileContent(ctx, ref.Owner, ref.Repo, file.Filename, pr.Head.Ref)
	if err != nil {
		return FixedFile{}, false, err
	}
	sha := current.SHA
	if sha == "" {
		sha = fc.SHA
	}

	err = f.Client.UpdateFile(ctx, ref.Owner, ref.Repo, file.Filename, FileUpdate{
		Message: CommitMessage(file.Filename, fixed.Tables, pr.Number),
		Content: res.ModifiedContent,
		Branch:  pr.Head.Ref,
		SHA:     sha,
	})
	if err != nil {
		return FixedFile{}, false, err
	}
	logger.Info("file fixed", logging.FieldFixes, fixed.Tables)
	return fixed, true, nil
}

// CommitMessage is the message of the commit fixing path.
func CommitMessage(path string, tables, number int) string {
	return fmt.Sprintf("Fix markdown table formatting in %s\n\nAutomatically fixed %d table(s) in PR #%d",
		path, tables, number)
}

// CommentBody renders the summary comment for result.
func CommentBody(result *FixResult) string {
	var sb strings.Builder
	sb.WriteString("## Markdown Table Fixer\n\n")
	sb.WriteString("Automatically fixed markdown table formatting issues:\n")
	fmt.Fprintf(&sb, "- **%d** file(s) updated\n", result.FilesFixed())
	fmt.Fprintf(&sb, "- **%d** table(s) fixed\n\n", result.TablesFixed())

	if len(result.Fixed) > 0 {
		sb.WriteString("### Files Updated:\n")
		for _, f := range result.Fixed {
			fmt.Fprintf(&sb, "- `%s` - %d table(s) fixed\n", f.Path, f.Tables)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("---\n")
	sb.WriteString("*This fix was automatically applied by mdtablefix*")
	return sb.String()
}
