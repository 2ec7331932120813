package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/yaklabco/mdtablefix/internal/configloader"
	"github.com/yaklabco/mdtablefix/internal/logging"
	"github.com/yaklabco/mdtablefix/internal/ui/pretty"
	"github.com/yaklabco/mdtablefix/pkg/config"
	"github.com/yaklabco/mdtablefix/pkg/github"
)

// tokenEnvVar supplies the token when --token is not given.
const tokenEnvVar = "GITHUB_TOKEN"

// ErrTokenRequired is returned when no GitHub token is available.
var ErrTokenRequired = errors.New("GitHub token required: set " + tokenEnvVar + " or use --token")

type githubFlags struct {
	logFlags

	token         string
	fix           bool
	noFix         bool
	dryRun        bool
	includeDrafts bool
	jobs          int
	noComment     bool
	maxLineLength int
}

func newGitHubCommand(global *globalFlags) *cobra.Command {
	flags := &githubFlags{}

	cmd := &cobra.Command{
		Use:   "github <org | org URL | pull request URL>",
		Short: "Fix Markdown tables in GitHub pull requests",
		Long: `Fix the Markdown tables changed by open GitHub pull requests.

Given a pull request URL, that pull request is fixed. Given an organization
name or URL, every unarchived repository is scanned for open pull requests
that change Markdown files, and each one is fixed.

Fixes are committed to the pull request's head branch, one commit per file,
followed by a summary comment.`,
		Example: `  mdtablefix github https://github.com/acme/docs/pull/42
  mdtablefix github acme --dry-run
  mdtablefix github https://github.com/acme --include-drafts --no-comment`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGitHub(cmd, args[0], global, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.token, "token", "t", "", "GitHub token (default $"+tokenEnvVar+")")
	cmd.Flags().BoolVar(&flags.fix, "fix", true, "commit fixes to pull request branches")
	cmd.Flags().BoolVar(&flags.noFix, "no-fix", false, "only report what would be fixed")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "compute fixes without committing them")
	cmd.Flags().BoolVar(&flags.includeDrafts, "include-drafts", false, "include draft pull requests in organization scans")
	cmd.Flags().IntVarP(&flags.jobs, "jobs", "j", config.DefaultJobs, "pull requests processed in parallel")
	cmd.Flags().BoolVar(&flags.noComment, "no-comment", false, "do not post a summary comment")
	cmd.Flags().IntVarP(&flags.maxLineLength, "max-line-length", "l", config.DefaultMaxLineLength,
		"MD013 line length limit")
	cmd.MarkFlagsMutuallyExclusive("fix", "no-fix")
	flags.register(cmd)

	return cmd
}

func (f *githubFlags) overrides(cmd *cobra.Command) func(*config.Config) {
	changed := cmd.Flags().Changed
	return func(cfg *config.Config) {
		if changed("include-drafts") {
			cfg.GitHub.IncludeDrafts = f.includeDrafts
		}
		if changed("no-comment") {
			cfg.GitHub.Comment = !f.noComment
		}
		if changed("jobs") {
			cfg.Jobs = f.jobs
		}
		if changed("max-line-length") {
			cfg.MaxLineLength = f.maxLineLength
		}
	}
}

// githubRun holds what the pull request and organization paths share.
type githubRun struct {
	out    io.Writer
	styles *pretty.Styles
	cfg    *config.Config
	client *github.Client
	opts   github.FixOptions
	quiet  bool
}

func runGitHub(cmd *cobra.Command, target string, global *globalFlags, flags *githubFlags) error {
	ctx, logger := commandContext(cmd, flags.level(global))

	token := flags.token
	if token == "" {
		token = os.Getenv(tokenEnvVar)
	}
	if token == "" {
		return ErrTokenRequired
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}
	loaded, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: global.configPath,
		Overrides:    flags.overrides(cmd),
	})
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	cfg := loaded.Config

	run := &githubRun{
		out:    cmd.OutOrStdout(),
		styles: pretty.NewStyles(pretty.IsColorEnabled(global.color, cmd.OutOrStdout())),
		cfg:    cfg,
		client: github.NewClient(token, github.WithBaseURL(cfg.GitHub.BaseURL)),
		opts: github.FixOptions{
			DryRun:        flags.dryRun || flags.noFix || !flags.fix,
			Comment:       cfg.GitHub.Comment,
			MaxLineLength: cfg.MaxLineLength,
		},
		quiet: flags.quiet,
	}

	if github.IsPRURL(target) {
		ref, err := github.ParsePRURL(target)
		if err != nil {
			return err
		}
		logger.Debug("fixing pull request", logging.FieldPR, ref.String())
		return run.pullRequest(ctx, ref)
	}

	org, err := github.ParseOrg(target)
	if err != nil {
		return err
	}
	logger.Debug("scanning organization", logging.FieldOrg, org)
	return run.organization(ctx, org)
}

func (r *githubRun) printf(format string, args ...any) {
	if !r.quiet {
		fmt.Fprintf(r.out, format, args...)
	}
}

func (r *githubRun) pullRequest(ctx context.Context, ref github.PRRef) error {
	r.printf("Analyzing %s\n", r.styles.FilePath.Render(ref.String()))

	result, err := github.NewFixer(r.client).FixPRByRef(ctx, ref, r.opts)
	if err != nil {
		return fmt.Errorf("fix %s: %w", ref, err)
	}
	r.writeFixResult(result)

	if len(result.Failed) > 0 {
		return fmt.Errorf("fix %s: %d file(s) failed", ref, len(result.Failed))
	}
	return nil
}

func (r *githubRun) writeFixResult(result *github.FixResult) {
	for _, f := range result.Fixed {
		r.printf("  %s  %d table(s)\n", r.styles.FilePath.Render(f.Path), f.Tables)
		if result.DryRun && f.Diff != nil && !r.quiet {
			fmt.Fprint(r.out, f.Diff.String())
		}
	}
	for _, f := range result.Failed {
		fmt.Fprintf(r.out, "  %s  %s\n", r.styles.FilePath.Render(f.Path), r.styles.Error.Render(f.Err.Error()))
	}

	n := result.FilesFixed()
	switch {
	case n == 0:
		r.printf("%s\n", r.styles.Success.Render("No table fixes needed"))
	case result.DryRun:
		r.printf("%s\n", r.styles.Warning.Render(fmt.Sprintf("Would fix %d file(s) in %s", n, result.Ref)))
	default:
		r.printf("%s\n", r.styles.Success.Render(fmt.Sprintf("Fixed %d file(s) in %s", n, result.Ref)))
	}
}

func (r *githubRun) organization(ctx context.Context, org string) error {
	r.printf("Scanning organization %s\n", r.styles.FilePath.Render(org))

	scanner := github.NewScanner(r.client)
	scanner.Concurrency = max(r.cfg.Jobs, 1)

	scan, err := scanner.ScanOrganization(ctx, org, r.cfg.GitHub.IncludeDrafts)
	if err != nil {
		return err
	}

	r.printf("Found %d pull request(s) in %d repositories, %d changing Markdown files\n",
		scan.PullRequests, scan.Repositories, len(scan.Candidates))
	for _, repo := range slices.Sorted(maps.Keys(scan.RepoErrors)) {
		fmt.Fprintf(r.out, "  %s  %s\n",
			r.styles.FilePath.Render(org+"/"+repo), r.styles.Error.Render(scan.RepoErrors[repo].Error()))
	}
	if len(scan.Candidates) == 0 {
		r.printf("%s\n", r.styles.Success.Render("No pull requests to fix"))
		return nil
	}

	for _, c := range scan.Candidates {
		line := fmt.Sprintf("  %s  %s", r.styles.FilePath.Render(c.Ref().String()), c.PR.Title)
		if scanner.IsBlocked(ctx, c.Owner, c.Repo, c.PR) {
			line += "  " + r.styles.Warning.Render("(blocked by failing checks)")
		}
		r.printf("%s\n", line)
	}

	return r.fixCandidates(ctx, scan.Candidates)
}

// fixCandidates fixes pull requests in parallel and prints each result in
// scan order.
func (r *githubRun) fixCandidates(ctx context.Context, candidates []github.Candidate) error {
	logger := logging.FromContext(ctx)
	fixer := github.NewFixer(r.client)

	results := make([]*github.FixResult, len(candidates))
	var (
		mu     sync.Mutex
		failed int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.cfg.Jobs, 1))
	for i, c := range candidates {
		g.Go(func() error {
			result, err := fixer.FixPR(gctx, c.Owner, c.Repo, c.PR, r.opts)
			if err != nil {
				logger.Warn("could not fix pull request", logging.FieldPR, c.Ref().String(), logging.FieldError, err)
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}
			results[i] = result
			return nil
		})
	}
	_ = g.Wait()

	var prsFixed, filesFixed int
	for _, result := range results {
		if result == nil {
			continue
		}
		if result.FilesFixed() == 0 && len(result.Failed) == 0 {
			continue
		}
		r.printf("\n%s\n", r.styles.Bold.Render(result.Ref.String()))
		r.writeFixResult(result)
		if result.FilesFixed() > 0 {
			prsFixed++
			filesFixed += result.FilesFixed()
		}
		if len(result.Failed) > 0 {
			failed++
		}
	}

	verb := "Fixed"
	if r.opts.DryRun {
		verb = "Would fix"
	}
	r.printf("\n%s\n", r.styles.Success.Render(fmt.Sprintf("%s %d file(s) in %d pull request(s)", verb, filesFixed, prsFixed)))

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("organization scan cancelled: %w", err)
	}
	if failed > 0 {
		return fmt.Errorf("%d pull request(s) could not be fully fixed", failed)
	}
	return nil
}
