package github

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/yaklabco/mdtablefix/internal/logging"
)

// DefaultScanConcurrency is the number of repositories scanned at once.
const DefaultScanConcurrency = 4

// Check run states that count as failing.
const (
	checkCompleted      = "completed"
	conclusionFailure   = "failure"
	conclusionActionReq = "action_required"
)

//nolint:gochecknoglobals // fixed keyword list
var blockingCheckKeywords = []string{"markdown", "lint", "pre-commit", "table", "format"}

// Candidate is an open pull request that changes Markdown files.
type Candidate struct {
	Owner string
	Repo  string
	PR    PullRequest
}

// Ref returns the candidate's pull request reference.
func (c Candidate) Ref() PRRef {
	return PRRef{Owner: c.Owner, Repo: c.Repo, Number: c.PR.Number}
}

// ScanResult summarizes an organization scan.
type ScanResult struct {
	Org string

	// Repositories is the number of unarchived repositories scanned.
	Repositories int

	// PullRequests is the number of open pull requests considered.
	PullRequests int

	// Candidates are in repository listing order, then pull request order.
	Candidates []Candidate

	// RepoErrors holds repositories whose pull requests could not be listed.
	RepoErrors map[string]error
}

// Scanner finds pull requests worth fixing.
type Scanner struct {
	Client *Client

	// Concurrency bounds the repositories scanned at once.
	Concurrency int
}

// NewScanner returns a Scanner using client.
func NewScanner(client *Client) *Scanner {
	return &Scanner{Client: client, Concurrency: DefaultScanConcurrency}
}

type repoScan struct {
	prs        int
	candidates []Candidate
	err        error
}

// ScanOrganization lists the open pull requests of every unarchived
// repository in org and keeps those changing Markdown files. Drafts are
// skipped unless includeDrafts is set. A repository whose pull requests
// cannot be listed is recorded in RepoErrors and does not fail the scan.
func (s *Scanner) ScanOrganization(ctx context.Context, org string, includeDrafts bool) (*ScanResult, error) {
	logger := logging.FromContext(ctx).With(logging.FieldOrg, org)

	repos, err := s.Client.OrgRepos(ctx, org)
	if err != nil {
		return nil, err
	}

	var active []Repository
	for _, repo := range repos {
		if repo.Name == "" || repo.Archived {
			continue
		}
		active = append(active, repo)
	}
	logger.Debug("scanning repositories", logging.FieldRepositories, len(active))

	scans := make([]repoScan, len(active))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.Concurrency, 1))
	for i, repo := range active {
		g.Go(func() error {
			scans[i] = s.scanRepo(gctx, org, repo, includeDrafts)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", org, err)
	}

	result := &ScanResult{Org: org, Repositories: len(active), RepoErrors: map[string]error{}}
	for i, scan := range scans {
		if scan.err != nil {
			result.RepoErrors[active[i].Name] = scan.err
			continue
		}
		result.PullRequests += scan.prs
		result.Candidates = append(result.Candidates, scan.candidates...)
	}
	return result, nil
}

func (s *Scanner) scanRepo(ctx context.Context, org string, repo Repository, includeDrafts bool) repoScan {
	owner := repo.Owner.Login
	if owner == "" {
		owner = org
	}
	logger := logging.FromContext(ctx).With(logging.FieldRepo, owner+"/"+repo.Name)

	prs, err := s.Client.PullRequests(ctx, owner, repo.Name)
	if err != nil {
		logger.Warn("could not list pull requests", logging.FieldError, err)
		return repoScan{err: err}
	}

	scan := repoScan{prs: len(prs)}
	for _, pr := range prs {
		if pr.Draft && !includeDrafts {
			continue
		}
		if s.touchesMarkdown(ctx, owner, repo.Name, pr) {
			scan.candidates = append(scan.candidates, Candidate{Owner: owner, Repo: repo.Name, PR: pr})
		}
	}
	logger.Debug("repository scanned", logging.FieldPullRequests, scan.prs, logging.FieldCandidates, len(scan.candidates))
	return scan
}

// touchesMarkdown reports whether pr changes a Markdown file. When the file
// list cannot be fetched the pull request is kept.
func (s *Scanner) touchesMarkdown(ctx context.Context, owner, repo string, pr PullRequest) bool {
	if pr.Number <= 0 {
		return false
	}
	files, err := s.Client.PRFiles(ctx, owner, repo, pr.Number)
	if err != nil {
		logging.FromContext(ctx).Debug("could not list files, keeping pull request",
			logging.FieldRepo, owner+"/"+repo, logging.FieldPR, pr.Number, logging.FieldError, err)
		return true
	}
	return len(MarkdownFiles(files)) > 0
}

// IsBlocked reports whether pr's head commit has a completed, failing check
// whose name suggests Markdown linting or formatting. Errors count as not
// blocked.
func (s *Scanner) IsBlocked(ctx context.Context, owner, repo string, pr PullRequest) bool {
	if pr.Head.SHA == "" {
		return false
	}
	runs, err := s.Client.CheckRuns(ctx, owner, repo, pr.Head.SHA)
	if err != nil {
		logging.FromContext(ctx).Debug("could not list check runs",
			logging.FieldRepo, owner+"/"+repo, logging.FieldPR, pr.Number, logging.FieldError, err)
		return false
	}
	for _, run := range runs {
		if isBlockingCheck(run) {
			return true
		}
	}
	return false
}

func isBlockingCheck(run CheckRun) bool {
	if run.Status != checkCompleted {
		return false
	}
	if run.Conclusion != conclusionFailure && run.Conclusion != conclusionActionReq {
		return false
	}
	name := strings.ToLower(run.Name)
	for _, keyword := range blockingCheckKeywords {
		if strings.Contains(name, keyword) {
			return true
		}
	}
	return false
}
