// Package github talks to the GitHub REST API to find open pull requests
// that touch Markdown files and to commit table fixes back to their branches.
package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/yaklabco/mdtablefix/internal/logging"
)

const (
	// DefaultBaseURL is the public GitHub API.
	DefaultBaseURL = "https://api.github.com"

	// APIVersion is sent in the X-GitHub-Api-Version header.
	APIVersion = "2022-11-28"

	// DefaultTimeout bounds each HTTP request.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxTries is the number of attempts per request.
	DefaultMaxTries = 3

	perPage = 100

	// maxErrorBody caps how much of an error response is kept.
	maxErrorBody = 512
)

// ErrAPI is wrapped by every error caused by a GitHub API response.
var ErrAPI = errors.New("github API error")

// APIError is a non-2xx response.
type APIError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Endpoint, e.StatusCode, e.Body)
}

// Unwrap lets errors.Is match ErrAPI.
func (e *APIError) Unwrap() error {
	return ErrAPI
}

// Client is a minimal GitHub REST client. It is safe for concurrent use.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	maxTries   uint
	newBackOff func() backoff.BackOff
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL points the client at another API root, such as a GitHub
// Enterprise server or a test server.
func WithBaseURL(base string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(base, "/")
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBackOff replaces the retry schedule.
func WithBackOff(newBackOff func() backoff.BackOff) ClientOption {
	return func(c *Client) {
		c.newBackOff = newBackOff
	}
}

// WithMaxTries sets the number of attempts per request.
func WithMaxTries(n uint) ClientOption {
	return func(c *Client) {
		c.maxTries = max(n, 1)
	}
}

// NewClient returns a client authenticating with token.
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		token:      token,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		maxTries:   DefaultMaxTries,
		newBackOff: defaultBackOff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// defaultBackOff waits 2s, then doubles up to 10s.
func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 2 * time.Second
	b.MaxInterval = 10 * time.Second
	b.Multiplier = 2
	return b
}

// do sends a request and decodes a JSON response into out, retrying
// transport failures and 5xx responses. A nil out discards the body.
func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
	}

	target := c.baseURL + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	logger := logging.FromContext(ctx)
	attempt := 0

	operation := func() (struct{}, error) {
		attempt++
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, target, reader)
		if err != nil {
			return struct{}{}, backoff.Permanent(fmt.Errorf("build request: %w", err))
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/vnd.github+json")
		req.Header.Set("X-GitHub-Api-Version", APIVersion)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return struct{}{}, backoff.Permanent(ctx.Err())
			}
			return struct{}{}, fmt.Errorf("%s %s: %w", method, endpoint, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			apiErr := &APIError{
				Method:     method,
				Endpoint:   endpoint,
				StatusCode: resp.StatusCode,
				Body:       strings.TrimSpace(string(text)),
			}
			if resp.StatusCode < 500 {
				return struct{}{}, backoff.Permanent(apiErr)
			}
			return struct{}{}, apiErr
		}

		if out == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return struct{}{}, nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return struct{}{}, backoff.Permanent(fmt.Errorf("decode %s %s: %w", method, endpoint, err))
		}
		return struct{}{}, nil
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(c.maxTries),
		backoff.WithNotify(func(err error, wait time.Duration) {
			logger.Debug("retrying GitHub request",
				logging.FieldAttempt, attempt,
				logging.FieldWait, wait,
				logging.FieldError, err)
		}),
	)
	return err
}

// paginate fetches every page of a list endpoint, calling add with each
// page until a short or empty page is returned.
func paginate[T any](ctx context.Context, c *Client, endpoint string, query url.Values, add func([]T)) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("per_page", strconv.Itoa(perPage))

	for page := 1; ; page++ {
		query.Set("page", strconv.Itoa(page))
		var items []T
		if err := c.do(ctx, http.MethodGet, endpoint, query, nil, &items); err != nil {
			return err
		}
		add(items)
		if len(items) < perPage {
			return nil
		}
	}
}

// OrgRepos lists every repository of org.
func (c *Client) OrgRepos(ctx context.Context, org string) ([]Repository, error) {
	var repos []Repository
	err := paginate(ctx, c, "/orgs/"+url.PathEscape(org)+"/repos", url.Values{"type": {"all"}},
		func(page []Repository) { repos = append(repos, page...) })
	if err != nil {
		return nil, fmt.Errorf("list repositories of %s: %w", org, err)
	}
	return repos, nil
}

// PullRequests lists the open pull requests of owner/repo.
func (c *Client) PullRequests(ctx context.Context, owner, repo string) ([]PullRequest, error) {
	var prs []PullRequest
	err := paginate(ctx, c, repoPath(owner, repo)+"/pulls", url.Values{"state": {"open"}},
		func(page []PullRequest) { prs = append(prs, page...) })
	if err != nil {
		return nil, fmt.Errorf("list pull requests of %s/%s: %w", owner, repo, err)
	}
	return prs, nil
}

// PullRequest fetches one pull request.
func (c *Client) PullRequest(ctx context.Context, owner, repo string, number int) (*PullRequest, error) {
	var pr PullRequest
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s/pulls/%d", repoPath(owner, repo), number), nil, nil, &pr); err != nil {
		return nil, fmt.Errorf("get pull request %s/%s#%d: %w", owner, repo, number, err)
	}
	return &pr, nil
}

// PRFiles lists the files changed by a pull request.
func (c *Client) PRFiles(ctx context.Context, owner, repo string, number int) ([]PRFile, error) {
	var files []PRFile
	err := paginate(ctx, c, fmt.Sprintf("%s/pulls/%d/files", repoPath(owner, repo), number), nil,
		func(page []PRFile) { files = append(files, page...) })
	if err != nil {
		return nil, fmt.Errorf("list files of %s/%s#%d: %w", owner, repo, number, err)
	}
	return files, nil
}

// CheckRuns lists the check runs for a commit.
func (c *Client) CheckRuns(ctx context.Context, owner, repo, ref string) ([]CheckRun, error) {
	var resp struct {
		CheckRuns []CheckRun `json:"check_runs"`
	}
	endpoint := repoPath(owner, repo) + "/commits/" + url.PathEscape(ref) + "/check-runs"
	if err := c.do(ctx, http.MethodGet, endpoint, nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("list check runs of %s/%s@%s: %w", owner, repo, ref, err)
	}
	return resp.CheckRuns, nil
}

// FileContent fetches a file at ref and decodes it.
func (c *Client) FileContent(ctx context.Context, owner, repo, path, ref string) (*FileContent, error) {
	var resp struct {
		Path     string `json:"path"`
		SHA      string `json:"sha"`
		Encoding string `json:"encoding"`
		Content  string `json:"content"`
	}
	if err := c.do(ctx, http.MethodGet, contentsPath(owner, repo, path), url.Values{"ref": {ref}}, nil, &resp); err != nil {
		return nil, fmt.Errorf("get %s from %s/%s@%s: %w", path, owner, repo, ref, err)
	}

	fc := &FileContent{Path: resp.Path, SHA: resp.SHA}
	if fc.Path == "" {
		fc.Path = path
	}
	if resp.Content == "" {
		return fc, nil
	}
	if resp.Encoding != "" && resp.Encoding != "base64" {
		return nil, fmt.Errorf("get %s: unsupported encoding %q", path, resp.Encoding)
	}

	// The API wraps base64 content at 60 columns.
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(resp.Content, "\n", ""))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	fc.Content = decoded
	return fc, nil
}

// UpdateFile commits content to path on branch. sha is the blob being
// replaced; GitHub rejects the update if the branch has moved on.
func (c *Client) UpdateFile(ctx context.Context, owner, repo, path string, update FileUpdate) error {
	body := map[string]string{
		"message": update.Message,
		"content": base64.StdEncoding.EncodeToString(update.Content),
		"branch":  update.Branch,
		"sha":     update.SHA,
	}
	if err := c.do(ctx, http.MethodPut, contentsPath(owner, repo, path), nil, body, nil); err != nil {
		return fmt.Errorf("update %s in %s/%s: %w", path, owner, repo, err)
	}
	return nil
}

// CreateComment posts a comment on a pull request.
func (c *Client) CreateComment(ctx context.Context, owner, repo string, number int, body string) error {
	endpoint := fmt.Sprintf("%s/issues/%d/comments", repoPath(owner, repo), number)
	if err := c.do(ctx, http.MethodPost, endpoint, nil, map[string]string{"body": body}, nil); err != nil {
		return fmt.Errorf("comment on %s/%s#%d: %w", owner, repo, number, err)
	}
	return nil
}

// RateLimit returns the core API quota.
func (c *Client) RateLimit(ctx context.Context) (*RateLimit, error) {
	var resp struct {
		Resources struct {
			Core RateLimit `json:"core"`
		} `json:"resources"`
	}
	if err := c.do(ctx, http.MethodGet, "/rate_limit", nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("get rate limit: %w", err)
	}
	return &resp.Resources.Core, nil
}

func repoPath(owner, repo string) string {
	return "/repos/" + url.PathEscape(owner) + "/" + url.PathEscape(repo)
}

func contentsPath(owner, repo, path string) string {
	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return repoPath(owner, repo) + "/contents/" + strings.Join(segments, "/")
}
