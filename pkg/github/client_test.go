package github_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdtablefix/pkg/github"
)

const testToken = "ghp_test"

func newTestClient(t *testing.T, mux *http.ServeMux) *github.Client {
	t.Helper()

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return github.NewClient(testToken,
		github.WithBaseURL(srv.URL+"/"),
		github.WithBackOff(func() backoff.BackOff { return &backoff.ZeroBackOff{} }),
	)
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	assert.NoError(t, json.NewEncoder(w).Encode(v))
}

func encodeContent(content string) string {
	// Wrapped like the contents API does.
	enc := base64.StdEncoding.EncodeToString([]byte(content))
	var out string
	for len(enc) > 60 {
		out += enc[:60] + "\n"
		enc = enc[60:]
	}
	return out + enc
}

func TestClientSendsHeaders(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /rate_limit", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
		assert.Equal(t, github.APIVersion, r.Header.Get("X-GitHub-Api-Version"))
		writeJSON(t, w, map[string]any{
			"resources": map[string]any{
				"core": map[string]any{"limit": 5000, "remaining": 4999, "used": 1, "reset": 1700000000},
			},
		})
	})

	rl, err := newTestClient(t, mux).RateLimit(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 5000, rl.Limit)
	assert.Equal(t, 4999, rl.Remaining)
	assert.Equal(t, int64(1700000000), rl.ResetAt().Unix())
}

func TestClientPaginates(t *testing.T) {
	t.Parallel()

	var pages atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /orgs/acme/repos", func(w http.ResponseWriter, r *http.Request) {
		pages.Add(1)
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		assert.Equal(t, "all", r.URL.Query().Get("type"))

		n := 0
		switch r.URL.Query().Get("page") {
		case "1":
			n = 100
		case "2":
			n = 3
		}
		repos := make([]map[string]any, n)
		for i := range repos {
			repos[i] = map[string]any{"name": fmt.Sprintf("repo-%s-%d", r.URL.Query().Get("page"), i)}
		}
		writeJSON(t, w, repos)
	})

	repos, err := newTestClient(t, mux).OrgRepos(t.Context(), "acme")
	require.NoError(t, err)
	assert.Len(t, repos, 103)
	assert.Equal(t, "repo-1-0", repos[0].Name)
	assert.Equal(t, "repo-2-2", repos[102].Name)
	assert.Equal(t, int32(2), pages.Load())
}

func TestClientRetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/docs/pulls/5", func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "unavailable", http.StatusBadGateway)
			return
		}
		writeJSON(t, w, map[string]any{"number": 5, "head": map[string]any{"ref": "topic", "sha": "abc"}})
	})

	pr, err := newTestClient(t, mux).PullRequest(t.Context(), "acme", "docs", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, pr.Number)
	assert.Equal(t, "topic", pr.Head.Ref)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientGivesUpAfterMaxTries(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/docs/pulls/5", func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := newTestClient(t, mux).PullRequest(t.Context(), "acme", "docs", 5)
	require.Error(t, err)
	require.ErrorIs(t, err, github.ErrAPI)
	assert.Equal(t, int32(github.DefaultMaxTries), calls.Load())
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/docs/pulls/5", func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	})

	_, err := newTestClient(t, mux).PullRequest(t.Context(), "acme", "docs", 5)
	require.ErrorIs(t, err, github.ErrAPI)

	var apiErr *github.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "/repos/acme/docs/pulls/5", apiErr.Endpoint)
	assert.Contains(t, apiErr.Body, "Not Found")
	assert.Equal(t, int32(1), calls.Load())
}

func TestClientFileContent(t *testing.T) {
	t.Parallel()

	content := "# Title\n\n| A | B |\n| - | - |\n| 1 | 2 |\n" + "padding to force the base64 text past one wrapped line\n"

	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/docs/contents/{path...}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "guide/my notes.md", r.PathValue("path"))
		assert.Equal(t, "topic", r.URL.Query().Get("ref"))
		writeJSON(t, w, map[string]any{
			"path":     "guide/my notes.md",
			"sha":      "blob1",
			"encoding": "base64",
			"content":  encodeContent(content),
		})
	})

	fc, err := newTestClient(t, mux).FileContent(t.Context(), "acme", "docs", "guide/my notes.md", "topic")
	require.NoError(t, err)
	assert.Equal(t, "blob1", fc.SHA)
	assert.Equal(t, "guide/my notes.md", fc.Path)
	assert.Equal(t, content, string(fc.Content))
}

func TestClientUpdateFileAndComment(t *testing.T) {
	t.Parallel()

	var update map[string]string
	var comment map[string]string

	mux := http.NewServeMux()
	mux.HandleFunc("PUT /repos/acme/docs/contents/{path...}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "README.md", r.PathValue("path"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&update))
		writeJSON(t, w, map[string]any{"commit": map[string]any{"sha": "c1"}})
	})
	mux.HandleFunc("POST /repos/acme/docs/issues/9/comments", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&comment))
		w.WriteHeader(http.StatusCreated)
		writeJSON(t, w, map[string]any{"id": 1})
	})

	client := newTestClient(t, mux)
	require.NoError(t, client.UpdateFile(t.Context(), "acme", "docs", "README.md", github.FileUpdate{
		Message: "Fix tables",
		Content: []byte("| A |\n"),
		Branch:  "topic",
		SHA:     "blob1",
	}))
	require.NoError(t, client.CreateComment(t.Context(), "acme", "docs", 9, "done"))

	assert.Equal(t, map[string]string{
		"message": "Fix tables",
		"content": base64.StdEncoding.EncodeToString([]byte("| A |\n")),
		"branch":  "topic",
		"sha":     "blob1",
	}, update)
	assert.Equal(t, map[string]string{"body": "done"}, comment)
}

func TestClientCheckRuns(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/docs/commits/abc/check-runs", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{
			"total_count": 1,
			"check_runs":  []map[string]any{{"name": "lint", "status": "completed", "conclusion": "failure"}},
		})
	})

	runs, err := newTestClient(t, mux).CheckRuns(t.Context(), "acme", "docs", "abc")
	require.NoError(t, err)
	assert.Equal(t, []github.CheckRun{{Name: "lint", Status: "completed", Conclusion: "failure"}}, runs)
}

func TestClientCancelled(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /rate_limit", func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		writeJSON(t, w, map[string]any{})
	})
	client := newTestClient(t, mux)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := client.RateLimit(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls.Load())
}
