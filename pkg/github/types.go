package github

import (
	"path"
	"strings"
	"time"
)

// Repository is the subset of a repository object the scanner uses.
type Repository struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Archived bool   `json:"archived"`
	Owner    User   `json:"owner"`
}

// User is a GitHub account.
type User struct {
	Login string `json:"login"`
}

// PullRequest is the subset of a pull request object the tool uses.
type PullRequest struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	State   string `json:"state"`
	Draft   bool   `json:"draft"`
	HTMLURL string `json:"html_url"`
	Head    Branch `json:"head"`
	Base    Branch `json:"base"`
}

// Branch is the head or base of a pull request.
type Branch struct {
	Ref  string      `json:"ref"`
	SHA  string      `json:"sha"`
	Repo *Repository `json:"repo"`
}

// File status values reported for pull request files.
const (
	FileAdded    = "added"
	FileModified = "modified"
	FileRemoved  = "removed"
	FileRenamed  = "renamed"
)

// PRFile is a file changed by a pull request.
type PRFile struct {
	Filename string `json:"filename"`
	Status   string `json:"status"`
	SHA      string `json:"sha"`
}

// IsMarkdown reports whether the file is a Markdown file still present on
// the head branch.
func (f PRFile) IsMarkdown() bool {
	if f.Status == FileRemoved {
		return false
	}
	switch strings.ToLower(path.Ext(f.Filename)) {
	case ".md", ".markdown":
		return true
	default:
		return false
	}
}

// MarkdownFiles filters files down to those IsMarkdown accepts.
func MarkdownFiles(files []PRFile) []PRFile {
	var out []PRFile
	for _, f := range files {
		if f.IsMarkdown() {
			out = append(out, f)
		}
	}
	return out
}

// CheckRun is one check on a commit.
type CheckRun struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	Conclusion string `json:"conclusion"`
}

// FileContent is a decoded file from the contents API.
type FileContent struct {
	Path    string
	SHA     string
	Content []byte
}

// FileUpdate is a commit of one file's new content.
type FileUpdate struct {
	Message string
	Content []byte
	Branch  string
	SHA     string
}

// RateLimit is the API quota.
type RateLimit struct {
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	Used      int   `json:"used"`
	Reset     int64 `json:"reset"`
}

// ResetAt returns when the quota refills.
func (r RateLimit) ResetAt() time.Time {
	return time.Unix(r.Reset, 0)
}
