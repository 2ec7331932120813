package github

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ErrInvalidTarget is returned for a target that is neither an organization
// nor a pull request URL.
var ErrInvalidTarget = errors.New("invalid GitHub target")

// PRRef identifies a pull request.
type PRRef struct {
	Owner  string
	Repo   string
	Number int
}

func (r PRRef) String() string {
	return fmt.Sprintf("%s/%s#%d", r.Owner, r.Repo, r.Number)
}

// IsPRURL reports whether target looks like a pull request URL.
func IsPRURL(target string) bool {
	return strings.Contains(target, "github.com") && strings.Contains(target, "/pull/")
}

// ParsePRURL parses https://github.com/owner/repo/pull/N. The scheme may be
// omitted and anything after the number (/files, #discussion) is ignored.
func ParsePRURL(raw string) (PRRef, error) {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return PRRef{}, fmt.Errorf("%w: %q: %w", ErrInvalidTarget, raw, err)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 4 || parts[2] != "pull" || parts[0] == "" || parts[1] == "" {
		return PRRef{}, fmt.Errorf("%w: %q is not a pull request URL", ErrInvalidTarget, raw)
	}
	number, err := strconv.Atoi(parts[3])
	if err != nil || number <= 0 {
		return PRRef{}, fmt.Errorf("%w: %q has no pull request number", ErrInvalidTarget, raw)
	}
	return PRRef{Owner: parts[0], Repo: parts[1], Number: number}, nil
}

// ParseOrg accepts an organization name or URL and returns the name.
func ParseOrg(target string) (string, error) {
	org := strings.TrimSpace(target)
	if i := strings.Index(org, "github.com/"); i >= 0 {
		org = org[i+len("github.com/"):]
	}
	org = strings.Trim(org, "/")
	if org == "" || strings.Contains(org, "/") {
		return "", fmt.Errorf("%w: %q is not an organization", ErrInvalidTarget, target)
	}
	return org, nil
}
