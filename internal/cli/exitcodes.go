package cli

import (
	"errors"

	"github.com/yaklabco/mdtablefix/pkg/runner"
)

// Exit codes for mdtablefix.
const (
	// ExitSuccess means no issues remain.
	ExitSuccess = 0

	// ExitIssues means issues remain and fail-on-error is set.
	ExitIssues = 1

	// ExitError means the command failed.
	ExitError = 1
)

// ExitCodeFromResult returns ExitIssues when failOnError is set and some file
// still has issues: it was only checked, its fix was not written, or it could
// not be processed. A run that fixed every file it flagged succeeds.
func ExitCodeFromResult(result *runner.Result, failOnError bool) int {
	if !failOnError || !result.Unresolved() {
		return ExitSuccess
	}
	return ExitIssues
}

// ExitCode maps an error returned by the root command to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrIssuesFound):
		return ExitIssues
	default:
		return ExitError
	}
}
