package logging

// Structured log keys.
const (
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldFiles      = "files"
	FieldWorkingDir = "working_dir"
	FieldConfig     = "config"

	// Per-file processing.
	FieldTable      = "table"
	FieldLine       = "line"
	FieldRule       = "rule"
	FieldViolations = "violations"
	FieldFixes      = "fixes"
	FieldReason     = "reason"

	// Run options.
	FieldFix           = "fix"
	FieldDryRun        = "dry_run"
	FieldJobs          = "jobs"
	FieldMaxLineLength = "max_line_length"

	// Run statistics.
	FieldFilesScanned    = "files_scanned"
	FieldFilesWithIssues = "files_with_issues"
	FieldFilesFixed      = "files_fixed"
	FieldFilesErrored    = "files_errored"

	// GitHub.
	FieldOrg     = "org"
	FieldRepo    = "repo"
	FieldPR      = "pr"
	FieldBranch  = "branch"
	FieldStatus  = "status"
	FieldAttempt = "attempt"
	FieldWait    = "wait"

	FieldRepositories = "repositories"
	FieldPullRequests = "pull_requests"
	FieldCandidates   = "candidates"

	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
