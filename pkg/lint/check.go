package lint

import (
	"path/filepath"

	"github.com/yaklabco/mdtablefix/pkg/suppress"
	"github.com/yaklabco/mdtablefix/pkg/table"
)

// RuleResolver decides whether a rule is enabled for files in a directory.
// configloader.Resolver implements it.
type RuleResolver interface {
	RuleEnabled(rule, dir string) bool
}

// CheckOptions configures Check.
type CheckOptions struct {
	// MaxLineLength is the MD013 limit. Zero means DefaultMaxLineLength.
	MaxLineLength int

	// Resolver supplies rule activation for the file's directory.
	// Nil enables every rule.
	Resolver RuleResolver
}

// CheckResult is the outcome of checking one file's content.
type CheckResult struct {
	Tables []*table.Table

	// Violations are the validator findings left after inline suppression,
	// in table order.
	Violations []Violation

	// Disabler answers suppression queries for the same content.
	Disabler *suppress.Disabler

	// Enabled reports the configured activation of a rule for this file.
	Enabled func(rule string) bool
}

// Check parses content, validates every table and drops violations that an
// inline directive suppresses. Local files and pull request files both go
// through Check, so the two report identical results for identical content.
func Check(path string, content []byte, opts CheckOptions) *CheckResult {
	enabled := RuleEnabledFunc(opts.Resolver, path)
	validator := &Validator{MaxLineLength: opts.MaxLineLength, RuleEnabled: enabled}

	result := &CheckResult{
		Tables:   table.ParseContent(path, content),
		Disabler: suppress.FromContent(path, content),
		Enabled:  enabled,
	}

	var raw []Violation
	for _, tbl := range result.Tables {
		raw = append(raw, validator.Validate(tbl)...)
	}
	result.Violations = suppress.Filter(raw, result.Disabler, func(v Violation) (int, string) {
		return v.Line, v.Rule()
	})
	return result
}

// RuleEnabledFunc binds resolver to the directory of path.
func RuleEnabledFunc(resolver RuleResolver, path string) func(rule string) bool {
	if resolver == nil {
		return func(string) bool { return true }
	}
	dir := filepath.Dir(path)
	return func(rule string) bool {
		return resolver.RuleEnabled(rule, dir)
	}
}
