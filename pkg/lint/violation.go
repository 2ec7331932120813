// Package lint validates Markdown pipe tables and runs the per-file
// check-and-fix pipeline shared by local files and pull requests.
package lint

import "fmt"

// Rule codes reported by mdtablefix, using markdownlint's numbering.
const (
	// RuleLineLength is markdownlint's line-length rule.
	RuleLineLength = "MD013"

	// RuleTableFormat is markdownlint's table-column-style rule.
	RuleTableFormat = "MD060"
)

// ViolationType identifies a table formatting defect.
type ViolationType int

const (
	MisalignedPipe ViolationType = iota
	MissingSpaceLeft
	MissingSpaceRight
	ExtraSpaceLeft
	ExtraSpaceRight
	InconsistentAlignment
	MalformedSeparator
	LineTooLong
)

//nolint:gochecknoglobals // Read-only lookup table.
var violationNames = [...]string{
	MisalignedPipe:        "MISALIGNED_PIPE",
	MissingSpaceLeft:      "MISSING_SPACE_LEFT",
	MissingSpaceRight:     "MISSING_SPACE_RIGHT",
	ExtraSpaceLeft:        "EXTRA_SPACE_LEFT",
	ExtraSpaceRight:       "EXTRA_SPACE_RIGHT",
	InconsistentAlignment: "INCONSISTENT_ALIGNMENT",
	MalformedSeparator:    "MALFORMED_SEPARATOR",
	LineTooLong:           "LINE_TOO_LONG",
}

// String returns the upper-case name used in reports.
func (v ViolationType) String() string {
	if v < 0 || int(v) >= len(violationNames) {
		return fmt.Sprintf("ViolationType(%d)", int(v))
	}
	return violationNames[v]
}

// Rule returns the rule code the violation type belongs to.
func (v ViolationType) Rule() string {
	if v == LineTooLong {
		return RuleLineLength
	}
	return RuleTableFormat
}

// MarshalText implements encoding.TextMarshaler.
func (v ViolationType) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// Violation is a single table defect.
type Violation struct {
	Type ViolationType

	// Line is the 1-based line of the offending row.
	Line int

	// Column is the 1-based display column the defect points at.
	Column int

	Message  string
	FilePath string

	// TableStartLine identifies the table the violation came from.
	TableStartLine int
}

// Rule returns the rule code of the violation.
func (v Violation) Rule() string {
	return v.Type.Rule()
}

// String formats the violation as path:line:col: RULE TYPE message.
func (v Violation) String() string {
	return fmt.Sprintf("%s:%d:%d: %s %s %s", v.FilePath, v.Line, v.Column, v.Rule(), v.Type, v.Message)
}
