package suppress

import "regexp"

// Kind is the action of a suppression directive.
type Kind string

// Directive kinds.
const (
	KindDisable Kind = "disable"
	KindEnable  Kind = "enable"
)

//nolint:gochecknoglobals // compiled once
var (
	directivePattern = regexp.MustCompile(`<!--\s*markdownlint-(disable|enable)(?:\s+(.*?))?\s*-->`)
	rulePattern      = regexp.MustCompile(`\bMD\d{2,}\b`)
)

// Directive is one parsed suppression comment.
type Directive struct {
	Kind  Kind
	Rules []string
}

// ParseLine returns the first suppression directive on line.
// Later directives on the same line are ignored. Rule tokens are "MD"
// followed by at least two digits, matched case-sensitively; any other text
// inside the comment is ignored.
func ParseLine(line string) (Directive, bool) {
	m := directivePattern.FindStringSubmatch(line)
	if m == nil {
		return Directive{}, false
	}
	return Directive{
		Kind:  Kind(m[1]),
		Rules: rulePattern.FindAllString(m[2], -1),
	}, true
}

// RulesFor returns the rules named by the first directive on line if that
// directive has the given kind, and nil otherwise.
func RulesFor(line string, kind Kind) []string {
	d, ok := ParseLine(line)
	if !ok || d.Kind != kind {
		return nil
	}
	return d.Rules
}
