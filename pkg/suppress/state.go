// Package suppress tracks markdownlint inline suppression comments.
//
// A file is scanned top to bottom for
//
//	<!-- markdownlint-disable MD013 MD060 -->
//	<!-- markdownlint-enable MD013 -->
//
// and the result answers "is rule R disabled at line L". Disables accumulate:
// each rule stays disabled until it is individually enabled again.
package suppress

import (
	"maps"
	"slices"
)

// State is the set of rule codes that are currently disabled.
type State struct {
	rules map[string]struct{}
}

// NewState returns a state with nothing disabled.
func NewState() *State {
	return &State{rules: make(map[string]struct{})}
}

// Disable adds rules to the disabled set.
func (s *State) Disable(rules ...string) {
	for _, r := range rules {
		s.rules[r] = struct{}{}
	}
}

// Enable removes rules from the disabled set.
func (s *State) Enable(rules ...string) {
	for _, r := range rules {
		delete(s.rules, r)
	}
}

// IsDisabled reports whether rule is disabled.
func (s *State) IsDisabled(rule string) bool {
	_, ok := s.rules[rule]
	return ok
}

// Rules returns the disabled rule codes in sorted order.
func (s *State) Rules() []string {
	return slices.Sorted(maps.Keys(s.rules))
}

// Len returns the number of disabled rules.
func (s *State) Len() int {
	return len(s.rules)
}

// Clone returns an independent copy of s.
func (s *State) Clone() *State {
	return &State{rules: maps.Clone(s.rules)}
}
