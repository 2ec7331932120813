package suppress

import (
	"os"
	"sort"
	"sync"

	"github.com/yaklabco/mdtablefix/pkg/table"
)

// checkpoint is the disabled set in force from line onward.
type checkpoint struct {
	line  int
	state *State
}

// Disabler answers per-line suppression queries for one file.
//
// The file is read and scanned on the first query only. A file that cannot be
// read behaves as if it contained no directives.
type Disabler struct {
	path        string
	checkpoints func() []checkpoint
}

// New returns a Disabler that reads path lazily.
func New(path string) *Disabler {
	d := &Disabler{path: path}
	d.checkpoints = sync.OnceValue(func() []checkpoint {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		return buildCheckpoints(table.SplitLines(content))
	})
	return d
}

// FromContent returns a Disabler over in-memory content. path is used for
// identification only.
func FromContent(path string, content []byte) *Disabler {
	d := &Disabler{path: path}
	d.checkpoints = sync.OnceValue(func() []checkpoint {
		return buildCheckpoints(table.SplitLines(content))
	})
	return d
}

// Path returns the file the disabler describes.
func (d *Disabler) Path() string {
	return d.path
}

// DisabledAt reports whether rule is disabled at the 1-based line.
// A directive applies to its own line. A nil Disabler disables nothing.
func (d *Disabler) DisabledAt(line int, rule string) bool {
	if d == nil {
		return false
	}
	state := d.stateAt(line)
	return state != nil && state.IsDisabled(rule)
}

// DisabledRulesAt returns the sorted set of rules disabled at line.
// A nil Disabler disables nothing.
func (d *Disabler) DisabledRulesAt(line int) []string {
	if d == nil {
		return nil
	}
	state := d.stateAt(line)
	if state == nil {
		return nil
	}
	return state.Rules()
}

func (d *Disabler) stateAt(line int) *State {
	cps := d.checkpoints()
	idx := sort.Search(len(cps), func(i int) bool { return cps[i].line > line }) - 1
	if idx < 0 {
		return nil
	}
	return cps[idx].state
}

func buildCheckpoints(lines []string) []checkpoint {
	var cps []checkpoint
	state := NewState()
	for i, line := range lines {
		d, ok := ParseLine(line)
		if !ok || len(d.Rules) == 0 {
			continue
		}
		switch d.Kind {
		case KindDisable:
			state.Disable(d.Rules...)
		case KindEnable:
			state.Enable(d.Rules...)
		}
		cps = append(cps, checkpoint{line: i + 1, state: state.Clone()})
	}
	return cps
}

// Filter returns the items whose rule is not disabled at their line, in their
// original order. key extracts the line and rule code of an item.
// A nil Disabler filters nothing.
func Filter[T any](items []T, d *Disabler, key func(T) (int, string)) []T {
	if d == nil {
		return items
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		line, rule := key(item)
		if d.DisabledAt(line, rule) {
			continue
		}
		out = append(out, item)
	}
	return out
}
