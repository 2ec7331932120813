package fix

import (
	"fmt"
	"strings"
)

// contextLines is the number of unchanged lines shown around each change.
const contextLines = 3

// Diff is a unified diff of one file.
type Diff struct {
	Path     string
	Original []byte
	Modified []byte
	Hunks    []DiffHunk

	Additions int
	Deletions int
}

// DiffHunk is one "@@" section. Start lines are 1-based.
type DiffHunk struct {
	OriginalStart int
	OriginalCount int
	ModifiedStart int
	ModifiedCount int
	Lines         []DiffLine
}

// DiffLine is a single line of a hunk, without its prefix character.
type DiffLine struct {
	Kind    DiffLineKind
	Content string
}

// DiffLineKind tells context, added and removed lines apart.
type DiffLineKind int

const (
	DiffLineContext DiffLineKind = iota
	DiffLineAdd
	DiffLineRemove
)

// Prefix returns the unified diff marker for the kind.
func (k DiffLineKind) Prefix() string {
	switch k {
	case DiffLineAdd:
		return "+"
	case DiffLineRemove:
		return "-"
	default:
		return " "
	}
}

// GenerateDiff compares original and modified line by line.
// It returns nil when the two have the same lines.
func GenerateDiff(path string, original, modified []byte) *Diff {
	before := diffLines(original)
	after := diffLines(modified)

	ops := lineOps(before, after)
	hunks := buildHunks(ops)
	if len(hunks) == 0 {
		return nil
	}

	d := &Diff{Path: path, Original: original, Modified: modified, Hunks: hunks}
	for _, op := range ops {
		switch op.kind {
		case DiffLineAdd:
			d.Additions++
		case DiffLineRemove:
			d.Deletions++
		case DiffLineContext:
		}
	}
	return d
}

// HasChanges reports whether the diff has at least one hunk.
func (d *Diff) HasChanges() bool {
	return d != nil && len(d.Hunks) > 0
}

// GitHeader returns the "diff --git" line.
func (d *Diff) GitHeader() string {
	if d == nil {
		return ""
	}
	p := strings.TrimPrefix(d.Path, "/")
	return fmt.Sprintf("diff --git a/%s b/%s", p, p)
}

// String renders the diff in unified format, without the git header.
func (d *Diff) String() string {
	if !d.HasChanges() {
		return ""
	}

	p := strings.TrimPrefix(d.Path, "/")

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- a/%s\n+++ b/%s\n", p, p)
	for _, h := range d.Hunks {
		fmt.Fprintf(&sb, "@@ -%d,%d +%d,%d @@\n", h.OriginalStart, h.OriginalCount, h.ModifiedStart, h.ModifiedCount)
		for _, line := range h.Lines {
			sb.WriteString(line.Kind.Prefix())
			sb.WriteString(line.Content)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// FullString renders the diff including the git header.
func (d *Diff) FullString() string {
	if !d.HasChanges() {
		return ""
	}
	return d.GitHeader() + "\n" + d.String()
}

// diffLines splits content on "\n". A trailing newline does not produce an
// empty last line; "\r" stays part of the line.
func diffLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	return strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
}

type lineOp struct {
	kind DiffLineKind
	text string

	// before and after are the 0-based line indexes the op has reached
	// in each file when it is emitted.
	before int
	after  int
}

// lineOps returns an edit script from a longest common subsequence table.
// Removals are emitted before additions within a change.
func lineOps(a, b []string) []lineOp {
	n, m := len(a), len(b)

	// lcs[i][j] is the LCS length of a[i:] and b[j:].
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}

	ops := make([]lineOp, 0, n+m)
	i, j := 0, 0
	for i < n || j < m {
		switch {
		case i < n && j < m && a[i] == b[j]:
			ops = append(ops, lineOp{kind: DiffLineContext, text: a[i], before: i, after: j})
			i++
			j++
		case j == m || (i < n && lcs[i+1][j] >= lcs[i][j+1]):
			ops = append(ops, lineOp{kind: DiffLineRemove, text: a[i], before: i, after: j})
			i++
		default:
			ops = append(ops, lineOp{kind: DiffLineAdd, text: b[j], before: i, after: j})
			j++
		}
	}
	return ops
}

// buildHunks groups changed ops with up to contextLines of surrounding
// context. Changes separated by at most twice that share a hunk.
func buildHunks(ops []lineOp) []DiffHunk {
	var hunks []DiffHunk

	for idx := 0; idx < len(ops); {
		if ops[idx].kind == DiffLineContext {
			idx++
			continue
		}

		start := max(idx-contextLines, 0)
		end := idx
		for end < len(ops) {
			if ops[end].kind != DiffLineContext {
				end++
				continue
			}
			run := end
			for run < len(ops) && ops[run].kind == DiffLineContext {
				run++
			}
			if run == len(ops) || run-end > 2*contextLines {
				break
			}
			end = run
		}
		stop := min(end+contextLines, len(ops))

		hunks = append(hunks, makeHunk(ops[start:stop]))
		idx = stop
	}
	return hunks
}

func makeHunk(ops []lineOp) DiffHunk {
	h := DiffHunk{
		OriginalStart: ops[0].before + 1,
		ModifiedStart: ops[0].after + 1,
		Lines:         make([]DiffLine, len(ops)),
	}
	for i, op := range ops {
		h.Lines[i] = DiffLine{Kind: op.kind, Content: op.text}
		if op.kind != DiffLineAdd {
			h.OriginalCount++
		}
		if op.kind != DiffLineRemove {
			h.ModifiedCount++
		}
	}
	// Unified diff convention: an empty side starts at the line before.
	if h.OriginalCount == 0 {
		h.OriginalStart--
	}
	if h.ModifiedCount == 0 {
		h.ModifiedStart--
	}
	return h
}
