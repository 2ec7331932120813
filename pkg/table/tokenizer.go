package table

import "strings"

// pipeEntity is the HTML character reference for "|". It is never a column
// delimiter.
const pipeEntity = "&#124;"

// segment is a slice of a raw line between two delimiter pipes.
type segment struct {
	text  string
	start int
	end   int
}

// SplitCells splits line at every delimiter pipe and returns the text between them.
//
// A pipe is a delimiter unless it is preceded by an odd number of backslashes.
// The result has k+1 elements for k delimiters and keeps interior whitespace
// exactly. An empty line yields no segments. Code spans are not treated
// specially: the pipe in "`a | b`" splits.
func SplitCells(line string) []string {
	segs := splitSegments(line)
	if segs == nil {
		return nil
	}
	out := make([]string, len(segs))
	for i, seg := range segs {
		out[i] = seg.text
	}
	return out
}

// PipePositions returns the byte offsets of the delimiter pipes in line,
// using the same escape rules as SplitCells.
func PipePositions(line string) []int {
	var positions []int
	for i := 0; i < len(line); i++ {
		if strings.HasPrefix(line[i:], pipeEntity) {
			i += len(pipeEntity) - 1
			continue
		}
		if line[i] == '|' && !isEscaped(line, i) {
			positions = append(positions, i)
		}
	}
	return positions
}

// isEscaped reports whether the byte at pos is preceded by an odd run of
// backslashes.
func isEscaped(line string, pos int) bool {
	run := 0
	for i := pos - 1; i >= 0 && line[i] == '\\'; i-- {
		run++
	}
	return run%2 == 1
}

func splitSegments(line string) []segment {
	if line == "" {
		return nil
	}

	pipes := PipePositions(line)
	segs := make([]segment, 0, len(pipes)+1)
	start := 0
	for _, p := range pipes {
		segs = append(segs, segment{text: line[start:p], start: start, end: p})
		start = p + 1
	}
	segs = append(segs, segment{text: line[start:], start: start, end: len(line)})
	return segs
}

// cellSegments drops the whitespace-only boundary segments outside the
// leading and trailing pipes, leaving one segment per cell.
func cellSegments(line string) []segment {
	segs := splitSegments(line)
	if len(segs) < 2 {
		return nil
	}
	if strings.TrimSpace(segs[0].text) == "" {
		segs = segs[1:]
	}
	if len(segs) > 0 && strings.TrimSpace(segs[len(segs)-1].text) == "" {
		segs = segs[:len(segs)-1]
	}
	return segs
}

// IsSeparatorCell reports whether cell matches the separator grammar :?-+:?
// once surrounding whitespace is removed.
func IsSeparatorCell(cell string) bool {
	s := strings.TrimSpace(cell)
	s = strings.TrimPrefix(s, ":")
	s = strings.TrimSuffix(s, ":")
	if s == "" {
		return false
	}
	return strings.Trim(s, "-") == ""
}

// separatorLike reports whether every cell is built from "-" and ":" only
// and holds at least one "-". Such a row closes a table header even when a
// cell breaks the separator grammar, so the defect can be reported.
func separatorLike(cells []Cell) bool {
	if len(cells) == 0 {
		return false
	}
	for _, c := range cells {
		s := c.Text()
		if !strings.Contains(s, "-") || strings.Trim(s, "-:") != "" {
			return false
		}
	}
	return true
}

// Alignment returns the colon markers of a separator cell.
func Alignment(cell string) (left, right bool) {
	s := strings.TrimSpace(cell)
	return strings.HasPrefix(s, ":"), len(s) > 1 && strings.HasSuffix(s, ":")
}
