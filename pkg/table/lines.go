package table

// LineInfo locates one line inside file content.
type LineInfo struct {
	// StartOffset is the byte offset of the first character.
	StartOffset int

	// NewlineStart is the offset of the line terminator ("\n" or "\r\n"),
	// or the content length for a final unterminated line.
	NewlineStart int

	// EndOffset is the offset just past the terminator.
	EndOffset int
}

// BuildLines indexes the lines of content. Both LF and CRLF endings are
// recognised. Content ending in a newline does not produce an extra empty line.
func BuildLines(content []byte) []LineInfo {
	if len(content) == 0 {
		return nil
	}

	var lines []LineInfo
	start := 0
	for idx, ch := range content {
		if ch != '\n' {
			continue
		}
		nl := idx
		if idx > start && content[idx-1] == '\r' {
			nl = idx - 1
		}
		lines = append(lines, LineInfo{StartOffset: start, NewlineStart: nl, EndOffset: idx + 1})
		start = idx + 1
	}
	if start < len(content) {
		lines = append(lines, LineInfo{StartOffset: start, NewlineStart: len(content), EndOffset: len(content)})
	}
	return lines
}

// SplitLines returns the text of every line without terminators.
func SplitLines(content []byte) []string {
	infos := BuildLines(content)
	out := make([]string, len(infos))
	for i, li := range infos {
		out[i] = string(content[li.StartOffset:li.NewlineStart])
	}
	return out
}

// Terminator returns the line ending used by the first terminated line,
// defaulting to "\n".
func Terminator(content []byte, lines []LineInfo) string {
	for _, li := range lines {
		if li.EndOffset > li.NewlineStart {
			return string(content[li.NewlineStart:li.EndOffset])
		}
	}
	return "\n"
}
