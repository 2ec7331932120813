package configloader

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseJSONC decodes JSON that may carry "//" line comments.
// Plain JSON is tried first since most .jsonc files are valid JSON.
func parseJSONC(content []byte, target any) error {
	if err := json.Unmarshal(content, target); err == nil {
		return nil
	}

	stripped := stripLineComments(string(content))
	if err := json.Unmarshal([]byte(stripped), target); err != nil {
		return fmt.Errorf("unmarshal stripped JSON: %w", err)
	}
	return nil
}

// stripLineComments removes "//" comments from every line of content.
// Each line is scanned independently: string state does not carry across a
// newline, and a backslash inside a string escapes the next byte.
func stripLineComments(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = stripLineComment(line)
	}
	return strings.Join(lines, "\n")
}

func stripLineComment(line string) string {
	inString := false
	for i := 0; i < len(line); i++ {
		switch ch := line[i]; {
		case inString && ch == '\\':
			i++
		case ch == '"':
			inString = !inString
		case !inString && ch == '/' && i+1 < len(line) && line[i+1] == '/':
			return line[:i]
		}
	}
	return line
}
