// Package fix rewrites misformatted tables and applies the resulting text
// edits to file content.
package fix

import "fmt"

// TextEdit replaces the bytes [StartOffset, EndOffset) with NewText.
// An empty range is an insertion.
type TextEdit struct {
	StartOffset int
	EndOffset   int
	NewText     string
}

// Replace returns an edit replacing [start, end) with text.
func Replace(start, end int, text string) TextEdit {
	return TextEdit{StartOffset: start, EndOffset: end, NewText: text}
}

// Insert returns an edit inserting text at offset.
func Insert(offset int, text string) TextEdit {
	return TextEdit{StartOffset: offset, EndOffset: offset, NewText: text}
}

// Delta is the change in content length caused by the edit.
func (e TextEdit) Delta() int {
	return len(e.NewText) - (e.EndOffset - e.StartOffset)
}

func (e TextEdit) String() string {
	return fmt.Sprintf("[%d:%d] %q", e.StartOffset, e.EndOffset, e.NewText)
}
