// Package width measures how many terminal columns a piece of table text occupies.
//
// Cell content is stored undecoded, so every measurement first decodes HTML
// character references: "&#x1F600;" is one double-width glyph, not nine
// ASCII characters.
package width

import (
	"html"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// condition pins East Asian ambiguous characters to narrow so results do not
// depend on the user's locale.
//
//nolint:gochecknoglobals // immutable lookup configuration shared by all callers
var condition = &runewidth.Condition{
	EastAsianWidth:     false,
	StrictEmojiNeutral: true,
}

// Of returns the display width of text after entity decoding and trimming.
//
// Wide code points (CJK ideographs, most emoji) count as 2 and printable
// narrow code points count as 1. If the text contains any control character
// the per-rune measurement is abandoned and the character count is returned.
func Of(text string) int {
	decoded := strings.TrimSpace(Decode(text))
	if decoded == "" {
		return 0
	}

	total := 0
	for _, r := range decoded {
		if unicode.IsControl(r) {
			return utf8.RuneCountInString(decoded)
		}
		total += condition.RuneWidth(r)
	}
	return total
}

// Span returns the width of text including its surrounding whitespace.
// Each leading or trailing whitespace rune counts as one column.
// Pipe positions and line lengths are measured with Span so that they agree
// with the padding the fixer writes.
func Span(text string) int {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return utf8.RuneCountInString(text)
	}
	lead := len(text) - len(strings.TrimLeftFunc(text, unicode.IsSpace))
	trail := len(text) - len(strings.TrimRightFunc(text, unicode.IsSpace))
	return utf8.RuneCountInString(text[:lead]) + Of(trimmed) + utf8.RuneCountInString(text[len(text)-trail:])
}

// Decode replaces named and numeric HTML character references with the
// characters they stand for.
func Decode(text string) string {
	if !strings.Contains(text, "&") {
		return text
	}
	return html.UnescapeString(text)
}

// emojiRanges are the pictograph blocks used to flag tables whose alignment
// depends on double-width glyphs. The last range is deliberately broad and
// includes CJK.
//
//nolint:gochecknoglobals // read-only table
var emojiRanges = [][2]rune{
	{0x1F600, 0x1F64F}, // emoticons
	{0x1F300, 0x1F5FF}, // symbols and pictographs
	{0x1F680, 0x1F6FF}, // transport and map
	{0x1F1E0, 0x1F1FF}, // flags
	{0x2702, 0x27B0},   // dingbats
	{0x1F900, 0x1F9FF}, // supplemental symbols
	{0x24C2, 0x1F251},  // enclosed characters
}

// HasEmoji reports whether text contains a character from the emoji or
// enclosed-character blocks. Entities are decoded first.
func HasEmoji(text string) bool {
	for _, r := range Decode(text) {
		for _, rng := range emojiRanges {
			if r >= rng[0] && r <= rng[1] {
				return true
			}
		}
	}
	return false
}
