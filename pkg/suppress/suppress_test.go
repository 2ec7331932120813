package suppress_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdtablefix/pkg/suppress"
)

func TestRulesFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		kind suppress.Kind
		want []string
	}{
		{name: "single rule", line: "<!-- markdownlint-disable MD013 -->", kind: suppress.KindDisable, want: []string{"MD013"}},
		{name: "multiple rules", line: "<!-- markdownlint-disable MD013 MD060 -->", kind: suppress.KindDisable, want: []string{"MD013", "MD060"}},
		{name: "enable", line: "<!-- markdownlint-enable MD060 -->", kind: suppress.KindEnable, want: []string{"MD060"}},
		{name: "extra whitespace", line: "<!--   markdownlint-disable    MD013   -->", kind: suppress.KindDisable, want: []string{"MD013"}},
		{name: "no whitespace", line: "<!--markdownlint-disable MD013-->", kind: suppress.KindDisable, want: []string{"MD013"}},
		{name: "trailing description", line: "<!-- markdownlint-disable MD013 - table too wide -->", kind: suppress.KindDisable, want: []string{"MD013"}},
		{name: "text around comment", line: "Before <!-- markdownlint-disable MD013 --> after", kind: suppress.KindDisable, want: []string{"MD013"}},
		{name: "first comment only", line: "<!-- markdownlint-disable MD013 --><!-- markdownlint-disable MD060 -->", kind: suppress.KindDisable, want: []string{"MD013"}},
		{name: "wrong kind", line: "<!-- markdownlint-disable MD013 -->", kind: suppress.KindEnable, want: nil},
		{name: "lowercase rule", line: "<!-- markdownlint-disable md013 -->", kind: suppress.KindDisable, want: nil},
		{name: "bare MD", line: "<!-- markdownlint-disable MD -->", kind: suppress.KindDisable, want: nil},
		{name: "two digits", line: "<!-- markdownlint-disable MD01 -->", kind: suppress.KindDisable, want: []string{"MD01"}},
		{name: "three digits", line: "<!-- markdownlint-disable MD001 -->", kind: suppress.KindDisable, want: []string{"MD001"}},
		{name: "unrelated comment", line: "<!-- This is my MD013013 test -->", kind: suppress.KindDisable, want: nil},
		{name: "not a comment", line: "markdownlint-disable MD013", kind: suppress.KindDisable, want: nil},
		{name: "file scoped variant", line: "<!-- markdownlint-disable-file MD013 -->", kind: suppress.KindDisable, want: nil},
		{name: "trailing newline", line: "<!-- markdownlint-disable MD013 -->\n", kind: suppress.KindDisable, want: []string{"MD013"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, suppress.RulesFor(tt.line, tt.kind))
		})
	}
}

func TestParseLineWithoutRules(t *testing.T) {
	t.Parallel()

	d, ok := suppress.ParseLine("<!-- markdownlint-disable -->")
	require.True(t, ok)
	assert.Equal(t, suppress.KindDisable, d.Kind)
	assert.Empty(t, d.Rules)
}

func TestState(t *testing.T) {
	t.Parallel()

	s := suppress.NewState()
	s.Disable("MD013", "MD060")
	assert.True(t, s.IsDisabled("MD013"))
	assert.Equal(t, []string{"MD013", "MD060"}, s.Rules())

	clone := s.Clone()
	s.Enable("MD013")
	assert.False(t, s.IsDisabled("MD013"))
	assert.True(t, s.IsDisabled("MD060"))
	assert.True(t, clone.IsDisabled("MD013"), "clone must not share storage")
	assert.Equal(t, 2, clone.Len())
	assert.Equal(t, 1, s.Len())
}

const suppressedDoc = `line 1
line 2
<!-- markdownlint-disable MD013 -->
line 4
line 5
<!-- markdownlint-enable MD013 -->
line 7
<!-- markdownlint-disable MD013 MD060 -->
line 9
<!-- markdownlint-enable MD013 -->
line 11
`

func TestDisablerFromContent(t *testing.T) {
	t.Parallel()

	d := suppress.FromContent("doc.md", []byte(suppressedDoc))

	assert.False(t, d.DisabledAt(2, "MD013"))
	assert.True(t, d.DisabledAt(3, "MD013"), "directive applies to its own line")
	assert.True(t, d.DisabledAt(5, "MD013"))
	assert.False(t, d.DisabledAt(6, "MD013"))
	assert.False(t, d.DisabledAt(7, "MD013"))
	assert.True(t, d.DisabledAt(9, "MD013"))
	assert.True(t, d.DisabledAt(9, "MD060"))
	assert.False(t, d.DisabledAt(11, "MD013"))
	assert.True(t, d.DisabledAt(11, "MD060"), "enabling MD013 leaves MD060 disabled")
	assert.True(t, d.DisabledAt(1000, "MD060"))
	assert.False(t, d.DisabledAt(0, "MD060"))

	assert.Equal(t, []string{"MD013", "MD060"}, d.DisabledRulesAt(9))
	assert.Empty(t, d.DisabledRulesAt(1))
	assert.Equal(t, "doc.md", d.Path())
}

func TestDisablerReadsFileLazily(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	d := suppress.New(path)

	// The file does not exist yet; nothing has been read.
	require.NoError(t, os.WriteFile(path, []byte(suppressedDoc), 0o644))
	assert.True(t, d.DisabledAt(4, "MD013"))

	// Parsed once: later changes to the file are not observed.
	require.NoError(t, os.WriteFile(path, []byte("plain\n"), 0o644))
	assert.True(t, d.DisabledAt(4, "MD013"))
}

func TestDisablerMissingFile(t *testing.T) {
	t.Parallel()

	d := suppress.New(filepath.Join(t.TempDir(), "nope.md"))
	for line := range 20 {
		assert.False(t, d.DisabledAt(line, "MD013"))
	}
	assert.Empty(t, d.DisabledRulesAt(5))
}

type item struct {
	line int
	rule string
}

func TestFilter(t *testing.T) {
	t.Parallel()

	d := suppress.FromContent("doc.md", []byte(suppressedDoc))
	items := []item{
		{1, "MD013"}, {4, "MD013"}, {4, "MD060"}, {9, "MD060"}, {11, "MD013"}, {2, "MD060"},
	}
	key := func(i item) (int, string) { return i.line, i.rule }

	got := suppress.Filter(items, d, key)
	assert.Equal(t, []item{{1, "MD013"}, {4, "MD060"}, {11, "MD013"}, {2, "MD060"}}, got)

	for _, it := range got {
		assert.False(t, d.DisabledAt(it.line, it.rule))
	}

	assert.Equal(t, items, suppress.Filter(items, nil, key))
}

func TestNilDisabler(t *testing.T) {
	t.Parallel()

	var d *suppress.Disabler
	assert.False(t, d.DisabledAt(3, "MD060"))
	assert.Nil(t, d.DisabledRulesAt(3))
}

func TestDisablerLargeFileBinarySearch(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	for i := 1; i <= 1000; i++ {
		switch {
		case i%100 == 0:
			b.WriteString("<!-- markdownlint-disable MD060 -->\n")
		case i%100 == 50:
			b.WriteString("<!-- markdownlint-enable MD060 -->\n")
		default:
			b.WriteString("text\n")
		}
	}

	d := suppress.FromContent("big.md", []byte(b.String()))
	assert.False(t, d.DisabledAt(99, "MD060"))
	assert.True(t, d.DisabledAt(100, "MD060"))
	assert.True(t, d.DisabledAt(149, "MD060"))
	assert.False(t, d.DisabledAt(150, "MD060"))
	assert.True(t, d.DisabledAt(1000, "MD060"))
}
