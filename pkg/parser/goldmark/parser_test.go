package goldmark_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdtablefix/pkg/parser/goldmark"
)

func TestShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    []int
	}{
		{name: "empty", content: "", want: nil},
		{name: "prose", content: "# Title\n\nText | with pipe\n", want: nil},
		{name: "one table", content: "| A | B |\n|---|---|\n| 1 | 2 |\n", want: []int{2}},
		{name: "compact", content: "|A|B|C|\n|-|-|-|\n|1|2|3|\n", want: []int{3}},
		{
			name:    "two tables",
			content: "| A |\n|---|\n| 1 |\n\ntext\n\n| X | Y |\n|:--|--:|\n",
			want:    []int{1, 2},
		},
		{
			name:    "bracketed by comments",
			content: "<!-- markdownlint-disable MD013 -->\n| A | B |\n| --- | --- |\n<!-- markdownlint-enable MD013 -->\n",
			want:    []int{2},
		},
		{name: "mismatched delimiter", content: "| A | B |\n|---|\n", want: nil},
		{name: "fenced", content: "```\n| A | B |\n|---|---|\n```\n", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, goldmark.Shapes([]byte(tt.content)))
		})
	}
}

func TestParserCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := goldmark.New().Shapes(ctx, []byte("| A |\n|---|\n"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestPreserved(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		before, after []int
		want          bool
	}{
		{name: "none", want: true},
		{name: "same", before: []int{2, 3}, after: []int{2, 3}, want: true},
		{name: "added", before: []int{2}, after: []int{4, 2}, want: true},
		{name: "lost", before: []int{2, 3}, after: []int{2}, want: false},
		{name: "column change", before: []int{2}, after: []int{3}, want: false},
		{name: "reordered", before: []int{2, 3}, after: []int{3, 2}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, goldmark.Preserved(tt.before, tt.after))
		})
	}
}
