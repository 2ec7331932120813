package fix_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdtablefix/pkg/fix"
)

func TestApplyEdits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		edits   []fix.TextEdit
		want    string
	}{
		{name: "no edits", content: "hello", want: "hello"},
		{name: "replace", content: "hello world", edits: []fix.TextEdit{fix.Replace(6, 11, "there")}, want: "hello there"},
		{name: "insert", content: "ab", edits: []fix.TextEdit{fix.Insert(1, "-")}, want: "a-b"},
		{name: "delete", content: "abc", edits: []fix.TextEdit{fix.Replace(1, 2, "")}, want: "ac"},
		{
			name:    "adjacent",
			content: "|A|B|\n",
			edits: []fix.TextEdit{
				fix.Insert(0, "<!-- x -->\n"),
				fix.Replace(0, 5, "| A | B |"),
				fix.Insert(5, "\n<!-- y -->"),
			},
			want: "<!-- x -->\n| A | B |\n<!-- y -->\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			prepared, err := fix.PrepareEdits(tt.edits, len(tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(fix.ApplyEdits([]byte(tt.content), prepared)))
		})
	}
}

func TestApplyEditsLeavesInputAlone(t *testing.T) {
	t.Parallel()

	content := []byte("abc")
	out := fix.ApplyEdits(content, []fix.TextEdit{fix.Replace(0, 1, "xyz")})
	assert.Equal(t, "xyzbc", string(out))
	assert.Equal(t, "abc", string(content))
}

func TestTextEdit(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 2, fix.Replace(0, 1, "abc").Delta())
	assert.Equal(t, -3, fix.Replace(2, 5, "").Delta())
	assert.Equal(t, `[1:1] "x"`, fix.Insert(1, "x").String())
}

func TestValidateEdits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		edit    fix.TextEdit
		wantErr string
	}{
		{name: "valid", edit: fix.Replace(0, 10, "")},
		{name: "negative start", edit: fix.Replace(-1, 2, ""), wantErr: "start offset is negative"},
		{name: "reversed", edit: fix.Replace(5, 2, ""), wantErr: "end offset is before start offset"},
		{name: "past end", edit: fix.Replace(2, 11, ""), wantErr: "end offset 11 exceeds content length 10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := fix.ValidateEdits([]fix.TextEdit{tt.edit}, 10)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			var verr *fix.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.edit, verr.Edit)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSortEdits(t *testing.T) {
	t.Parallel()

	edits := []fix.TextEdit{
		fix.Replace(5, 8, "c"),
		fix.Insert(0, "first"),
		fix.Replace(0, 3, "b"),
		fix.Insert(0, "second"),
	}
	fix.SortEdits(edits)

	assert.Equal(t, []fix.TextEdit{
		fix.Insert(0, "first"),
		fix.Insert(0, "second"),
		fix.Replace(0, 3, "b"),
		fix.Replace(5, 8, "c"),
	}, edits)
}

func TestPrepareEdits(t *testing.T) {
	t.Parallel()

	t.Run("sorts a copy", func(t *testing.T) {
		t.Parallel()

		edits := []fix.TextEdit{fix.Replace(4, 5, "b"), fix.Replace(0, 1, "a")}
		prepared, err := fix.PrepareEdits(edits, 5)
		require.NoError(t, err)
		assert.Equal(t, 0, prepared[0].StartOffset)
		assert.Equal(t, 4, edits[0].StartOffset)
	})

	t.Run("overlap", func(t *testing.T) {
		t.Parallel()

		_, err := fix.PrepareEdits([]fix.TextEdit{fix.Replace(0, 4, "a"), fix.Replace(3, 5, "b")}, 5)
		var cerr *fix.ConflictError
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, 3, cerr.Second.StartOffset)
		assert.Equal(t, "overlapping edits: [0:4] and [3:5]", err.Error())
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()

		_, err := fix.PrepareEdits([]fix.TextEdit{fix.Replace(0, 9, "")}, 5)
		var verr *fix.ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		prepared, err := fix.PrepareEdits(nil, 5)
		require.NoError(t, err)
		assert.Empty(t, prepared)
	})
}
