package configloader_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdtablefix/internal/configloader"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestResolverValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		content string
		rule    string
		want    bool
		source  configloader.Source
	}{
		{name: "json false", file: ".markdownlint.json", content: `{"MD013": false}`, rule: "MD013", want: false, source: configloader.SourceFile},
		{name: "json true", file: ".markdownlint.json", content: `{"MD013": true}`, rule: "MD013", want: true, source: configloader.SourceFile},
		{name: "rule not mentioned", file: ".markdownlint.json", content: `{"MD001": false}`, rule: "MD013", want: true, source: configloader.SourceFile},
		{name: "json object", file: ".markdownlint.json", content: `{"MD013": {"line_length": 120}}`, rule: "MD013", want: true, source: configloader.SourceFile},
		{name: "json null", file: ".markdownlint.json", content: `{"MD013": null}`, rule: "MD013", want: true, source: configloader.SourceFile},
		{name: "json zero", file: ".markdownlint.json", content: `{"MD013": 0}`, rule: "MD013", want: true, source: configloader.SourceFile},
		{name: "json string false", file: ".markdownlint.json", content: `{"MD013": "false"}`, rule: "MD013", want: true, source: configloader.SourceFile},
		{name: "jsonc comments", file: ".markdownlint.jsonc", content: "{\n  // tables are wide\n  \"MD060\": false // off\n}", rule: "MD060", want: false, source: configloader.SourceFile},
		{name: "rc is json", file: ".markdownlintrc", content: `{"MD060": false}`, rule: "MD060", want: false, source: configloader.SourceFile},
		{name: "yaml false", file: ".markdownlint.yaml", content: "MD013: false\n", rule: "MD013", want: false, source: configloader.SourceFile},
		{name: "yaml False", file: ".markdownlint.yml", content: "MD013: False\n", rule: "MD013", want: false, source: configloader.SourceFile},
		{name: "yaml no", file: ".markdownlint.yaml", content: "MD013: no\n", rule: "MD013", want: false, source: configloader.SourceFile},
		{name: "yaml quoted false", file: ".markdownlint.yaml", content: "MD013: \"false\"\n", rule: "MD013", want: true, source: configloader.SourceFile},
		{name: "yaml mapping", file: ".markdownlint.yaml", content: "MD013:\n  line_length: 100\n", rule: "MD013", want: true, source: configloader.SourceFile},
		{name: "malformed json", file: ".markdownlint.json", content: `{"MD013": false`, rule: "MD013", want: true, source: configloader.SourceMalformed},
		{name: "empty json", file: ".markdownlint.json", content: "", rule: "MD013", want: true, source: configloader.SourceMalformed},
		{name: "bom json", file: ".markdownlint.json", content: "\uFEFF{\"MD013\": false}", rule: "MD013", want: true, source: configloader.SourceMalformed},
		{name: "malformed yaml", file: ".markdownlint.yaml", content: "MD013: [false\n", rule: "MD013", want: true, source: configloader.SourceMalformed},
		{name: "json null document", file: ".markdownlint.json", content: "null", rule: "MD013", want: true, source: configloader.SourceFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, tt.file), tt.content)

			res := configloader.NewResolver().Resolve(tt.rule, dir)
			assert.Equal(t, tt.want, res.Enabled)
			assert.Equal(t, tt.source, res.Source)
			assert.Equal(t, filepath.Join(dir, tt.file), res.Path)
		})
	}
}

func TestResolverNoConfig(t *testing.T) {
	t.Parallel()

	res := configloader.NewResolver().Resolve("MD013", t.TempDir())
	assert.True(t, res.Enabled)
	assert.Equal(t, configloader.SourceNone, res.Source)
	assert.Empty(t, res.Path)
}

func TestResolverJSONBeatsYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".markdownlint.json"), `{"MD013": true}`)
	writeFile(t, filepath.Join(dir, ".markdownlint.yaml"), "MD013: false\n")

	assert.True(t, configloader.NewResolver().RuleEnabled("MD013", dir))
}

func TestResolverNearestDirectoryWins(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	child := filepath.Join(root, "docs")
	writeFile(t, filepath.Join(root, ".markdownlint.json"), `{"MD013": false}`)
	writeFile(t, filepath.Join(child, ".markdownlint.json"), `{"MD013": true}`)

	r := configloader.NewResolver()
	assert.True(t, r.RuleEnabled("MD013", child))
	assert.False(t, r.RuleEnabled("MD013", root))
}

func TestResolverNearestFileIsNotMerged(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	child := filepath.Join(root, "docs")
	writeFile(t, filepath.Join(root, ".markdownlint.json"), `{"MD060": false}`)
	writeFile(t, filepath.Join(child, ".markdownlint.yaml"), "MD013: false\n")

	assert.True(t, configloader.NewResolver().RuleEnabled("MD060", child))
}

func TestResolverSearchDepth(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".markdownlint.json"), `{"MD013": false}`)

	oneUp := filepath.Join(root, "a")
	threeUp := filepath.Join(root, "a", "b", "c")
	fourUp := filepath.Join(root, "a", "b", "c", "d")
	fiveUp := filepath.Join(root, "a", "b", "c", "d", "e")
	sevenUp := filepath.Join(root, "a", "b", "c", "d", "e", "f", "g")
	require.NoError(t, os.MkdirAll(sevenUp, 0o755))

	r := configloader.NewResolver()
	assert.False(t, r.RuleEnabled("MD013", oneUp))
	assert.False(t, r.RuleEnabled("MD013", threeUp))
	assert.False(t, r.RuleEnabled("MD013", fourUp), "fifth directory is still searched")
	assert.True(t, r.RuleEnabled("MD013", fiveUp))
	assert.True(t, r.RuleEnabled("MD013", sevenUp))
	assert.Equal(t, configloader.SourceNone, r.Resolve("MD013", sevenUp).Source)
}

func TestResolverMemoizesDirectories(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, ".markdownlint.json")
	writeFile(t, path, `{"MD060": false}`)

	r := configloader.NewResolver()
	assert.False(t, r.RuleEnabled("MD060", dir))

	require.NoError(t, os.Remove(path))
	assert.False(t, r.RuleEnabled("MD060", dir), "cached per directory")
	assert.True(t, configloader.NewResolver().RuleEnabled("MD060", dir))
}

func TestResolverConcurrentUse(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".markdownlint.yaml"), "MD060: false\n")

	r := configloader.NewResolver()
	done := make(chan bool)
	for range 8 {
		go func() { done <- r.RuleEnabled("MD060", dir) }()
	}
	for range 8 {
		assert.False(t, <-done)
	}
}

func TestSourceString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "none", configloader.SourceNone.String())
	assert.Equal(t, "file", configloader.SourceFile.String())
	assert.Equal(t, "malformed", configloader.SourceMalformed.String())
}

func TestConfigKind(t *testing.T) {
	t.Parallel()

	assert.True(t, configloader.IsJSONConfig(".markdownlint.json"))
	assert.True(t, configloader.IsJSONConfig("dir/.markdownlint.jsonc"))
	assert.True(t, configloader.IsJSONConfig("/x/.markdownlintrc"))
	assert.False(t, configloader.IsJSONConfig(".markdownlint.yaml"))
	assert.True(t, configloader.IsYAMLConfig(".markdownlint.yml"))
}
