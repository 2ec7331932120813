package configloader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// MaxSearchDepth is the number of directories examined when resolving rule
// settings: the starting directory plus four ancestors.
const MaxSearchDepth = 5

// markdownlintConfigFiles are the markdownlint config names, in order of
// preference within a single directory. JSON forms win over YAML forms.
//
//nolint:gochecknoglobals // Read-only lookup table.
var markdownlintConfigFiles = []string{
	".markdownlint.json",
	".markdownlint.jsonc",
	".markdownlint.yaml",
	".markdownlint.yml",
	".markdownlintrc",
}

// Source describes where a rule decision came from.
type Source int

const (
	// SourceNone means no config file was found within the search depth.
	SourceNone Source = iota

	// SourceFile means a config file was found and parsed.
	SourceFile

	// SourceMalformed means the nearest config file could not be read or parsed.
	// The rule falls back to enabled.
	SourceMalformed
)

// String implements fmt.Stringer.
func (s Source) String() string {
	switch s {
	case SourceNone:
		return "none"
	case SourceFile:
		return "file"
	case SourceMalformed:
		return "malformed"
	default:
		return fmt.Sprintf("Source(%d)", int(s))
	}
}

// Resolution is the outcome of resolving one rule.
type Resolution struct {
	Enabled bool
	Source  Source

	// Path is the config file that decided the result, if any.
	Path string
}

// defaultResolution is returned when no usable config applies.
func defaultResolution(source Source, path string) Resolution {
	return Resolution{Enabled: true, Source: source, Path: path}
}

// dirEntry is the memoized markdownlint config of one directory.
type dirEntry struct {
	path      string
	malformed bool
	disabled  map[string]bool
}

// Resolver answers whether markdownlint rules are enabled for files in a
// directory, using the nearest .markdownlint.* file.
//
// The nearest file decides on its own; files further up are not merged in.
// A rule is disabled only by an explicit boolean false. Lookups are cached
// per directory, and a Resolver is safe for concurrent use.
type Resolver struct {
	mu    sync.Mutex
	cache map[string]*dirEntry
}

// NewResolver returns an empty Resolver.
func NewResolver() *Resolver {
	return &Resolver{cache: make(map[string]*dirEntry)}
}

// RuleEnabled reports whether rule is enabled for files in dir.
func (r *Resolver) RuleEnabled(rule, dir string) bool {
	return r.Resolve(rule, dir).Enabled
}

// Resolve returns the decision for rule in dir together with its source.
func (r *Resolver) Resolve(rule, dir string) Resolution {
	for _, candidate := range searchDirs(dir) {
		entry := r.lookup(candidate)
		if entry == nil {
			continue
		}
		if entry.malformed {
			return defaultResolution(SourceMalformed, entry.path)
		}
		return Resolution{Enabled: !entry.disabled[rule], Source: SourceFile, Path: entry.path}
	}
	return defaultResolution(SourceNone, "")
}

// searchDirs lists dir and its ancestors, nearest first, bounded by
// MaxSearchDepth and the filesystem root.
func searchDirs(dir string) []string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = filepath.Clean(dir)
	}

	dirs := make([]string, 0, MaxSearchDepth)
	for range MaxSearchDepth {
		dirs = append(dirs, abs)
		parent := filepath.Dir(abs)
		if parent == abs {
			break
		}
		abs = parent
	}
	return dirs
}

// lookup returns the config of dir, or nil when dir has none.
func (r *Resolver) lookup(dir string) *dirEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.cache[dir]; ok {
		return entry
	}

	var entry *dirEntry
	for _, name := range markdownlintConfigFiles {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			entry = loadMarkdownlintConfig(path)
			break
		}
	}
	r.cache[dir] = entry
	return entry
}

func loadMarkdownlintConfig(path string) *dirEntry {
	entry := &dirEntry{path: path}

	content, err := os.ReadFile(path)
	if err != nil {
		entry.malformed = true
		return entry
	}

	var disabled map[string]bool
	if IsYAMLConfig(path) {
		disabled, err = disabledRulesYAML(content)
	} else {
		disabled, err = disabledRulesJSON(content)
	}
	if err != nil {
		entry.malformed = true
		return entry
	}
	entry.disabled = disabled
	return entry
}

// disabledRulesJSON returns the keys whose value is the JSON literal false.
func disabledRulesJSON(content []byte) (map[string]bool, error) {
	var raw map[string]any
	if err := parseJSONC(content, &raw); err != nil {
		return nil, err
	}

	disabled := make(map[string]bool)
	for key, value := range raw {
		if b, ok := value.(bool); ok && !b {
			disabled[key] = true
		}
	}
	return disabled, nil
}

// disabledRulesYAML returns the keys whose value is a YAML false. Plain
// (unquoted) "no" and "off" count as false, as in YAML 1.1.
func disabledRulesYAML(content []byte) (map[string]bool, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	disabled := make(map[string]bool)
	if len(doc.Content) == 0 {
		return disabled, nil
	}

	mapping := doc.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return disabled, nil
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key, value := mapping.Content[i], mapping.Content[i+1]
		if isYAMLFalse(value) {
			disabled[key.Value] = true
		}
	}
	return disabled, nil
}

func isYAMLFalse(node *yaml.Node) bool {
	if node.Kind != yaml.ScalarNode {
		return false
	}
	if node.ShortTag() == "!!bool" {
		var b bool
		return node.Decode(&b) == nil && !b
	}
	if node.Style != 0 {
		return false
	}
	switch strings.ToLower(node.Value) {
	case "no", "off":
		return true
	default:
		return false
	}
}

// IsJSONConfig reports whether path holds JSON or JSONC.
// .markdownlintrc is JSON.
func IsJSONConfig(path string) bool {
	switch filepath.Ext(path) {
	case ".json", ".jsonc":
		return true
	default:
		return filepath.Base(path) == ".markdownlintrc"
	}
}

// IsYAMLConfig reports whether path holds YAML.
func IsYAMLConfig(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".yaml" || ext == ".yml"
}
