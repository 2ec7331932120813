package reporter

import (
	"io"
	"os"
	"path/filepath"
	"strings"
)

// bufWriterSize is the buffer size for reporter output (64 KiB).
const bufWriterSize = 64 * 1024

// Options configures a reporter.
type Options struct {
	// Writer receives the report. Nil means os.Stdout.
	Writer io.Writer

	Format Format

	// Color is "auto", "always" or "never".
	Color string

	// Quiet reduces text output to a one-line notice when issues exist.
	Quiet bool

	// Fixing tells the text reporter whether fixes were requested, for the
	// closing hint.
	Fixing bool

	// MaxPerFile caps the violations listed per file in text output.
	// Zero lists all of them.
	MaxPerFile int

	// WorkingDir makes displayed paths relative. Empty keeps them as given.
	WorkingDir string
}

// DefaultOptions returns text output to stdout with automatic colour.
func DefaultOptions() Options {
	return Options{
		Writer: os.Stdout,
		Format: FormatText,
		Color:  "auto",
	}
}

// displayPath returns path relative to WorkingDir when it lies below it.
func (o Options) displayPath(path string) string {
	if o.WorkingDir == "" || !filepath.IsAbs(path) {
		return path
	}
	rel, err := filepath.Rel(o.WorkingDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return filepath.ToSlash(rel)
}
