package lint_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/yaklabco/mdtablefix/pkg/lint"
)

// benchDocument builds a document of n compact three-column tables.
func benchDocument(n int) []byte {
	var sb strings.Builder
	for i := range n {
		fmt.Fprintf(&sb, "## Section %d\n\n", i)
		sb.WriteString("|Name|Value|Notes|\n|---|:-:|--:|\n")
		for j := range 20 {
			fmt.Fprintf(&sb, "|item-%d|%d|some longer note text %d|\n", j, j*j, j)
		}
		sb.WriteString("\n")
	}
	return []byte(sb.String())
}

func BenchmarkCheckSmall(b *testing.B) {
	content := benchDocument(1)
	b.ResetTimer()
	for range b.N {
		lint.Check("bench.md", content, lint.CheckOptions{})
	}
}

func BenchmarkCheckLarge(b *testing.B) {
	content := benchDocument(200)
	b.ResetTimer()
	for range b.N {
		lint.Check("bench.md", content, lint.CheckOptions{})
	}
}

func BenchmarkProcessContentFix(b *testing.B) {
	content := benchDocument(50)
	pipeline := lint.NewPipeline(nil)
	opts := lint.DefaultPipelineOptions()
	opts.Fix = true
	opts.DryRun = true
	b.ResetTimer()
	for range b.N {
		if _, err := pipeline.ProcessContent(b.Context(), "bench.md", content, opts); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCheckNoTables(b *testing.B) {
	content := []byte(strings.Repeat("Plain paragraph text with a | stray pipe.\n\n", 500))
	b.ResetTimer()
	for range b.N {
		lint.Check("bench.md", content, lint.CheckOptions{})
	}
}
