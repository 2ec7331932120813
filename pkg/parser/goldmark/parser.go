// Package goldmark re-parses Markdown with goldmark's GFM table extension.
//
// The table engine never builds a Markdown AST. This package is used after a
// fix to confirm that an independent GFM parser still sees the same tables.
package goldmark

import (
	"context"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Parser finds GFM tables.
type Parser struct {
	md goldmark.Markdown
}

// New creates a Parser with the GFM extensions enabled.
func New() *Parser {
	return &Parser{md: goldmark.New(goldmark.WithExtensions(extension.GFM))}
}

// Shapes returns the column count of every table in content, in document order.
func (p *Parser) Shapes(ctx context.Context, content []byte) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse cancelled: %w", err)
	}

	doc := p.md.Parser().Parse(text.NewReader(content), parser.WithContext(parser.NewContext()))

	var shapes []int
	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if tbl, ok := node.(*east.Table); ok {
			shapes = append(shapes, len(tbl.Alignments))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk document: %w", err)
	}
	return shapes, nil
}

// Shapes parses content with a fresh Parser.
func Shapes(content []byte) []int {
	shapes, _ := New().Shapes(context.Background(), content)
	return shapes
}

// Preserved reports whether every table in before appears in after, in
// order and with the same column count. Tables may be added, since a fix can
// turn a separator that GFM rejects into a valid one.
func Preserved(before, after []int) bool {
	j := 0
	for _, cols := range before {
		for j < len(after) && after[j] != cols {
			j++
		}
		if j == len(after) {
			return false
		}
		j++
	}
	return true
}
