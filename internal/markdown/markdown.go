// Package markdown renders article Markdown to an HTML fragment.
package markdown

import (
	"bytes"
	"context"
	"fmt"

	fences "github.com/stefanfritsch/goldmark-fences"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts Markdown to HTML with the authoring extensions enabled:
// GFM (tables, task lists, strikethrough, autolinks), footnotes, `:::`
// containers, heading attributes and raw HTML passthrough.
type Renderer struct {
	md goldmark.Markdown
}

// New returns a Renderer.
func New() *Renderer {
	md := goldmark.New(
		goldmark.WithParserOptions(
			parser.WithAttribute(),
			parser.WithAutoHeadingID(),
		),
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			&fences.Extender{},
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)
	return &Renderer{md: md}
}

// Render runs the full Markdown step: backtick escaping, admonition
// rewriting, goldmark conversion and unescaping.
func (r *Renderer) Render(ctx context.Context, src string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	src = RewriteAdmonitions(Prenormalize(src))

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return Postnormalize(buf.String()), nil
}
