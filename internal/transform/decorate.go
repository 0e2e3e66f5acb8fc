package transform

import (
	"context"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/docblocks/internal/block"
	"github.com/dgallion1/docblocks/internal/doctree"
)

// Breadcrumbs places a breadcrumbs block at the top of the content built
// from the data record's `breadcrumbs: [{title, url}]` list.
func Breadcrumbs() Transformer {
	return New("breadcrumbs", StageDecorate, Dependencies{}, func(ctx context.Context, tc *Context) error {
		if tc.Doc.Content == nil || hasBlock(tc.Doc.Content, block.Breadcrumbs) {
			return nil
		}
		crumbs, _ := tc.Data["breadcrumbs"].([]any)
		b := block.New(block.Breadcrumbs)
		for _, c := range crumbs {
			m, ok := c.(map[string]any)
			if !ok {
				continue
			}
			title, _ := m["title"].(string)
			url, _ := m["url"].(string)
			if title == "" {
				continue
			}
			if url == "" {
				b.AddRow(block.TextCell(title))
				continue
			}
			b.AddRow(block.NodeCell(link(url, title)))
		}
		if len(b.Rows) == 0 {
			return nil
		}
		prepend(tc.Doc.Content, b.Encode())
		return nil
	})
}

// ArticleMetadata adds the last update date and the role and level labels of
// an article right after its first h1.
func ArticleMetadata() Transformer {
	return New("article-metadata", StageDecorate, Dependencies{}, func(ctx context.Context, tc *Context) error {
		if tc.PageType != Article || tc.Doc.Content == nil || hasBlock(tc.Doc.Content, block.ArticleMetadata) {
			return nil
		}
		b := block.New(block.ArticleMetadata)
		lastUpdate := tc.Front.String("last-update")
		if lastUpdate == "" {
			lastUpdate = tc.DataString("lastUpdated")
		}
		if lastUpdate != "" {
			b.AddRow(block.TextCell("last-update"), block.TextCell(lastUpdate))
		}
		for _, category := range []string{"role", "level"} {
			var names []string
			for _, code := range tc.Front.Strings(category) {
				label, err := tc.Label(ctx, category, code)
				if err != nil {
					return err
				}
				names = append(names, label)
			}
			if len(names) > 0 {
				b.AddRow(block.TextCell(category), block.TextCell(strings.Join(names, ", ")))
			}
		}
		if len(b.Rows) == 0 {
			return nil
		}
		placeAfterTitle(tc, b.Encode())
		return nil
	})
}

// DocActions adds the page action links of an article after the article
// metadata, or after the first h1 when there is none.
func DocActions() Transformer {
	deps := Dependencies{MustRunAfter: []string{"article-metadata"}}
	return New("doc-actions", StageDecorate, deps, func(ctx context.Context, tc *Context) error {
		if tc.PageType != Article || tc.Doc.Content == nil || hasBlock(tc.Doc.Content, block.DocActions) {
			return nil
		}
		b := block.New(block.DocActions)
		if tc.PagePath != "" {
			b.AddRow(block.TextCell("share"), block.NodeCell(link(tc.PagePath, tc.PagePath)))
		}
		if edit := tc.DataString("editUrl"); edit != "" {
			b.AddRow(block.TextCell("edit"), block.NodeCell(link(edit, edit)))
		}
		if len(b.Rows) == 0 {
			return nil
		}
		n := b.Encode()
		if meta := doctree.Find(tc.Doc.Content, doctree.ByClass(block.ArticleMetadata)); meta != nil {
			doctree.InsertAfter(meta, n)
			return nil
		}
		placeAfterTitle(tc, n)
		return nil
	})
}

// MiniTOC lists the h2 headings in the right rail when there are at least two.
func MiniTOC() Transformer {
	return New("mini-toc", StageDecorate, Dependencies{}, func(ctx context.Context, tc *Context) error {
		if tc.Doc.Content == nil || hasBlock(tc.Doc.Rails[1], block.MiniTOC) {
			return nil
		}
		headings := doctree.FindAll(tc.Doc.Content, doctree.ByTag("h2"))
		if len(headings) < 2 {
			return nil
		}
		b := block.New(block.MiniTOC)
		for _, h := range headings {
			text := doctree.TextContent(h)
			if id := doctree.Attr(h, "id"); id != "" {
				b.AddRow(block.NodeCell(link("#"+id, text)))
				continue
			}
			b.AddRow(block.TextCell(text))
		}
		tc.Doc.Rails[1].AppendChild(b.Encode())
		return nil
	})
}

// TOC points the left rail at the table of contents named by the data record's tocPath.
func TOC() Transformer {
	return New("toc", StageDecorate, Dependencies{}, func(ctx context.Context, tc *Context) error {
		path := tc.DataString("tocPath")
		if path == "" || hasBlock(tc.Doc.Rails[0], block.TOC) {
			return nil
		}
		b := block.New(block.TOC)
		b.AddRow(block.NodeCell(link(path, path)))
		tc.Doc.Rails[0].AppendChild(b.Encode())
		return nil
	})
}

// hasBlock reports whether root already holds a block called name.
func hasBlock(root *html.Node, name string) bool {
	return doctree.Find(root, func(n *html.Node) bool { return block.Name(n) == name }) != nil
}

func link(href, text string) *html.Node {
	a := doctree.Element("a", "href", href)
	a.AppendChild(doctree.Text(text))
	return a
}

func prepend(parent, n *html.Node) {
	if parent.FirstChild == nil {
		parent.AppendChild(n)
		return
	}
	doctree.InsertBefore(parent.FirstChild, n)
}

// placeAfterTitle inserts n after the first h1 of the content, or at its top.
func placeAfterTitle(tc *Context, n *html.Node) {
	if h1 := doctree.Find(tc.Doc.Content, doctree.ByTag("h1")); h1 != nil && h1.Parent == tc.Doc.Content {
		doctree.InsertAfter(h1, n)
		return
	}
	prepend(tc.Doc.Content, n)
}
