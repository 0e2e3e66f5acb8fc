package transform

import (
	"context"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/docblocks/internal/block"
	"github.com/dgallion1/docblocks/internal/doctree"
)

// Badges turns `span.sp-badge-wrapper > sp-badge` into badge blocks. The
// badge variant attribute becomes a block variant; an enclosing anchor adds a
// link row and a title attribute adds a title row. Badges sharing a paragraph
// get the inline variant.
func Badges() Transformer {
	return New("badges", StageBlocks, Dependencies{}, func(ctx context.Context, tc *Context) error {
		wrappers := doctree.FindAll(tc.Doc.Body, doctree.ByClass("sp-badge-wrapper"))
		perParent := map[*html.Node]int{}
		for _, w := range wrappers {
			perParent[badgeParent(w)]++
		}
		for _, w := range wrappers {
			badge := doctree.Find(w, doctree.ByTag("sp-badge"))
			if badge == nil {
				continue
			}
			parent := badgeParent(w)
			b := block.New(block.Badge, doctree.Attr(badge, "variant"))
			if perParent[parent] > 1 {
				b.AddVariant("inline")
			}
			b.AddRow(block.TextCell(doctree.TextContent(badge)))

			target := w
			if a := doctree.Closest(w, doctree.ByTag("a")); a != nil {
				href := badgeHref(a)
				link := doctree.Element("a", "href", href)
				link.AppendChild(doctree.Text(href))
				b.AddRow(block.NodeCell(link))
				target = a
			}
			if title := strings.TrimSpace(doctree.Attr(badge, "title")); title != "" {
				b.AddRow(block.TextCell(title))
			}
			doctree.Replace(target, b.Encode())
		}
		return nil
	})
}

// badgeHref returns the anchor href with its target appended as a fragment.
func badgeHref(a *html.Node) string {
	href := doctree.Attr(a, "href")
	if target := doctree.Attr(a, "target"); target != "" && !strings.Contains(href, "#") {
		href += "#" + target
	}
	return href
}

func badgeParent(w *html.Node) *html.Node {
	if p := doctree.Closest(w, doctree.ByTag("p", "li", "td", "th")); p != nil {
		return p
	}
	return w.Parent
}
