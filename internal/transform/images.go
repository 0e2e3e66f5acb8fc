package transform

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/docblocks/internal/doctree"
)

// Images moves presentation attributes of images into an attribute list
// written after the image, `{align="left" width="300" modal="true"}`, and
// strips every attribute but src, alt and title. Linked images keep their
// anchor untouched.
func Images() Transformer {
	deps := Dependencies{MustRunAfter: []string{"external-links"}}
	return New("images", StageBlocks, deps, func(ctx context.Context, tc *Context) error {
		for _, img := range doctree.FindAll(tc.Doc.Body, doctree.ByTag("img")) {
			if doctree.Closest(img, doctree.ByTag("a")) != nil {
				continue
			}
			attrs := imageAttrs(img)
			doctree.KeepAttrs(img, "src", "alt", "title")
			if attrs == "" || img.Parent == nil {
				continue
			}
			text := doctree.Text(attrs)
			if doctree.IsElement(img.Parent, "p", "li") {
				doctree.InsertAfter(img, text)
				continue
			}
			p := doctree.Element("p")
			doctree.Wrap(img, p)
			p.AppendChild(text)
		}
		return nil
	})
}

func imageAttrs(img *html.Node) string {
	var parts []string
	if align := strings.ToLower(doctree.Attr(img, "align")); align == "left" || align == "right" || align == "center" {
		parts = append(parts, fmt.Sprintf("align=%q", align))
	}
	if w := dimension(img, "width"); w != "" {
		parts = append(parts, fmt.Sprintf("width=%q", w))
	}
	if isModal(img) {
		parts = append(parts, `modal="true"`)
	}
	if len(parts) == 0 {
		return ""
	}
	return "{" + strings.Join(parts, " ") + "}"
}

func isModal(img *html.Node) bool {
	if v, ok := doctree.LookupAttr(img, "modal"); ok && v != "false" {
		return true
	}
	if v, ok := doctree.LookupAttr(img, "data-modal"); ok && v != "false" {
		return true
	}
	return doctree.HasClass(img, "modal")
}
