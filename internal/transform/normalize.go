package transform

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/docblocks/internal/doctree"
)

var inlineMarker = regexp.MustCompile(`\[!(UICONTROL|DNL)\s+([^\]]+)\]`)

// InlineMarkers rewrites `[!UICONTROL x]` as a uicontrol span and `[!DNL x]`
// as plain text. Text inside code is left alone.
func InlineMarkers() Transformer {
	return New("inline-markers", StageNormalize, Dependencies{}, func(ctx context.Context, tc *Context) error {
		for _, t := range doctree.FindAll(tc.Doc.Body, func(n *html.Node) bool {
			return n.Type == html.TextNode && strings.Contains(n.Data, "[!")
		}) {
			if doctree.Closest(t, doctree.ByTag("code", "pre")) != nil {
				continue
			}
			rewriteMarkers(t)
		}
		return nil
	})
}

func rewriteMarkers(t *html.Node) {
	matches := inlineMarker.FindAllStringSubmatchIndex(t.Data, -1)
	if len(matches) == 0 {
		return
	}
	s := t.Data
	last := 0
	var nodes []*html.Node
	for _, m := range matches {
		if m[0] > last {
			nodes = append(nodes, doctree.Text(s[last:m[0]]))
		}
		kind, value := s[m[2]:m[3]], strings.TrimSpace(s[m[4]:m[5]])
		if kind == "UICONTROL" {
			span := doctree.Element("span", "class", "uicontrol")
			span.AppendChild(doctree.Text(value))
			nodes = append(nodes, span)
		} else {
			nodes = append(nodes, doctree.Text(value))
		}
		last = m[1]
	}
	if last < len(s) {
		nodes = append(nodes, doctree.Text(s[last:]))
	}
	for _, n := range nodes {
		doctree.InsertBefore(t, n)
	}
	doctree.Detach(t)
}

// ExternalLinks folds link targets into the href fragment: `target="x"`
// becomes `#x`, and absolute links to hosts other than siteHost open in a
// new window. target and rel are removed.
func ExternalLinks(siteHost string) Transformer {
	return New("external-links", StageNormalize, Dependencies{}, func(ctx context.Context, tc *Context) error {
		for _, a := range doctree.FindAll(tc.Doc.Body, doctree.ByTag("a")) {
			href, ok := doctree.LookupAttr(a, "href")
			if !ok {
				continue
			}
			target := doctree.Attr(a, "target")
			if target == "" && isForeign(href, siteHost) {
				target = "_blank"
			}
			if target != "" && !strings.Contains(href, "#") {
				doctree.SetAttr(a, "href", href+"#"+target)
			}
			doctree.RemoveAttr(a, "target")
			doctree.RemoveAttr(a, "rel")
		}
		return nil
	})
}

func isForeign(href, siteHost string) bool {
	u, err := url.Parse(href)
	if err != nil || u.Host == "" {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return siteHost == "" || !strings.EqualFold(u.Hostname(), siteHost)
}

// EmptyParagraphs drops paragraphs without text or embedded elements.
func EmptyParagraphs() Transformer {
	return New("empty-paragraphs", StageNormalize, Dependencies{}, func(ctx context.Context, tc *Context) error {
		for _, p := range doctree.FindAll(tc.Doc.Body, doctree.ByTag("p")) {
			if doctree.TextContent(p) == "" && len(doctree.FindAll(p, doctree.ByTag("img", "iframe", "video", "sp-badge"))) == 0 {
				doctree.Detach(p)
			}
		}
		return nil
	})
}
