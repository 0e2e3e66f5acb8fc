// Package section groups the converted content into heading-delimited sections.
package section

import (
	"golang.org/x/net/html"

	"github.com/dgallion1/docblocks/internal/doctree"
)

// Partition splits the children of doc.Content into runs that each start at a
// heading (the first run may start without one) and wraps every run in a div.
// The divs replace the content area as direct children of main, in place.
// Whitespace-only text between top-level nodes is dropped; every other node
// keeps its relative order. It returns the new sections.
//
// Sections already following the content area (hoisted inline fragments) are
// moved to sit after the section holding their `#id` link, keeping their
// relative order. A section nothing links to stays where it is.
func Partition(doc *doctree.Document) []*html.Node {
	content := doc.Content
	if content == nil || content.Parent == nil {
		return nil
	}
	var trailing []*html.Node
	for n := content.NextSibling; n != nil; n = n.NextSibling {
		if n.Type == html.ElementNode && !doc.IsRail(n) {
			trailing = append(trailing, n)
		}
	}

	var sections []*html.Node
	var current *html.Node
	for _, n := range doctree.Children(content) {
		if n.Type == html.TextNode && doctree.IsBlank(n) {
			doctree.Detach(n)
			continue
		}
		if current == nil || doctree.IsHeading(n) {
			current = doctree.Element("div")
			sections = append(sections, current)
		}
		doctree.Append(current, n)
	}

	for _, s := range sections {
		doctree.InsertBefore(content, s)
	}
	doctree.Detach(content)
	doc.Content = nil
	reseat(doc, sections, trailing)
	return sections
}

// reseat moves each trailing section after the last section already placed
// behind the heading section that links to it.
func reseat(doc *doctree.Document, sections, trailing []*html.Node) {
	root := map[*html.Node]*html.Node{}
	tail := map[*html.Node]*html.Node{}
	for _, s := range sections {
		root[s] = s
		tail[s] = s
	}
	for _, t := range trailing {
		id := doctree.Attr(t, "id")
		if id == "" {
			continue
		}
		a := doctree.Find(doc.Main, func(n *html.Node) bool {
			return doctree.IsElement(n, "a") && doctree.Attr(n, "href") == "#"+id
		})
		if a == nil {
			continue
		}
		r, ok := root[doc.SectionOf(a)]
		if !ok {
			continue
		}
		doctree.InsertAfter(tail[r], t)
		tail[r] = t
		root[t] = r
	}
}
