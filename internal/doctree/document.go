package doctree

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is the page skeleton every conversion works on:
//
//	html > (head, body > (header, main > (content, rail, rail), footer))
//
// Content holds the converted article until sections replace it. The two rails
// stay the last children of Main.
type Document struct {
	Root    *html.Node
	HTML    *html.Node
	Head    *html.Node
	Body    *html.Node
	Header  *html.Node
	Main    *html.Node
	Content *html.Node
	Footer  *html.Node
	Rails   [2]*html.Node
}

// NewDocument returns an empty skeleton.
func NewDocument() *Document {
	d := &Document{
		Root:    &html.Node{Type: html.DocumentNode},
		HTML:    Element("html"),
		Head:    Element("head"),
		Body:    Element("body"),
		Header:  Element("header"),
		Main:    Element("main"),
		Content: Element("div"),
		Footer:  Element("footer"),
		Rails:   [2]*html.Node{Element("div"), Element("div")},
	}
	d.Root.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	d.Root.AppendChild(d.HTML)
	Append(d.HTML, d.Head, d.Body)
	Append(d.Body, d.Header, d.Main, d.Footer)
	Append(d.Main, d.Content, d.Rails[0], d.Rails[1])
	return d
}

// Build parses an HTML fragment and places it in the content area of a new skeleton.
func Build(fragment string) (*Document, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), context)
	if err != nil {
		return nil, fmt.Errorf("parse fragment: %w", err)
	}
	d := NewDocument()
	Append(d.Content, nodes...)
	return d, nil
}

// IsRail reports whether n is one of the two navigation rails.
func (d *Document) IsRail(n *html.Node) bool {
	return n == d.Rails[0] || n == d.Rails[1]
}

// Sections returns the element children of Main except the rails.
func (d *Document) Sections() []*html.Node {
	var out []*html.Node
	for _, c := range ElementChildren(d.Main) {
		if !d.IsRail(c) {
			out = append(out, c)
		}
	}
	return out
}

// SectionOf returns the direct child of Main that contains n, or nil.
func (d *Document) SectionOf(n *html.Node) *html.Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Parent == d.Main {
			return cur
		}
	}
	return nil
}

// LastSection returns the last non-rail child of Main, or nil.
func (d *Document) LastSection() *html.Node {
	sections := d.Sections()
	if len(sections) == 0 {
		return nil
	}
	return sections[len(sections)-1]
}

// Render serializes the whole document.
func (d *Document) Render() (string, error) {
	return Render(d.Root)
}

// Clone deep-copies the document, keeping the skeleton pointers consistent.
func (d *Document) Clone() *Document {
	c := &Document{Root: Clone(d.Root)}
	c.HTML = Find(c.Root, ByTag("html"))
	c.Head = Find(c.HTML, ByTag("head"))
	c.Body = Find(c.HTML, ByTag("body"))
	for _, ch := range ElementChildren(c.Body) {
		switch ch.Data {
		case "header":
			c.Header = ch
		case "main":
			c.Main = ch
		case "footer":
			c.Footer = ch
		}
	}
	if c.Main != nil {
		kids := ElementChildren(c.Main)
		if n := len(kids); n >= 2 {
			c.Rails = [2]*html.Node{kids[n-2], kids[n-1]}
			if d.Content != nil && d.Content.Parent == d.Main && n >= 3 {
				c.Content = kids[0]
			}
		}
	}
	return c
}
