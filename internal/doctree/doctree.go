// Package doctree holds the HTML tree helpers shared by every conversion stage.
// Nodes are golang.org/x/net/html nodes; helpers never panic on detached nodes.
package doctree

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element creates a detached element node with the given attributes (key, value pairs).
func Element(tag string, attrs ...string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

// Text creates a detached text node.
func Text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// IsElement reports whether n is an element with one of the given tags.
// With no tags it matches any element.
func IsElement(n *html.Node, tags ...string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	if len(tags) == 0 {
		return true
	}
	for _, t := range tags {
		if n.Data == t {
			return true
		}
	}
	return false
}

// HeadingLevel returns 1-6 for h1..h6 and 0 otherwise.
func HeadingLevel(n *html.Node) int {
	if !IsElement(n) || len(n.Data) != 2 || n.Data[0] != 'h' {
		return 0
	}
	if l := int(n.Data[1] - '0'); l >= 1 && l <= 6 {
		return l
	}
	return 0
}

// IsHeading reports whether n is an h1-h6 element.
func IsHeading(n *html.Node) bool {
	return HeadingLevel(n) > 0
}

// Attr returns the value of key, or "" when absent.
func Attr(n *html.Node, key string) string {
	v, _ := LookupAttr(n, key)
	return v
}

// LookupAttr returns the value of key and whether it was present.
func LookupAttr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets key to val, keeping the attribute's position when it exists.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes key from n.
func RemoveAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		out = append(out, a)
	}
	n.Attr = out
}

// KeepAttrs removes every attribute not listed in keys.
func KeepAttrs(n *html.Node, keys ...string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		for _, k := range keys {
			if a.Namespace == "" && a.Key == k {
				out = append(out, a)
				break
			}
		}
	}
	n.Attr = out
}

// Classes returns the class tokens of n in order.
func Classes(n *html.Node) []string {
	return strings.Fields(Attr(n, "class"))
}

// HasClass reports whether n carries the class token c.
func HasClass(n *html.Node, c string) bool {
	for _, tok := range Classes(n) {
		if tok == c {
			return true
		}
	}
	return false
}

// SetClasses replaces the class attribute; an empty list removes it.
func SetClasses(n *html.Node, classes []string) {
	if len(classes) == 0 {
		RemoveAttr(n, "class")
		return
	}
	SetAttr(n, "class", strings.Join(classes, " "))
}

// AddClass appends c unless already present.
func AddClass(n *html.Node, c string) {
	if HasClass(n, c) {
		return
	}
	SetClasses(n, append(Classes(n), c))
}

// RemoveClass drops every occurrence of c.
func RemoveClass(n *html.Node, c string) {
	var kept []string
	for _, tok := range Classes(n) {
		if tok != c {
			kept = append(kept, tok)
		}
	}
	SetClasses(n, kept)
}

// Children returns the direct child nodes of n (any type) as a snapshot.
func Children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// ElementChildren returns the direct element children of n as a snapshot.
func ElementChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// FindAll returns every descendant of root (excluding root) matching pred,
// in document order. The result is a snapshot, safe to mutate while iterating.
func FindAll(root *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if pred(c) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	return out
}

// Find returns the first descendant of root matching pred.
func Find(root *html.Node, pred func(*html.Node) bool) *html.Node {
	if root == nil {
		return nil
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if pred(c) {
			return c
		}
		if m := Find(c, pred); m != nil {
			return m
		}
	}
	return nil
}

// ByTag matches elements with one of the given tags.
func ByTag(tags ...string) func(*html.Node) bool {
	return func(n *html.Node) bool { return IsElement(n, tags...) }
}

// ByClass matches elements carrying class c.
func ByClass(c string) func(*html.Node) bool {
	return func(n *html.Node) bool { return IsElement(n) && HasClass(n, c) }
}

// Closest returns the nearest ancestor of n (excluding n) matching pred.
func Closest(n *html.Node, pred func(*html.Node) bool) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if pred(p) {
			return p
		}
	}
	return nil
}

// TextContent concatenates the text of n and its descendants, trimmed.
func TextContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	if n != nil {
		extract(n)
	}
	return strings.TrimSpace(buf.String())
}

// IsBlank reports whether n is a whitespace-only text node or a comment.
func IsBlank(n *html.Node) bool {
	switch n.Type {
	case html.CommentNode:
		return true
	case html.TextNode:
		return strings.TrimSpace(n.Data) == ""
	}
	return false
}

// Detach removes n from its parent, if any, and returns it.
func Detach(n *html.Node) *html.Node {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
	return n
}

// Append detaches each child and appends it to parent.
func Append(parent *html.Node, children ...*html.Node) {
	for _, c := range children {
		parent.AppendChild(Detach(c))
	}
}

// InsertAfter places n immediately after ref in ref's parent.
func InsertAfter(ref, n *html.Node) {
	Detach(n)
	ref.Parent.InsertBefore(n, ref.NextSibling)
}

// InsertBefore places n immediately before ref in ref's parent.
func InsertBefore(ref, n *html.Node) {
	Detach(n)
	ref.Parent.InsertBefore(n, ref)
}

// Replace puts repl where old was and detaches old.
func Replace(old, repl *html.Node) {
	if old.Parent == nil {
		return
	}
	InsertBefore(old, repl)
	Detach(old)
}

// Unwrap replaces n with its own children.
func Unwrap(n *html.Node) {
	if n.Parent == nil {
		return
	}
	for _, c := range Children(n) {
		InsertBefore(n, c)
	}
	Detach(n)
}

// Wrap places n inside wrapper, putting wrapper where n was.
func Wrap(n, wrapper *html.Node) {
	if n.Parent != nil {
		InsertBefore(n, wrapper)
	}
	Append(wrapper, n)
}

// Clone returns a deep copy of n, detached from any tree.
func Clone(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		c.Attr = make([]html.Attribute, len(n.Attr))
		copy(c.Attr, n.Attr)
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		c.AppendChild(Clone(ch))
	}
	return c
}

// CountImages returns the number of img elements in n, n included.
func CountImages(n *html.Node) int {
	count := 0
	if IsElement(n, "img") {
		count++
	}
	return count + len(FindAll(n, ByTag("img")))
}

// Render serializes n (and its subtree) to HTML.
func Render(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderChildren serializes the children of n without n itself.
func RenderChildren(n *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// inlineTags are elements treated as phrasing content when grouping cell children.
var inlineTags = map[string]bool{
	"a": true, "abbr": true, "b": true, "br": true, "code": true, "em": true,
	"i": true, "img": true, "kbd": true, "mark": true, "s": true, "small": true,
	"span": true, "strong": true, "sub": true, "sup": true, "u": true, "del": true,
	"ins": true, "q": true, "time": true, "var": true, "samp": true, "sp-badge": true,
}

// IsInline reports whether n is a text node or a phrasing element.
func IsInline(n *html.Node) bool {
	switch n.Type {
	case html.TextNode:
		return true
	case html.ElementNode:
		return inlineTags[n.Data]
	}
	return false
}
