// Package block defines the block value type and its div encoding.
//
// A block renders as
//
//	<div class="name variant...">      block
//	  <div>                            row
//	    <div>...</div>                 cell
//	  </div>
//	</div>
//
// Cells hold arbitrary content; everything above them is a div.
package block

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/docblocks/internal/doctree"
)

// Block names emitted by the transforms.
const (
	Accordion       = "accordion"
	ArticleMetadata = "article-metadata"
	Badge           = "badge"
	Breadcrumbs     = "breadcrumbs"
	Checklist       = "checklist"
	Code            = "code"
	DocActions      = "doc-actions"
	Embed           = "embed"
	FragmentLink    = "fragment-link"
	MiniTOC         = "mini-toc"
	Note            = "note"
	SectionMetadata = "section-metadata"
	ShadeBox        = "shade-box"
	Table           = "table"
	Tabs            = "tabs"
	TOC             = "toc"
)

var known = map[string]bool{
	Accordion: true, ArticleMetadata: true, Badge: true, Breadcrumbs: true,
	Checklist: true, Code: true, DocActions: true, Embed: true, FragmentLink: true,
	MiniTOC: true, Note: true, SectionMetadata: true, ShadeBox: true, Table: true,
	Tabs: true, TOC: true,
}

// Known reports whether name is one of the block names this module emits.
func Known(name string) bool { return known[name] }

// Cell is one column of a row. Nodes are moved into the cell div on Encode.
type Cell struct {
	Nodes []*html.Node
	Attrs []html.Attribute
}

// Row is an ordered list of cells.
type Row []Cell

// Block is a typed block value.
type Block struct {
	Name     string
	Variants []string
	Rows     []Row
}

// New returns an empty block with the given name and variants.
func New(name string, variants ...string) *Block {
	b := &Block{Name: name}
	for _, v := range variants {
		b.AddVariant(v)
	}
	return b
}

// AddVariant appends v as a class token unless it is empty or already present.
func (b *Block) AddVariant(v string) {
	v = ToClassName(v)
	if v == "" || v == b.Name {
		return
	}
	for _, have := range b.Variants {
		if have == v {
			return
		}
	}
	b.Variants = append(b.Variants, v)
}

// HasVariant reports whether v is among the block variants.
func (b *Block) HasVariant(v string) bool {
	for _, have := range b.Variants {
		if have == v {
			return true
		}
	}
	return false
}

// AddRow appends a row built from cells.
func (b *Block) AddRow(cells ...Cell) {
	b.Rows = append(b.Rows, Row(cells))
}

// TextCell returns a cell holding plain text.
func TextCell(s string) Cell {
	return Cell{Nodes: []*html.Node{doctree.Text(s)}}
}

// NodeCell returns a cell holding the given nodes.
func NodeCell(nodes ...*html.Node) Cell {
	return Cell{Nodes: nodes}
}

// Encode renders the block as a detached div tree. Cell nodes are moved, not copied.
func (b *Block) Encode() *html.Node {
	classes := append([]string{b.Name}, b.Variants...)
	root := doctree.Element("div", "class", strings.Join(classes, " "))
	for _, row := range b.Rows {
		r := doctree.Element("div")
		for _, cell := range row {
			c := doctree.Element("div")
			c.Attr = append(c.Attr, cell.Attrs...)
			doctree.Append(c, cell.Nodes...)
			r.AppendChild(c)
		}
		root.AppendChild(r)
	}
	return root
}

// Decode reads a block back from its div encoding. Cell nodes stay attached.
// It reports false when n is not a div with at least one class.
func Decode(n *html.Node) (*Block, bool) {
	if !doctree.IsElement(n, "div") {
		return nil, false
	}
	classes := doctree.Classes(n)
	if len(classes) == 0 {
		return nil, false
	}
	b := &Block{Name: classes[0], Variants: classes[1:]}
	for _, r := range doctree.ElementChildren(n) {
		var row Row
		for _, c := range doctree.ElementChildren(r) {
			row = append(row, Cell{Nodes: doctree.Children(c), Attrs: c.Attr})
		}
		b.Rows = append(b.Rows, row)
	}
	return b, true
}

// Name returns the block name of n, or "" when n is not block-shaped.
func Name(n *html.Node) string {
	if !doctree.IsElement(n, "div") {
		return ""
	}
	classes := doctree.Classes(n)
	if len(classes) == 0 {
		return ""
	}
	return classes[0]
}

// IsBlock reports whether n is a div whose first class is a known block name.
func IsBlock(n *html.Node) bool {
	return Known(Name(n))
}

// IsValid checks the structural invariants: n is a div with at least one class,
// every child of n is a div, and every child of those rows is a div.
// Whitespace text and comments are ignored.
func IsValid(n *html.Node) bool {
	if Name(n) == "" {
		return false
	}
	for r := n.FirstChild; r != nil; r = r.NextSibling {
		if doctree.IsBlank(r) {
			continue
		}
		if !doctree.IsElement(r, "div") {
			return false
		}
		for c := r.FirstChild; c != nil; c = c.NextSibling {
			if doctree.IsBlank(c) {
				continue
			}
			if !doctree.IsElement(c, "div") {
				return false
			}
		}
	}
	return true
}

var (
	nonClassChars = regexp.MustCompile(`[^a-z0-9-]`)
	dashRuns      = regexp.MustCompile(`-+`)
)

// ToClassName converts s into a lowercase, dash-separated class token.
func ToClassName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonClassChars.ReplaceAllString(s, "-")
	s = dashRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// AppendRow adds a row to an encoded block n. Cell nodes are moved.
func AppendRow(n *html.Node, cells ...Cell) {
	r := doctree.Element("div")
	for _, cell := range cells {
		c := doctree.Element("div")
		c.Attr = append(c.Attr, cell.Attrs...)
		doctree.Append(c, cell.Nodes...)
		r.AppendChild(c)
	}
	n.AppendChild(r)
}
