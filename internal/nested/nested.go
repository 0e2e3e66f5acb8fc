// Package nested flattens blocks nested inside other blocks. Frontends only
// decorate blocks that are direct children of a section, so nested blocks are
// moved into sections of their own and linked from where they were.
package nested

import (
	"fmt"

	"golang.org/x/net/html"

	"github.com/dgallion1/docblocks/internal/block"
	"github.com/dgallion1/docblocks/internal/doctree"
)

// Hoistable names the blocks moved out into inline fragments.
var Hoistable = map[string]bool{
	block.Note:      true,
	block.Code:      true,
	block.Accordion: true,
	block.Tabs:      true,
	block.ShadeBox:  true,
	block.Embed:     true,
	block.Checklist: true,
}

// Counter numbers inline fragments within one conversion.
type Counter struct {
	n int
}

// Next returns the next fragment number, starting at 0.
func (c *Counter) Next() int {
	n := c.n
	c.n++
	return n
}

// Result reports what Resolve changed.
type Result struct {
	Hoisted []string // ids of the created inline-fragment sections
	Tabled  int      // nested table blocks rendered as plain tables
}

// FragmentID returns the section id for the n-th inline fragment holding a name block.
func FragmentID(name string, n int) string {
	return fmt.Sprintf("inline-fragment-%s-%d", name, n)
}

// Resolve walks every section of doc except the rails. Inside each outermost
// block, a nested table block is rendered as a plain table in place, and a
// nested hoistable block is moved into a new section inserted after the
// enclosing one, leaving an anchor to it behind. New sections are scanned too,
// so deeper nesting unwinds level by level.
func Resolve(doc *doctree.Document, counter *Counter) Result {
	var res Result
	queue := doc.Sections()
	for len(queue) > 0 {
		section := queue[0]
		queue = queue[1:]

		var last *html.Node
		for _, outer := range outermostBlocks(section) {
			for _, n := range doctree.FindAll(outer, block.IsBlock) {
				if !isInside(n, outer) {
					// Already moved along with a hoisted ancestor.
					continue
				}
				name := block.Name(n)
				switch {
				case name == block.Table:
					block.Degrade(n)
					res.Tabled++
				case Hoistable[name]:
					after := section
					if last != nil {
						after = last
					}
					frag := hoist(n, counter)
					doctree.InsertAfter(after, frag)
					last = frag
					queue = append(queue, frag)
					res.Hoisted = append(res.Hoisted, doctree.Attr(frag, "id"))
				}
			}
		}
	}
	return res
}

// hoist replaces n with an anchor and returns the section that now holds n.
func hoist(n *html.Node, counter *Counter) *html.Node {
	id := FragmentID(block.Name(n), counter.Next())

	link := doctree.Element("a", "href", "#"+id)
	link.AppendChild(doctree.Text(id))
	doctree.Replace(n, link)

	meta := block.New(block.SectionMetadata)
	meta.AddRow(block.TextCell("style"), block.TextCell("inline-fragment"))

	section := doctree.Element("div", "id", id)
	doctree.Append(section, n, meta.Encode())
	return section
}

// outermostBlocks returns the blocks in section that have no block ancestor below section.
func outermostBlocks(section *html.Node) []*html.Node {
	var out []*html.Node
	for _, n := range doctree.FindAll(section, block.IsBlock) {
		enclosed := false
		for p := n.Parent; p != nil && p != section; p = p.Parent {
			if block.IsBlock(p) {
				enclosed = true
				break
			}
		}
		if !enclosed {
			out = append(out, n)
		}
	}
	return out
}

func isInside(n, ancestor *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p == ancestor {
			return true
		}
	}
	return false
}
