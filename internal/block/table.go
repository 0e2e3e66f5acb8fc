package block

import (
	"golang.org/x/net/html"

	"github.com/dgallion1/docblocks/internal/doctree"
)

// ToTable rewrites a block-shaped div as a plain table: the first row becomes
// thead, the rest tbody, one cell per column. It tolerates malformed blocks:
// a non-div row becomes a single-cell row holding that node.
// Children of n are moved into the table; n itself is left empty.
func ToTable(n *html.Node) *html.Node {
	table := doctree.Element("table", "class", Name(n))
	var rows [][]*html.Node
	for _, r := range doctree.Children(n) {
		if doctree.IsBlank(r) {
			continue
		}
		if !doctree.IsElement(r, "div") {
			rows = append(rows, []*html.Node{wrapCell(r)})
			continue
		}
		var cells []*html.Node
		for _, c := range doctree.Children(r) {
			if doctree.IsBlank(c) {
				continue
			}
			cells = append(cells, wrapCell(c))
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		return table
	}

	thead := doctree.Element("thead")
	thead.AppendChild(tableRow("th", rows[0]))
	table.AppendChild(thead)
	if len(rows) > 1 {
		tbody := doctree.Element("tbody")
		for _, cells := range rows[1:] {
			tbody.AppendChild(tableRow("td", cells))
		}
		table.AppendChild(tbody)
	}
	return table
}

// wrapCell returns the content for one table cell. A div cell gives its
// children; anything else is taken as is.
func wrapCell(n *html.Node) *html.Node {
	holder := doctree.Element("div")
	if doctree.IsElement(n, "div") {
		doctree.Append(holder, doctree.Children(n)...)
		holder.Attr = n.Attr
	} else {
		doctree.Append(holder, n)
	}
	return holder
}

func tableRow(cellTag string, cells []*html.Node) *html.Node {
	tr := doctree.Element("tr")
	for _, holder := range cells {
		cell := doctree.Element(cellTag)
		for _, a := range holder.Attr {
			if a.Key == "colspan" || a.Key == "rowspan" {
				cell.Attr = append(cell.Attr, a)
			}
		}
		doctree.Append(cell, doctree.Children(holder)...)
		tr.AppendChild(cell)
	}
	return tr
}

// Degrade replaces the block n with its table rendering and returns the table.
func Degrade(n *html.Node) *html.Node {
	parent := n.Parent
	table := ToTable(n)
	if parent != nil {
		doctree.Replace(n, table)
	}
	return table
}
