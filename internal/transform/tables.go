package transform

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/docblocks/internal/block"
	"github.com/dgallion1/docblocks/internal/doctree"
)

// Tables converts authored tables into table blocks, one row per tr and one
// cell per td/th. The table's shape and styling become variants.
func Tables() Transformer {
	return New("tables", StageBlocks, Dependencies{}, func(ctx context.Context, tc *Context) error {
		for _, t := range doctree.FindAll(tc.Doc.Body, doctree.ByTag("table")) {
			if t.Parent == nil {
				continue
			}
			doctree.Replace(t, tableBlock(t).Encode())
		}
		return nil
	})
}

func tableBlock(t *html.Node) *block.Block {
	b := block.New(block.Table)
	rows := tableRows(t)

	cols := 0
	var colspan, rowspan, aligned bool
	bg := backgroundHex(t)
	for _, tr := range rows {
		n := 0
		for _, cell := range doctree.ElementChildren(tr) {
			span := atoiOr(doctree.Attr(cell, "colspan"), 1)
			n += span
			colspan = colspan || span > 1
			rowspan = rowspan || atoiOr(doctree.Attr(cell, "rowspan"), 1) > 1
			aligned = aligned || isAligned(cell)
			if bg == "" {
				bg = backgroundHex(cell)
			}
		}
		if n > cols {
			cols = n
		}
	}

	b.AddVariant(fmt.Sprintf("cols-%d", cols))
	b.AddVariant(fmt.Sprintf("rows-%d", len(rows)))
	if colspan {
		b.AddVariant("colspan")
	}
	if rowspan {
		b.AddVariant("rowspan")
	}
	if aligned {
		b.AddVariant("aligned")
	}
	if border := doctree.Attr(t, "border"); border != "" && border != "0" {
		b.AddVariant("border")
	}
	if bg != "" {
		b.AddVariant("bg-" + bg)
	}
	if w := dimension(t, "width"); w != "" {
		b.AddVariant("width-" + dimensionToken(w))
	}
	if h := dimension(t, "height"); h != "" {
		b.AddVariant("height-" + dimensionToken(h))
	}
	if doctree.Find(t, doctree.ByTag("thead")) == nil {
		b.AddVariant("html-authored")
	}
	if doctree.Find(t, doctree.ByTag("th")) == nil {
		b.AddVariant("no-header")
	}

	for _, tr := range rows {
		var row []block.Cell
		for _, cell := range doctree.ElementChildren(tr) {
			if !doctree.IsElement(cell, "td", "th") {
				continue
			}
			var attrs []html.Attribute
			for _, key := range []string{"colspan", "rowspan"} {
				if v, ok := doctree.LookupAttr(cell, key); ok {
					attrs = append(attrs, html.Attribute{Key: key, Val: v})
				}
			}
			row = append(row, block.Cell{Nodes: groupInline(doctree.Children(cell)), Attrs: attrs})
		}
		b.AddRow(row...)
	}
	return b
}

// tableRows returns the tr elements of t in order, skipping nested tables.
func tableRows(t *html.Node) []*html.Node {
	var rows []*html.Node
	for _, c := range doctree.ElementChildren(t) {
		switch c.Data {
		case "tr":
			rows = append(rows, c)
		case "thead", "tbody", "tfoot":
			for _, tr := range doctree.ElementChildren(c) {
				if doctree.IsElement(tr, "tr") {
					rows = append(rows, tr)
				}
			}
		}
	}
	return rows
}

// groupInline wraps each run of inline nodes in a paragraph. Block-level
// nodes pass through untouched and whitespace-only runs are dropped.
func groupInline(nodes []*html.Node) []*html.Node {
	var out []*html.Node
	var run []*html.Node
	flush := func() {
		blank := true
		for _, n := range run {
			if !doctree.IsBlank(n) {
				blank = false
			}
		}
		if !blank {
			p := doctree.Element("p")
			doctree.Append(p, run...)
			out = append(out, p)
		}
		run = nil
	}
	for _, n := range nodes {
		if doctree.IsInline(n) || n.Type == html.CommentNode {
			run = append(run, n)
			continue
		}
		flush()
		out = append(out, n)
	}
	flush()
	return out
}

var (
	rgbColor  = regexp.MustCompile(`background(?:-color)?\s*:\s*rgb\(\s*(\d+)\s*,\s*(\d+)\s*,\s*(\d+)\s*\)`)
	hexColor  = regexp.MustCompile(`background(?:-color)?\s*:\s*#([0-9a-fA-F]{6}|[0-9a-fA-F]{3})\b`)
	alignment = regexp.MustCompile(`text-align\s*:\s*(left|right|center|justify)`)
	attrDimension = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(px|%|em|rem|vw|vh)?$`)

	styleDimension = map[string]*regexp.Regexp{
		"width":  regexp.MustCompile(`(?:^|;)\s*width\s*:\s*(\d+(?:\.\d+)?)\s*(px|%|em|rem|vw|vh)?\s*(?:;|$)`),
		"height": regexp.MustCompile(`(?:^|;)\s*height\s*:\s*(\d+(?:\.\d+)?)\s*(px|%|em|rem|vw|vh)?\s*(?:;|$)`),
	}
)

// backgroundHex returns the background colour of n as lowercase hex without '#'.
func backgroundHex(n *html.Node) string {
	if c := doctree.Attr(n, "bgcolor"); strings.HasPrefix(c, "#") {
		return strings.ToLower(c[1:])
	}
	style := doctree.Attr(n, "style")
	if m := rgbColor.FindStringSubmatch(style); m != nil {
		return fmt.Sprintf("%02x%02x%02x", clampByte(m[1]), clampByte(m[2]), clampByte(m[3]))
	}
	if m := hexColor.FindStringSubmatch(style); m != nil {
		return strings.ToLower(m[1])
	}
	return ""
}

func isAligned(cell *html.Node) bool {
	return doctree.Attr(cell, "align") != "" || alignment.MatchString(doctree.Attr(cell, "style"))
}

// dimension reads an explicit width or height from the attribute or the style.
// Pixel values come back as a bare number; other units are kept ("50%", "2em").
func dimension(n *html.Node, key string) string {
	if m := attrDimension.FindStringSubmatch(strings.ToLower(strings.TrimSpace(doctree.Attr(n, key)))); m != nil {
		return withUnit(m[1], m[2])
	}
	if m := styleDimension[key].FindStringSubmatch(strings.ToLower(doctree.Attr(n, "style"))); m != nil {
		return withUnit(m[1], m[2])
	}
	return ""
}

func withUnit(value, unit string) string {
	if unit == "px" {
		unit = ""
	}
	return value + unit
}

// dimensionToken renders a dimension as a class token: "50%" becomes "50pct".
func dimensionToken(v string) string {
	return strings.ReplaceAll(v, "%", "pct")
}

func clampByte(s string) int {
	v := atoiOr(s, 0)
	if v > 255 {
		return 255
	}
	return v
}

func atoiOr(s string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return v
}
