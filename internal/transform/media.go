package transform

import (
	"context"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/docblocks/internal/block"
	"github.com/dgallion1/docblocks/internal/doctree"
)

// CodeBlocks wraps fenced code in code blocks. The language class becomes the
// variant; data-line-numbers on pre or code adds line-numbers.
func CodeBlocks() Transformer {
	return New("code-blocks", StageBlocks, Dependencies{}, func(ctx context.Context, tc *Context) error {
		for _, pre := range doctree.FindAll(tc.Doc.Body, doctree.ByTag("pre")) {
			if pre.Parent == nil || inCodeBlock(pre) {
				continue
			}
			var code *html.Node
			for _, c := range doctree.ElementChildren(pre) {
				if doctree.IsElement(c, "code") {
					code = c
					break
				}
			}
			if code == nil {
				continue
			}
			b := block.New(block.Code)
			for _, class := range doctree.Classes(code) {
				if lang, ok := strings.CutPrefix(class, "language-"); ok {
					b.AddVariant(lang)
				}
			}
			_, preLines := doctree.LookupAttr(pre, "data-line-numbers")
			_, codeLines := doctree.LookupAttr(code, "data-line-numbers")
			if preLines || codeLines {
				b.AddVariant("line-numbers")
			}
			holder := doctree.Element("div")
			doctree.Replace(pre, holder)
			b.AddRow(block.NodeCell(pre))
			doctree.Replace(holder, b.Encode())
		}
		return nil
	})
}

// inCodeBlock reports whether pre already sits in the cell of a code block.
func inCodeBlock(pre *html.Node) bool {
	cell := pre.Parent
	if cell == nil || cell.Parent == nil {
		return false
	}
	return block.Name(cell.Parent.Parent) == block.Code
}

// Videos turns video admonitions and iframes into embed blocks. The transcript
// row needs a label lookup and is added as a deferred decoration.
func Videos() Transformer {
	return New("videos", StageBlocks, Dependencies{}, func(ctx context.Context, tc *Context) error {
		for _, n := range doctree.FindAll(tc.Doc.Body, func(n *html.Node) bool {
			return (doctree.IsElement(n, "div") && doctree.HasClass(n, "extension") && doctree.HasClass(n, "video")) ||
				doctree.IsElement(n, "iframe")
		}) {
			src := doctree.Attr(n, "data-src")
			if n.Data == "iframe" {
				src = doctree.Attr(n, "src")
			}
			if src == "" {
				continue
			}
			b := block.New(block.Embed, "video")
			link := doctree.Element("a", "href", src)
			link.AppendChild(doctree.Text(src))
			b.AddRow(block.NodeCell(link))
			if title := strings.TrimSpace(doctree.Attr(n, "title")); title != "" {
				b.AddRow(block.TextCell(title))
			}
			embed := b.Encode()
			doctree.Replace(n, embed)

			transcript := func(ctx context.Context) (func(), error) {
				label, err := tc.Label(ctx, "ui", "video-transcript")
				if err != nil {
					return nil, err
				}
				return func() {
					a := doctree.Element("a", "href", src+"#transcript")
					a.AppendChild(doctree.Text(label))
					block.AppendRow(embed, block.NodeCell(a))
				}, nil
			}
			if tc.Deferred == nil {
				apply, err := transcript(ctx)
				if err != nil {
					return err
				}
				apply()
				continue
			}
			tc.Deferred.Go(transcript)
		}
		return nil
	})
}

// Accordions merges each run of sibling details elements into one accordion
// block with a summary cell and a body cell per item.
func Accordions() Transformer {
	return New("accordions", StageBlocks, Dependencies{}, func(ctx context.Context, tc *Context) error {
		done := map[*html.Node]bool{}
		for _, d := range doctree.FindAll(tc.Doc.Body, doctree.ByTag("details")) {
			if done[d] || d.Parent == nil {
				continue
			}
			run := []*html.Node{d}
			for s := d.NextSibling; s != nil; s = s.NextSibling {
				if doctree.IsBlank(s) {
					continue
				}
				if !doctree.IsElement(s, "details") {
					break
				}
				run = append(run, s)
			}

			b := block.New(block.Accordion)
			for _, item := range run {
				done[item] = true
				var summary []*html.Node
				var body []*html.Node
				for _, c := range doctree.Children(item) {
					if doctree.IsElement(c, "summary") && summary == nil {
						summary = doctree.Children(c)
						continue
					}
					body = append(body, c)
				}
				b.AddRow(block.NodeCell(summary...), block.NodeCell(groupInline(body)...))
			}
			placeholder := doctree.Element("div")
			doctree.InsertBefore(d, placeholder)
			for _, item := range run {
				doctree.Detach(item)
			}
			doctree.Replace(placeholder, b.Encode())
		}
		return nil
	})
}

// Tabs splits a `div.tabs` container at its first heading level. Each heading
// of that level opens a tab row of title and content; content before the
// first heading stays in front of the block.
func Tabs() Transformer {
	return New("tabs", StageBlocks, Dependencies{}, func(ctx context.Context, tc *Context) error {
		for _, n := range doctree.FindAll(tc.Doc.Body, doctree.ByClass("tabs")) {
			if !doctree.IsElement(n, "div") || n.Parent == nil {
				continue
			}
			level := 0
			for _, c := range doctree.ElementChildren(n) {
				if level = doctree.HeadingLevel(c); level > 0 {
					break
				}
			}
			if level == 0 {
				continue
			}

			b := block.New(block.Tabs)
			var title *html.Node
			var content []*html.Node
			flush := func() {
				if title != nil {
					b.AddRow(block.NodeCell(doctree.Children(title)...), block.NodeCell(content...))
				}
				content = nil
			}
			for _, c := range doctree.Children(n) {
				if doctree.HeadingLevel(c) == level {
					flush()
					title = c
					continue
				}
				if title == nil {
					if !doctree.IsBlank(c) {
						doctree.InsertBefore(n, c)
					}
					continue
				}
				if !doctree.IsBlank(c) {
					content = append(content, c)
				}
			}
			flush()
			doctree.Replace(n, b.Encode())
		}
		return nil
	})
}

// ShadeBoxes wraps the content of `div.shade-box` containers in a one-cell block.
func ShadeBoxes() Transformer {
	return New("shade-box", StageBlocks, Dependencies{}, func(ctx context.Context, tc *Context) error {
		for _, n := range doctree.FindAll(tc.Doc.Body, doctree.ByClass(block.ShadeBox)) {
			// Already in block shape.
			if !doctree.IsElement(n, "div") || n.Parent == nil || block.IsValid(n) {
				continue
			}
			b := block.New(block.ShadeBox)
			for _, class := range doctree.Classes(n) {
				b.AddVariant(class)
			}
			b.AddRow(block.NodeCell(groupInline(doctree.Children(n))...))
			doctree.Replace(n, b.Encode())
		}
		return nil
	})
}

// Checklists converts task lists, where every item starts with a checkbox,
// into checklist blocks with a state cell and an item cell per row.
func Checklists() Transformer {
	return New("checklists", StageBlocks, Dependencies{}, func(ctx context.Context, tc *Context) error {
		for _, list := range doctree.FindAll(tc.Doc.Body, doctree.ByTag("ul", "ol")) {
			if list.Parent == nil {
				continue
			}
			items := doctree.ElementChildren(list)
			if len(items) == 0 {
				continue
			}
			boxes := make([]*html.Node, len(items))
			for i, li := range items {
				boxes[i] = leadingCheckbox(li)
				if !doctree.IsElement(li, "li") || boxes[i] == nil {
					boxes = nil
					break
				}
			}
			if boxes == nil {
				continue
			}

			b := block.New(block.Checklist)
			for i, li := range items {
				state := "unchecked"
				if _, ok := doctree.LookupAttr(boxes[i], "checked"); ok {
					state = "checked"
				}
				doctree.Detach(boxes[i])
				b.AddRow(block.TextCell(state), block.NodeCell(groupInline(doctree.Children(li))...))
			}
			doctree.Replace(list, b.Encode())
		}
		return nil
	})
}

// leadingCheckbox returns the checkbox opening a list item, directly or
// inside its first paragraph.
func leadingCheckbox(li *html.Node) *html.Node {
	kids := doctree.ElementChildren(li)
	if len(kids) == 0 {
		return nil
	}
	first := kids[0]
	if doctree.IsElement(first, "p") {
		if inner := doctree.ElementChildren(first); len(inner) > 0 {
			first = inner[0]
		}
	}
	if doctree.IsElement(first, "input") && strings.EqualFold(doctree.Attr(first, "type"), "checkbox") {
		return first
	}
	return nil
}
