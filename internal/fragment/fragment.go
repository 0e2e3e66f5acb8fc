// Package fragment splits image-heavy documents into separately persisted
// fragments so the main page stays within an image budget.
package fragment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/docblocks/internal/block"
	"github.com/dgallion1/docblocks/internal/doctree"
)

// DefaultBudget is the number of images a page may carry before it is fragmented.
const DefaultBudget = 100

// Bucket is a contiguous run of nodes inside one section.
type Bucket struct {
	Section *html.Node
	Nodes   []*html.Node
	Images  int
}

// Written describes one persisted fragment.
type Written struct {
	Path   string `json:"path"`
	URL    string `json:"url"`
	Images int    `json:"images"`
}

// Fragmenter moves buckets of an over-budget document into fragments.
type Fragmenter struct {
	Writer Writer
	Budget int
	Logger *slog.Logger
}

// Path returns the storage path of fragment k of pagePath.
func Path(pagePath string, k int) string {
	p := "/" + strings.Trim(pagePath, "/")
	if p == "/" {
		p = ""
	}
	return fmt.Sprintf("/fragments%s/fragment-%d.html", p, k)
}

// Plan splits the sections of doc into buckets. Each section end closes the
// current bucket; a node that would push a bucket past budget starts a new
// one, so only a single node can exceed budget on its own.
func Plan(doc *doctree.Document, budget int) []Bucket {
	var buckets []Bucket
	for _, section := range doc.Sections() {
		cur := Bucket{Section: section}
		hasContent := false
		for _, child := range doctree.Children(section) {
			if doctree.IsBlank(child) {
				cur.Nodes = append(cur.Nodes, child)
				continue
			}
			images := doctree.CountImages(child)
			if hasContent && cur.Images+images > budget {
				buckets = append(buckets, cur)
				cur = Bucket{Section: section}
			}
			cur.Nodes = append(cur.Nodes, child)
			cur.Images += images
			hasContent = true
		}
		if hasContent {
			buckets = append(buckets, cur)
		}
	}
	return buckets
}

// Apply fragments doc when it carries more images than the budget. The first
// bucket stays in the page; every later bucket is written as a standalone
// document and replaced by a fragment-link section. A section id moves with
// the section's first bucket, and in-page anchors whose target changed
// document are rewritten to point at it. All writes happen before the page is
// touched, so a failed write leaves doc unchanged.
func (f *Fragmenter) Apply(ctx context.Context, doc *doctree.Document, pagePath string) ([]Written, error) {
	budget := f.Budget
	if budget <= 0 {
		budget = DefaultBudget
	}
	total := 0
	for _, s := range doc.Sections() {
		total += doctree.CountImages(s)
	}
	if total <= budget {
		return nil, nil
	}

	buckets := Plan(doc, budget)
	if len(buckets) < 2 {
		return nil, nil
	}
	moved := buckets[1:]

	seen := map[*html.Node]bool{buckets[0].Section: true}
	sectionIDs := make([]string, len(moved))
	home := map[string]string{}
	for k, b := range moved {
		path := Path(pagePath, k)
		if !seen[b.Section] {
			seen[b.Section] = true
			sectionIDs[k] = doctree.Attr(b.Section, "id")
			if sectionIDs[k] != "" {
				home[sectionIDs[k]] = path
			}
		}
		for _, n := range b.Nodes {
			for _, id := range idsUnder(n) {
				home[id] = path
			}
		}
	}
	inPage := map[string]bool{}
	for _, id := range idsUnder(doc.Main) {
		if _, ok := home[id]; !ok {
			inPage[id] = true
		}
	}
	pageHref := "/" + strings.Trim(pagePath, "/")

	written := make([]Written, 0, len(moved))
	for k, b := range moved {
		path := Path(pagePath, k)
		content, err := standalone(b.Nodes, sectionIDs[k], func(id string) string {
			if h, ok := home[id]; ok && h != path {
				return h + "#" + id
			}
			if inPage[id] {
				return pageHref + "#" + id
			}
			return ""
		})
		if err != nil {
			return written, fmt.Errorf("render fragment %d: %w", k, err)
		}
		url, err := f.Writer.WriteFragment(ctx, path, content)
		if err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, Written{Path: path, URL: url, Images: b.Images})
	}

	// Link sections are inserted after the bucket's own section, after any
	// link already inserted for it.
	lastInserted := map[*html.Node]*html.Node{}
	for k, b := range moved {
		link := linkSection(written[k].Path, firstHeading(b.Nodes))
		anchor := b.Section
		if prev, ok := lastInserted[b.Section]; ok {
			anchor = prev
		}
		doctree.InsertAfter(anchor, link)
		lastInserted[b.Section] = link
		for _, n := range b.Nodes {
			doctree.Detach(n)
		}
	}
	for section := range lastInserted {
		if isEmpty(section) {
			doctree.Detach(section)
		}
	}
	rewriteAnchors(doc.Root, func(id string) string {
		if h, ok := home[id]; ok {
			return h + "#" + id
		}
		return ""
	})

	if f.Logger != nil {
		f.Logger.Info("fragmented page", "images", total, "budget", budget, "fragments", len(written))
	}
	return written, nil
}

// standalone renders copies of nodes as html > body > main > div.section. The
// section carries id when set; relink maps anchor targets that live elsewhere.
func standalone(nodes []*html.Node, id string, relink func(string) string) ([]byte, error) {
	doc := &html.Node{Type: html.DocumentNode}
	root := doctree.Element("html")
	body := doctree.Element("body")
	main := doctree.Element("main")
	section := doctree.Element("div", "class", "section")
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(root)
	doctree.Append(root, doctree.Element("head"), body)
	body.AppendChild(main)
	main.AppendChild(section)
	if id != "" {
		doctree.SetAttr(section, "id", id)
	}
	for _, n := range nodes {
		section.AppendChild(doctree.Clone(n))
	}
	rewriteAnchors(section, relink)
	out, err := doctree.Render(doc)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

// idsUnder returns the ids of n and its element descendants.
func idsUnder(n *html.Node) []string {
	var out []string
	if id := doctree.Attr(n, "id"); n.Type == html.ElementNode && id != "" {
		out = append(out, id)
	}
	for _, e := range doctree.FindAll(n, func(c *html.Node) bool { return doctree.Attr(c, "id") != "" }) {
		out = append(out, doctree.Attr(e, "id"))
	}
	return out
}

// rewriteAnchors replaces every href="#id" under root for which target
// returns a non-empty href.
func rewriteAnchors(root *html.Node, target func(id string) string) {
	for _, a := range doctree.FindAll(root, doctree.ByTag("a")) {
		href := doctree.Attr(a, "href")
		if len(href) < 2 || href[0] != '#' {
			continue
		}
		if to := target(href[1:]); to != "" {
			doctree.SetAttr(a, "href", to)
		}
	}
}

func linkSection(path, text string) *html.Node {
	if text == "" {
		text = path
	}
	a := doctree.Element("a", "href", path)
	a.AppendChild(doctree.Text(text))
	b := block.New(block.FragmentLink)
	b.AddRow(block.NodeCell(a))
	section := doctree.Element("div")
	section.AppendChild(b.Encode())
	return section
}

func firstHeading(nodes []*html.Node) string {
	for _, n := range nodes {
		if doctree.IsHeading(n) {
			return doctree.TextContent(n)
		}
		if h := doctree.Find(n, doctree.IsHeading); h != nil {
			return doctree.TextContent(h)
		}
	}
	return ""
}

func isEmpty(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !doctree.IsBlank(c) {
			return false
		}
	}
	return true
}
