package importer

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/docblocks/internal/doctree"
)

// HTMLImporter converts legacy HTML pages. Headings, paragraphs, list items,
// preformatted text and images map to Markdown; tables are kept as raw HTML.
type HTMLImporter struct{}

func (HTMLImporter) Import(r io.Reader, filename string) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var blocks []string
	if title := doctree.Find(doc, doctree.ByTag("title")); title != nil && doctree.Find(doc, doctree.ByTag("h1")) == nil {
		blocks = append(blocks, heading(1, doctree.TextContent(title)))
	}

	var walk func(*html.Node) error
	walk = func(n *html.Node) error {
		if n.Type == html.ElementNode {
			if level := doctree.HeadingLevel(n); level > 0 {
				blocks = append(blocks, heading(level, doctree.TextContent(n)))
				return nil
			}
			switch n.Data {
			case "script", "style", "nav", "footer", "header", "head":
				return nil
			case "p", "blockquote":
				blocks = append(blocks, inlineText(n))
				return nil
			case "ul", "ol":
				blocks = append(blocks, listItems(n))
				return nil
			case "pre":
				blocks = append(blocks, "```\n"+strings.TrimRight(rawText(n), "\n")+"\n```")
				return nil
			case "img":
				blocks = append(blocks, image(n))
				return nil
			case "table":
				out, err := doctree.Render(n)
				if err != nil {
					return err
				}
				blocks = append(blocks, strings.ReplaceAll(out, "\n", " "))
				return nil
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}

	root := doctree.Find(doc, doctree.ByTag("body"))
	if root == nil {
		root = doc
	}
	if err := walk(root); err != nil {
		return "", fmt.Errorf("convert %s: %w", filename, err)
	}
	return joinBlocks(blocks), nil
}

// inlineText keeps images and links of a paragraph and flattens everything else.
func inlineText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			words := strings.Fields(n.Data)
			if len(words) == 0 || startsWithSpace(n.Data) {
				space(&b)
			}
			b.WriteString(strings.Join(words, " "))
			if len(words) > 0 && endsWithSpace(n.Data) {
				space(&b)
			}
			return
		case doctree.IsElement(n, "img"):
			b.WriteString(image(n))
			return
		case doctree.IsElement(n, "a") && doctree.Attr(n, "href") != "":
			fmt.Fprintf(&b, "[%s](%s)", doctree.TextContent(n), doctree.Attr(n, "href"))
			return
		case doctree.IsElement(n, "br"):
			b.WriteString("  \n")
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}

func listItems(list *html.Node) string {
	marker := "- "
	var lines []string
	for i, li := range doctree.ElementChildren(list) {
		if !doctree.IsElement(li, "li") {
			continue
		}
		if list.Data == "ol" {
			marker = fmt.Sprintf("%d. ", i+1)
		}
		lines = append(lines, marker+inlineText(li))
	}
	return strings.Join(lines, "\n")
}

func image(n *html.Node) string {
	return fmt.Sprintf("![%s](%s)", doctree.Attr(n, "alt"), doctree.Attr(n, "src"))
}

func rawText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func startsWithSpace(s string) bool { return s != "" && strings.TrimLeft(s[:1], " \t\r\n") == "" }

func endsWithSpace(s string) bool { return s != "" && strings.TrimRight(s[len(s)-1:], " \t\r\n") == "" }

// space writes one separator unless the output already ends with whitespace.
func space(b *strings.Builder) {
	s := b.String()
	if s == "" || strings.HasSuffix(s, " ") || strings.HasSuffix(s, "\n") {
		return
	}
	b.WriteByte(' ')
}
