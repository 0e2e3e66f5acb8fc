package nested

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/dgallion1/docblocks/internal/block"
	"github.com/dgallion1/docblocks/internal/doctree"
)

func textBlock(name, text string) *html.Node {
	b := block.New(name)
	b.AddRow(block.TextCell(text))
	return b.Encode()
}

func wrapping(name string, inner ...*html.Node) *html.Node {
	b := block.New(name)
	b.AddRow(block.TextCell(name + " title"), block.NodeCell(inner...))
	return b.Encode()
}

func newDoc(t *testing.T, nodes ...*html.Node) *doctree.Document {
	t.Helper()
	doc, err := doctree.Build("<h1>Title</h1>")
	require.NoError(t, err)
	doctree.Append(doc.Content, nodes...)
	return doc
}

func render(t *testing.T, doc *doctree.Document) string {
	t.Helper()
	out, err := doc.Render()
	require.NoError(t, err)
	return out
}

func TestResolve_NoopWithoutNesting(t *testing.T) {
	doc := newDoc(t, textBlock(block.Note, "a"), textBlock(block.Code, "b"))
	before := render(t, doc)

	res := Resolve(doc, &Counter{})
	assert.Empty(t, res.Hoisted)
	assert.Zero(t, res.Tabled)
	assert.Equal(t, before, render(t, doc))
}

func TestResolve_HoistsNestedNote(t *testing.T) {
	note := textBlock(block.Note, "inside")
	doc := newDoc(t, wrapping(block.Tabs, note))

	res := Resolve(doc, &Counter{})
	require.Equal(t, []string{"inline-fragment-note-0"}, res.Hoisted)

	sections := doc.Sections()
	require.Len(t, sections, 2)
	assert.Same(t, doc.Content, sections[0])
	frag := sections[1]
	assert.Equal(t, "inline-fragment-note-0", doctree.Attr(frag, "id"))
	assert.Same(t, frag, note.Parent)

	meta := doctree.Find(frag, doctree.ByClass(block.SectionMetadata))
	require.NotNil(t, meta)
	assert.Equal(t, "styleinline-fragment", doctree.TextContent(meta))

	link := doctree.Find(doc.Content, doctree.ByTag("a"))
	require.NotNil(t, link)
	assert.Equal(t, "#inline-fragment-note-0", doctree.Attr(link, "href"))
	assert.Equal(t, "inline-fragment-note-0", doctree.TextContent(link))

	// Rails stay last.
	kids := doctree.ElementChildren(doc.Main)
	assert.True(t, doc.IsRail(kids[len(kids)-1]))
	assert.True(t, doc.IsRail(kids[len(kids)-2]))
}

func TestResolve_NestedTableBecomesTable(t *testing.T) {
	doc := newDoc(t, wrapping(block.Note, textBlock(block.Table, "cell")))

	res := Resolve(doc, &Counter{})
	assert.Equal(t, 1, res.Tabled)
	assert.Empty(t, res.Hoisted)
	assert.Nil(t, doctree.Find(doc.Content, doctree.ByClass(block.Table)))
	table := doctree.Find(doc.Content, doctree.ByTag("table"))
	require.NotNil(t, table)
	assert.Equal(t, "cell", doctree.TextContent(table))
}

func TestResolve_UnwindsDeeperNesting(t *testing.T) {
	code := textBlock(block.Code, "x := 1")
	note := wrapping(block.Note, code)
	doc := newDoc(t, wrapping(block.Tabs, note), wrapping(block.Accordion, textBlock(block.Embed, "v")))

	res := Resolve(doc, &Counter{})
	assert.Equal(t, []string{
		"inline-fragment-note-0",
		"inline-fragment-embed-1",
		"inline-fragment-code-2",
	}, res.Hoisted)

	var ids []string
	for _, s := range doc.Sections()[1:] {
		ids = append(ids, doctree.Attr(s, "id"))
	}
	assert.Equal(t, []string{
		"inline-fragment-note-0",
		"inline-fragment-code-2",
		"inline-fragment-embed-1",
	}, ids)

	for _, b := range doctree.FindAll(doc.Main, block.IsBlock) {
		assert.True(t, block.IsValid(b), block.Name(b))
	}
}

func TestResolve_CounterIsPerConversion(t *testing.T) {
	for range 2 {
		doc := newDoc(t, wrapping(block.Tabs, textBlock(block.Note, "n")))
		res := Resolve(doc, &Counter{})
		assert.Equal(t, []string{"inline-fragment-note-0"}, res.Hoisted)
	}
}

func TestResolve_LeavesNonHoistableNested(t *testing.T) {
	badge := textBlock(block.Badge, "Beta")
	doc := newDoc(t, wrapping(block.Note, badge))

	res := Resolve(doc, &Counter{})
	assert.Empty(t, res.Hoisted)
	assert.NotNil(t, badge.Parent)
	assert.Len(t, doc.Sections(), 1)
}
