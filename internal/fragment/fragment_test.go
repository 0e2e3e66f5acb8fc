package fragment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/dgallion1/docblocks/internal/block"
	"github.com/dgallion1/docblocks/internal/doctree"
)

func images(n int) string {
	return "<p>" + strings.Repeat(`<img src="i.png">`, n) + "</p>"
}

// sectioned builds a document whose main holds one div per section string.
func sectioned(t *testing.T, sections ...string) *doctree.Document {
	t.Helper()
	doc := doctree.NewDocument()
	doctree.Detach(doc.Content)
	for _, s := range sections {
		parsed, err := doctree.Build(s)
		require.NoError(t, err)
		sec := doctree.Element("div")
		doctree.Append(sec, doctree.Children(parsed.Content)...)
		doctree.InsertBefore(doc.Rails[0], sec)
	}
	return doc
}

func mustRender(t *testing.T, doc *doctree.Document) string {
	t.Helper()
	out, err := doc.Render()
	require.NoError(t, err)
	return out
}

func TestPath(t *testing.T) {
	assert.Equal(t, "/fragments/docs/page/fragment-0.html", Path("/docs/page", 0))
	assert.Equal(t, "/fragments/docs/page/fragment-3.html", Path("docs/page/", 3))
	assert.Equal(t, "/fragments/fragment-1.html", Path("/", 1))
}

func TestApply_NoopUnderBudget(t *testing.T) {
	doc := sectioned(t, "<h2>A</h2>"+images(60), "<h2>B</h2>"+images(40))
	before := mustRender(t, doc)
	w := NewMemoryWriter()

	written, err := (&Fragmenter{Writer: w, Budget: 100}).Apply(context.Background(), doc, "/docs/page")
	require.NoError(t, err)
	assert.Empty(t, written)
	assert.Empty(t, w.Paths())
	assert.Equal(t, before, mustRender(t, doc))
}

func TestApply_ThreeSectionsOverBudget(t *testing.T) {
	doc := sectioned(t,
		"<h2>One</h2>"+images(50),
		"<h2>Two</h2>"+images(50),
		"<h2>Three</h2>"+images(50),
	)
	w := NewMemoryWriter()

	written, err := (&Fragmenter{Writer: w, Budget: 100}).Apply(context.Background(), doc, "/docs/page")
	require.NoError(t, err)
	require.NotEmpty(t, written)
	assert.Equal(t, "/fragments/docs/page/fragment-0.html", written[0].Path)
	assert.Equal(t, []string{
		"/fragments/docs/page/fragment-0.html",
		"/fragments/docs/page/fragment-1.html",
	}, w.Paths())

	links := doctree.FindAll(doc.Main, doctree.ByClass(block.FragmentLink))
	require.Len(t, links, 2)
	a := doctree.Find(links[0], doctree.ByTag("a"))
	require.NotNil(t, a)
	assert.Equal(t, "/fragments/docs/page/fragment-0.html", doctree.Attr(a, "href"))
	assert.Equal(t, "Two", doctree.TextContent(a))
	for _, l := range links {
		assert.True(t, block.IsValid(l))
	}

	assert.Equal(t, 50, doctree.CountImages(doc.Main))
	assert.Len(t, doc.Sections(), 3)

	content, ok := w.Get(written[0].Path)
	require.True(t, ok)
	frag, err := html.Parse(strings.NewReader(string(content)))
	require.NoError(t, err)
	section := doctree.Find(frag, doctree.ByClass("section"))
	require.NotNil(t, section)
	assert.Equal(t, "main", section.Parent.Data)
	assert.Equal(t, 50, doctree.CountImages(section))
}

func TestPlan_BucketsRespectBudget(t *testing.T) {
	doc := sectioned(t,
		images(30)+images(30)+images(30)+images(30),
		images(10)+images(150)+images(10),
		"<h2>no images</h2><p>text</p>",
	)
	budget := 100
	buckets := Plan(doc, budget)

	for i, b := range buckets {
		var content []*html.Node
		for _, n := range b.Nodes {
			if !doctree.IsBlank(n) {
				content = append(content, n)
			}
		}
		if b.Images > budget {
			assert.Len(t, content, 1, "bucket %d exceeds budget with more than one node", i)
		}
	}

	var counts []int
	for _, b := range buckets {
		counts = append(counts, b.Images)
	}
	assert.Equal(t, []int{90, 30, 10, 150, 10, 0}, counts)
}

func TestApply_OversizedElementIsolated(t *testing.T) {
	doc := sectioned(t, "<h2>Gallery</h2>"+images(10)+"<div>"+images(150)+"</div>"+images(10))
	w := NewMemoryWriter()

	written, err := (&Fragmenter{Writer: w, Budget: 100}).Apply(context.Background(), doc, "/p")
	require.NoError(t, err)
	require.Len(t, written, 2)
	assert.Equal(t, 150, written[0].Images)
	assert.Equal(t, 10, written[1].Images)
	assert.Equal(t, 10, doctree.CountImages(doc.Main))

	// Link sections follow the kept section in fragment order.
	kids := doc.Sections()
	require.Len(t, kids, 3)
	assert.Equal(t, "/fragments/p/fragment-0.html", doctree.Attr(doctree.Find(kids[1], doctree.ByTag("a")), "href"))
	assert.Equal(t, "/fragments/p/fragment-1.html", doctree.Attr(doctree.Find(kids[2], doctree.ByTag("a")), "href"))
}

func TestApply_EmptiedSectionIsRemoved(t *testing.T) {
	doc := sectioned(t, images(100), "<h2>Second</h2>"+images(20))
	w := NewMemoryWriter()

	written, err := (&Fragmenter{Writer: w, Budget: 100}).Apply(context.Background(), doc, "/p")
	require.NoError(t, err)
	require.Len(t, written, 1)

	sections := doc.Sections()
	require.Len(t, sections, 2)
	assert.Equal(t, block.FragmentLink, block.Name(doctree.ElementChildren(sections[1])[0]))
	assert.Equal(t, "Second", doctree.TextContent(sections[1]))
}

func TestApply_MovedIDsStayReachable(t *testing.T) {
	doc := sectioned(t,
		`<h2 id="a">A</h2><p><a href="#inline-fragment-note-0">inline-fragment-note-0</a></p>`+images(100),
		`<p>note <a href="#a">back</a></p>`,
		`<h2>B</h2><p><a href="#inline-fragment-note-0">again</a></p>`+images(20),
	)
	doctree.SetAttr(doc.Sections()[1], "id", "inline-fragment-note-0")
	w := NewMemoryWriter()

	written, err := (&Fragmenter{Writer: w, Budget: 100}).Apply(context.Background(), doc, "/p")
	require.NoError(t, err)
	require.Len(t, written, 2)

	a := doctree.Find(doc.Main, func(n *html.Node) bool {
		return doctree.IsElement(n, "a") && doctree.TextContent(n) == "inline-fragment-note-0"
	})
	require.NotNil(t, a)
	assert.Equal(t, "/fragments/p/fragment-0.html#inline-fragment-note-0", doctree.Attr(a, "href"))

	note, ok := w.Get("/fragments/p/fragment-0.html")
	require.True(t, ok)
	assert.Contains(t, string(note), `<div class="section" id="inline-fragment-note-0">`)
	assert.Contains(t, string(note), `<a href="/p#a">back</a>`)

	second, ok := w.Get("/fragments/p/fragment-1.html")
	require.True(t, ok)
	assert.Contains(t, string(second), `<a href="/fragments/p/fragment-0.html#inline-fragment-note-0">again</a>`)
	assert.NotContains(t, string(second), `id="`)
}

func TestApply_LogsOncePerPage(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil)).With("page_path", "/p")
	doc := sectioned(t, images(80), images(80))

	_, err := (&Fragmenter{Writer: NewMemoryWriter(), Budget: 100, Logger: log}).Apply(context.Background(), doc, "/p")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "fragmented page")
	assert.Equal(t, 1, strings.Count(buf.String(), "page_path="))
}

func TestApply_WriteFailureLeavesPageUntouched(t *testing.T) {
	doc := sectioned(t, images(80), images(80), images(80))
	before := mustRender(t, doc)
	boom := errors.New("store down")
	w := NewMemoryWriter()
	w.Fail = boom
	w.FailAfter = 1

	_, err := (&Fragmenter{Writer: w, Budget: 100}).Apply(context.Background(), doc, "/p")
	require.ErrorIs(t, err, boom)
	assert.Equal(t, before, mustRender(t, doc))
	assert.Len(t, w.Paths(), 1)
}

func TestDirWriter(t *testing.T) {
	root := t.TempDir()
	w := DirWriter{Root: root, BaseURL: "https://cdn.example.com/"}

	url, err := w.WriteFragment(context.Background(), "/fragments/a/fragment-0.html", []byte("<p>x</p>"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/fragments/a/fragment-0.html", url)

	data, err := os.ReadFile(filepath.Join(root, "fragments", "a", "fragment-0.html"))
	require.NoError(t, err)
	assert.Equal(t, "<p>x</p>", string(data))
}

func TestDirWriter_StaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	_, err := DirWriter{Root: root}.WriteFragment(context.Background(), "../../escape.html", []byte("x"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "escape.html"))
	assert.NoError(t, err, fmt.Sprintf("expected file under %s", root))
}
