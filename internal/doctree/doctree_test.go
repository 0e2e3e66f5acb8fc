package doctree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestBuild_Skeleton(t *testing.T) {
	doc, err := Build("<h1>Title</h1><p>Body</p>")
	require.NoError(t, err)

	out, err := doc.Render()
	require.NoError(t, err)
	assert.Equal(t,
		"<!DOCTYPE html><html><head></head><body><header></header><main><div><h1>Title</h1><p>Body</p></div><div></div><div></div></main><footer></footer></body></html>",
		out)

	assert.Len(t, doc.Sections(), 1)
	assert.Same(t, doc.Content, doc.Sections()[0])
}

func TestBuild_CustomElementsSurvive(t *testing.T) {
	doc, err := Build(`<p><span class="sp-badge-wrapper"><sp-badge variant="positive">Beta</sp-badge></span></p>`)
	require.NoError(t, err)

	badge := Find(doc.Content, ByTag("sp-badge"))
	require.NotNil(t, badge)
	assert.Equal(t, "positive", Attr(badge, "variant"))
	assert.Equal(t, "Beta", TextContent(badge))
}

func TestClassHelpers(t *testing.T) {
	n := Element("div", "class", "extension note")
	assert.True(t, HasClass(n, "note"))

	RemoveClass(n, "extension")
	assert.Equal(t, []string{"note"}, Classes(n))

	AddClass(n, "note")
	AddClass(n, "inline")
	assert.Equal(t, "note inline", Attr(n, "class"))

	SetClasses(n, nil)
	_, ok := LookupAttr(n, "class")
	assert.False(t, ok)
}

func TestKeepAttrs(t *testing.T) {
	img := Element("img", "src", "a.png", "width", "20", "alt", "A", "class", "modal")
	KeepAttrs(img, "src", "alt", "title")
	assert.Len(t, img.Attr, 2)
	assert.Equal(t, "a.png", Attr(img, "src"))
	assert.Equal(t, "A", Attr(img, "alt"))
}

func TestHeadingLevel(t *testing.T) {
	tests := []struct {
		tag  string
		want int
	}{
		{"h1", 1}, {"h6", 6}, {"h7", 0}, {"hr", 0}, {"p", 0}, {"header", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HeadingLevel(Element(tt.tag)), tt.tag)
	}
}

func TestTreeMutations(t *testing.T) {
	parent := Element("div")
	a, b, c := Element("a"), Element("b"), Element("i")
	Append(parent, a, c)

	InsertAfter(a, b)
	assert.Equal(t, []string{"a", "b", "i"}, tags(ElementChildren(parent)))

	span := Element("span")
	Wrap(b, span)
	assert.Equal(t, []string{"a", "span", "i"}, tags(ElementChildren(parent)))

	Unwrap(span)
	assert.Equal(t, []string{"a", "b", "i"}, tags(ElementChildren(parent)))

	em := Element("em")
	Replace(c, em)
	assert.Equal(t, []string{"a", "b", "em"}, tags(ElementChildren(parent)))
	assert.Nil(t, c.Parent)
}

func TestClone_IsDeepAndDetached(t *testing.T) {
	doc, err := Build(`<div class="x"><p>one <b>two</b></p></div>`)
	require.NoError(t, err)
	orig := Find(doc.Content, ByClass("x"))

	cp := Clone(orig)
	assert.Nil(t, cp.Parent)
	SetAttr(cp, "class", "y")
	Find(cp, ByTag("b")).FirstChild.Data = "changed"

	assert.Equal(t, "x", Attr(orig, "class"))
	assert.Equal(t, "one two", TextContent(orig))
}

func TestCountImages(t *testing.T) {
	doc, err := Build(`<p><img src="1"></p><div><img src="2"><span><img src="3"></span></div>`)
	require.NoError(t, err)
	assert.Equal(t, 3, CountImages(doc.Content))
	assert.Equal(t, 1, CountImages(Find(doc.Content, ByTag("img"))))
}

func TestDocumentClone_KeepsSkeletonPointers(t *testing.T) {
	doc, err := Build("<p>x</p>")
	require.NoError(t, err)

	cp := doc.Clone()
	require.NotNil(t, cp.Main)
	assert.NotSame(t, doc.Main, cp.Main)
	assert.Equal(t, "x", TextContent(cp.Content))
	assert.True(t, cp.IsRail(ElementChildren(cp.Main)[2]))

	out, err := cp.Render()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
}

func tags(nodes []*html.Node) []string {
	var out []string
	for _, n := range nodes {
		out = append(out, n.Data)
	}
	return out
}
