package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docblocks/internal/doctree"
	"github.com/dgallion1/docblocks/internal/frontmatter"
)

func TestCollect_OrderAndScalars(t *testing.T) {
	front := frontmatter.Fields{
		{Key: "title", Values: []string{"Create"}},
		{Key: "feature", Values: []string{"Workflows", "Assets"}, List: true},
	}
	data := map[string]any{
		"zeta":        true,
		"alpha":       3.5,
		"breadcrumbs": []any{map[string]any{"title": "Home"}},
		"nothing":     nil,
	}

	got := Collect(front, data)
	assert.Equal(t, []Entry{
		{Name: "title", Content: "Create"},
		{Name: "feature", Content: "Workflows, Assets"},
		{Name: "alpha", Content: "3.5"},
		{Name: "zeta", Content: "true"},
	}, got)
}

func TestCollect_MergesCaseVariants(t *testing.T) {
	front := frontmatter.Fields{
		{Key: "Keywords", Values: []string{"Forms, Adaptive"}},
		{Key: "keywords", Values: []string{"forms", "Fragments"}, List: true},
	}
	data := map[string]any{"KEYWORDS": "adaptive, Rules"}

	got := Collect(front, data)
	require.Len(t, got, 1)
	assert.Equal(t, Entry{Name: "keywords", Content: "Forms, Adaptive, Fragments, Rules"}, got[0])
}

func TestCollect_FrontMatterWinsExactKey(t *testing.T) {
	front := frontmatter.Fields{{Key: "title", Values: []string{"A"}}}
	data := map[string]any{"title": "B", "Title": "C"}

	got := Collect(front, data)
	require.Len(t, got, 1)
	assert.Equal(t, Entry{Name: "title", Content: "A, C"}, got[0])
}

func TestTitle(t *testing.T) {
	opts := Options{BrandPrefix: "Adobe", Brand: "Experience League", Article: true}

	assert.Equal(t, "Intro | Adobe Experience League", Title("Intro", nil, opts))

	front := frontmatter.Fields{{Key: "solution", Values: []string{"Experience Manager", "Analytics"}, List: true}}
	assert.Equal(t, "Intro | Adobe Experience Manager", Title("Intro", front, opts))

	branded := frontmatter.Fields{{Key: "solution", Values: []string{"Adobe Analytics"}}}
	assert.Equal(t, "Intro | Adobe Analytics", Title("Intro", branded, opts))

	opts.Article = false
	assert.Equal(t, "Intro", Title("Intro", front, opts))
}

func TestInject(t *testing.T) {
	doc := doctree.NewDocument()
	front := frontmatter.Fields{
		{Key: "title", Values: []string{"Intro"}},
		{Key: "description", Values: []string{"About things"}},
	}

	Inject(doc, front, nil, Options{Brand: "Docs", Article: true})

	out, err := doctree.RenderChildren(doc.Head)
	require.NoError(t, err)
	assert.Equal(t,
		`<title>Intro | Docs</title><meta name="title" content="Intro | Docs"/><meta name="description" content="About things"/>`,
		out)
}
