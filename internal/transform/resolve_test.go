package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docblocks/internal/block"
	"github.com/dgallion1/docblocks/internal/doctree"
	"github.com/dgallion1/docblocks/internal/nested"
)

func TestNestedBlocks_UsesConversionCounter(t *testing.T) {
	tc := newContext(t, `<div class="tabs"><div><div>One</div><div><div class="note"><div><div>hi</div></div></div></div></div></div>`)
	tc.Fragments = &nested.Counter{}
	tc.Fragments.Next()

	apply(t, NestedBlocks(), tc)

	sections := tc.Doc.Sections()
	require.Len(t, sections, 2)
	assert.Equal(t, nested.FragmentID(block.Note, 1), doctree.Attr(sections[1], "id"))
	a := doctree.Find(sections[0], doctree.ByTag("a"))
	require.NotNil(t, a)
	assert.Equal(t, "#inline-fragment-note-1", doctree.Attr(a, "href"))
}

func TestBlockValidation_DegradesInvalidBlocks(t *testing.T) {
	tc := newContext(t, `<div class="note"><p>bad</p></div><div class="code"><div><div>ok</div></div></div><div class="unknown"><p>left alone</p></div>`)
	rec := newCountingRecorder()
	tc.Recorder = rec

	apply(t, BlockValidation(), tc)

	assert.Equal(t, []string{block.Note}, tc.Degraded)
	assert.Equal(t, 1, rec.degraded[block.Note])
	assert.Equal(t, 1, rec.blocks[block.Code])
	out := renderContent(t, tc)
	assert.Contains(t, out, `<table class="note"><thead><tr><th><p>bad</p></th></tr></thead></table>`)
	assert.Contains(t, out, `<div class="unknown"><p>left alone</p></div>`)
}
