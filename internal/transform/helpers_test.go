package transform

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/dgallion1/docblocks/internal/block"
	"github.com/dgallion1/docblocks/internal/doctree"
	"github.com/dgallion1/docblocks/internal/metrics"
)

func newContext(t *testing.T, src string) *Context {
	t.Helper()
	doc, err := doctree.Build(src)
	require.NoError(t, err)
	return &Context{Doc: doc, Lang: "en", PageType: Article, PagePath: "/docs/guide/page"}
}

func apply(t *testing.T, tr Transformer, tc *Context) {
	t.Helper()
	require.NoError(t, tr.Transform(context.Background(), tc))
}

func renderContent(t *testing.T, tc *Context) string {
	t.Helper()
	out, err := doctree.RenderChildren(tc.Doc.Content)
	require.NoError(t, err)
	return out
}

func findBlock(t *testing.T, root *html.Node, name string) (*html.Node, *block.Block) {
	t.Helper()
	n := doctree.Find(root, func(n *html.Node) bool { return block.Name(n) == name })
	require.NotNil(t, n, "no %s block", name)
	b, ok := block.Decode(n)
	require.True(t, ok)
	return n, b
}

func cellText(c block.Cell) string {
	holder := doctree.Element("div")
	for _, n := range c.Nodes {
		holder.AppendChild(doctree.Clone(n))
	}
	return doctree.TextContent(holder)
}

type countingRecorder struct {
	metrics.NoopRecorder
	mu         sync.Mutex
	blocks     map[string]int
	degraded   map[string]int
	transforms []string
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{blocks: map[string]int{}, degraded: map[string]int{}}
}

func (r *countingRecorder) IncBlocks(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blocks[name]++
}

func (r *countingRecorder) IncDegraded(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.degraded[name]++
}

func (r *countingRecorder) ObserveTransform(name string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transforms = append(r.transforms, name)
}

func attrKeys(n *html.Node) []string {
	keys := make([]string, 0, len(n.Attr))
	for _, a := range n.Attr {
		keys = append(keys, a.Key)
	}
	return keys
}
