package transform

import (
	"context"

	"github.com/dgallion1/docblocks/internal/block"
	"github.com/dgallion1/docblocks/internal/doctree"
	"github.com/dgallion1/docblocks/internal/nested"
)

// NestedBlocks moves nested blocks into inline-fragment sections.
func NestedBlocks() Transformer {
	return New("nested-blocks", StageResolve, Dependencies{}, func(ctx context.Context, tc *Context) error {
		if tc.Fragments == nil {
			tc.Fragments = &nested.Counter{}
		}
		res := nested.Resolve(tc.Doc, tc.Fragments)
		if len(res.Hoisted) > 0 || res.Tabled > 0 {
			tc.logger().Debug("nested blocks resolved", "hoisted", len(res.Hoisted), "tabled", res.Tabled)
		}
		return nil
	})
}

// BlockValidation degrades every block that breaks the div encoding to a
// plain table and counts the blocks that pass.
func BlockValidation() Transformer {
	deps := Dependencies{MustRunAfter: []string{"nested-blocks"}}
	return New("block-validation", StageResolve, deps, func(ctx context.Context, tc *Context) error {
		rec := tc.recorder()
		for _, n := range doctree.FindAll(tc.Doc.Body, block.IsBlock) {
			name := block.Name(n)
			if block.IsValid(n) {
				rec.IncBlocks(name)
				continue
			}
			block.Degrade(n)
			tc.Degraded = append(tc.Degraded, name)
			rec.IncDegraded(name)
			tc.logger().Warn("block degraded to table", "block", name, "page_path", tc.PagePath)
		}
		return nil
	})
}
