// Package transform runs the ordered structural passes that turn rendered
// Markdown into blocks.
package transform

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgallion1/docblocks/internal/doctree"
	"github.com/dgallion1/docblocks/internal/frontmatter"
	"github.com/dgallion1/docblocks/internal/labels"
	"github.com/dgallion1/docblocks/internal/metrics"
	"github.com/dgallion1/docblocks/internal/nested"
)

// Stage is a major phase of the pipeline. Stages run in StageOrder.
type Stage string

const (
	// StageNormalize cleans up authoring patterns before blocks are built.
	StageNormalize Stage = "normalize"
	// StageBlocks builds content blocks.
	StageBlocks Stage = "blocks"
	// StageDecorate adds page chrome derived from metadata.
	StageDecorate Stage = "decorate"
	// StageResolve flattens nested blocks and validates the result.
	StageResolve Stage = "resolve"
)

// StageOrder is the execution order of stages.
var StageOrder = []Stage{StageNormalize, StageBlocks, StageDecorate, StageResolve}

// StageIndex returns the position of stage in StageOrder, or -1.
func StageIndex(stage Stage) int {
	for i, s := range StageOrder {
		if s == stage {
			return i
		}
	}
	return -1
}

// Dependencies declares ordering constraints between transforms of a stage.
type Dependencies struct {
	MustRunAfter  []string
	MustRunBefore []string
}

// Transformer is one structural pass. It mutates tc.Doc in place and is a
// no-op when its pattern is absent.
type Transformer interface {
	Name() string
	Stage() Stage
	Dependencies() Dependencies
	Transform(ctx context.Context, tc *Context) error
}

type funcTransformer struct {
	name  string
	stage Stage
	deps  Dependencies
	fn    func(context.Context, *Context) error
}

func (f funcTransformer) Name() string               { return f.name }
func (f funcTransformer) Stage() Stage               { return f.stage }
func (f funcTransformer) Dependencies() Dependencies { return f.deps }
func (f funcTransformer) Transform(ctx context.Context, tc *Context) error {
	return f.fn(ctx, tc)
}

// New wraps fn as a Transformer.
func New(name string, stage Stage, deps Dependencies, fn func(context.Context, *Context) error) Transformer {
	return funcTransformer{name: name, stage: stage, deps: deps, fn: fn}
}

// PageType selects page-type specific decorations.
type PageType string

const (
	Article         PageType = "Article"
	DocLanding      PageType = "DocLanding"
	SolutionLanding PageType = "SolutionLanding"
)

// ParsePageType accepts the page type names case-insensitively. Empty means Article.
func ParsePageType(s string) (PageType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "article":
		return Article, nil
	case "doclanding", "doc-landing":
		return DocLanding, nil
	case "solutionlanding", "solution-landing":
		return SolutionLanding, nil
	}
	return "", fmt.Errorf("unknown page type %q", s)
}

// Context carries the state of one conversion through every transform.
type Context struct {
	Doc      *doctree.Document
	Front    frontmatter.Fields
	Data     map[string]any
	Lang     string
	PageType PageType
	PagePath string

	Labels   labels.Lookup
	Deferred *Deferred
	// Fragments numbers the inline fragments of this conversion.
	Fragments *nested.Counter

	Logger   *slog.Logger
	Recorder metrics.Recorder

	// Degraded lists the names of blocks rewritten as tables during validation.
	Degraded []string
}

// DataString returns a string value of the data record, or "".
func (tc *Context) DataString(key string) string {
	if s, ok := tc.Data[key].(string); ok {
		return s
	}
	return ""
}

// Label resolves a label. A missing label falls back to the code itself;
// any other lookup failure is returned.
func (tc *Context) Label(ctx context.Context, category, code string) (string, error) {
	if tc.Labels == nil {
		return code, nil
	}
	l, err := tc.Labels.LookupLabel(ctx, category, code, tc.Lang)
	if err != nil {
		if isNotFound(err) {
			tc.logger().Debug("label missing, using code", "category", category, "code", code)
			return code, nil
		}
		return "", fmt.Errorf("%w: %s/%s: %w", ErrLabelLookup, category, code, err)
	}
	return l, nil
}

func (tc *Context) logger() *slog.Logger {
	if tc.Logger == nil {
		return slog.Default()
	}
	return tc.Logger
}

func (tc *Context) recorder() metrics.Recorder {
	if tc.Recorder == nil {
		return metrics.NoopRecorder{}
	}
	return tc.Recorder
}
