// Package convert turns one article into block HTML: Markdown rendering,
// the transform pipeline, sections, image-budget fragments and head metadata.
package convert

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/docblocks/internal/doctree"
	"github.com/dgallion1/docblocks/internal/fragment"
	"github.com/dgallion1/docblocks/internal/frontmatter"
	"github.com/dgallion1/docblocks/internal/labels"
	"github.com/dgallion1/docblocks/internal/markdown"
	"github.com/dgallion1/docblocks/internal/metadata"
	"github.com/dgallion1/docblocks/internal/metrics"
	"github.com/dgallion1/docblocks/internal/nested"
	"github.com/dgallion1/docblocks/internal/section"
	"github.com/dgallion1/docblocks/internal/source"
	"github.com/dgallion1/docblocks/internal/transform"
)

// Input is one article to convert.
type Input struct {
	Markdown    string             `json:"markdown"`
	FrontMatter string             `json:"front_matter,omitempty"`
	DataRecord  map[string]any     `json:"data,omitempty"`
	Lang        string             `json:"lang"`
	PageType    transform.PageType `json:"page_type,omitempty"`
	PagePath    string             `json:"page_path"`
}

// FromArticle builds the Input for an article fetched from a source.
func FromArticle(a *source.Article, lang, pagePath string, pageType transform.PageType) Input {
	return Input{
		Markdown:    a.Markdown,
		FrontMatter: a.FrontMatter,
		DataRecord:  a.DataRecord,
		Lang:        lang,
		PageType:    pageType,
		PagePath:    pagePath,
	}
}

// Output is the result of a conversion.
type Output struct {
	ConvertedHTML string             `json:"converted_html"`
	OriginalHTML  string             `json:"original_html"`
	Fragments     []fragment.Written `json:"fragments,omitempty"`
	Degraded      []string           `json:"degraded,omitempty"`
}

// Options configure a Converter. Zero values are usable: no labels, no
// fragment writer (over-budget pages stay whole), default budget.
type Options struct {
	Labels      labels.Lookup
	Fragments   fragment.Writer
	ImageBudget int
	BrandPrefix string
	Brand       string
	SiteHost    string
	MaxDeferred int
	Logger      *slog.Logger
	Recorder    metrics.Recorder
	Latency     *metrics.LatencyStats
}

// Converter converts articles. It is safe for concurrent use; every call
// gets its own tree, transform context and fragment counter.
type Converter struct {
	opts     Options
	md       *markdown.Renderer
	pipeline *transform.Pipeline
	log      *slog.Logger
	rec      metrics.Recorder
}

// New returns a Converter running the default transform pipeline.
func New(opts Options) (*Converter, error) {
	p, err := transform.DefaultPipeline(transform.Options{SiteHost: opts.SiteHost})
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	rec := opts.Recorder
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Converter{opts: opts, md: markdown.New(), pipeline: p, log: log, rec: rec}, nil
}

// Pipeline returns the transform pipeline in execution order.
func (c *Converter) Pipeline() *transform.Pipeline {
	return c.pipeline
}

// Convert runs one conversion. Any error leaves no partial output; fragments
// already written before a failed fragment write stay in the store.
func (c *Converter) Convert(ctx context.Context, in Input) (*Output, error) {
	start := time.Now()
	if in.PageType == "" {
		in.PageType = transform.Article
	}
	in.PagePath = source.NormalizePath(in.PagePath)
	log := c.log.With("page_path", in.PagePath, "lang", in.Lang)

	out, err := c.convert(ctx, in, log)
	elapsed := time.Since(start)
	if err != nil {
		c.rec.ObserveConversion(string(in.PageType), elapsed, metrics.OutcomeFailed)
		log.Error("conversion failed", "error", err, "duration", elapsed)
		return nil, err
	}
	c.rec.ObserveConversion(string(in.PageType), elapsed, metrics.OutcomeSuccess)
	if c.opts.Latency != nil {
		c.opts.Latency.Record(elapsed)
	}
	log.Info("converted page",
		"page_type", in.PageType,
		"fragments", len(out.Fragments),
		"degraded", len(out.Degraded),
		"duration", elapsed,
	)
	return out, nil
}

func (c *Converter) convert(ctx context.Context, in Input, log *slog.Logger) (*Output, error) {
	front, err := frontmatter.Parse(in.FrontMatter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFrontMatter, err)
	}

	rendered, err := c.md.Render(ctx, in.Markdown)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMarkdown, err)
	}

	doc, err := doctree.Build(rendered)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSkeleton, err)
	}
	original, err := doc.Render()
	if err != nil {
		return nil, fmt.Errorf("%w: render original: %w", ErrSkeleton, err)
	}

	tc := &transform.Context{
		Doc:       doc,
		Front:     front,
		Data:      in.DataRecord,
		Lang:      in.Lang,
		PageType:  in.PageType,
		PagePath:  in.PagePath,
		Labels:    c.opts.Labels,
		Deferred:  transform.NewDeferred(ctx, c.opts.MaxDeferred),
		Fragments: &nested.Counter{},
		Logger:    log,
		Recorder:  c.rec,
	}
	if err := c.pipeline.Run(ctx, tc); err != nil {
		// Let running decorations finish before returning.
		_ = tc.Deferred.Wait()
		return nil, err
	}
	if err := tc.Deferred.Wait(); err != nil {
		return nil, fmt.Errorf("deferred decorations: %w", err)
	}

	section.Partition(doc)

	var written []fragment.Written
	if c.opts.Fragments != nil {
		f := fragment.Fragmenter{Writer: c.opts.Fragments, Budget: c.opts.ImageBudget, Logger: log}
		written, err = f.Apply(ctx, doc, in.PagePath)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFragmentWrite, err)
		}
		c.rec.AddFragments(len(written))
	} else if n := doctree.CountImages(doc.Main); n > budgetOf(c.opts.ImageBudget) {
		log.Warn("page over image budget without fragment writer", "images", n)
	}

	metadata.Inject(doc, front, in.DataRecord, metadata.Options{
		BrandPrefix: c.opts.BrandPrefix,
		Brand:       c.opts.Brand,
		Article:     in.PageType == transform.Article,
	})

	converted, err := doc.Render()
	if err != nil {
		return nil, fmt.Errorf("%w: render page: %w", ErrSkeleton, err)
	}
	return &Output{
		ConvertedHTML: converted,
		OriginalHTML:  original,
		Fragments:     written,
		Degraded:      tc.Degraded,
	}, nil
}

func budgetOf(b int) int {
	if b <= 0 {
		return fragment.DefaultBudget
	}
	return b
}
