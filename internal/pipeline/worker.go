package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgallion1/docblocks/internal/convert"
	"github.com/dgallion1/docblocks/internal/fragment"
	"github.com/dgallion1/docblocks/internal/metrics"
	"github.com/dgallion1/docblocks/internal/source"
)

// PagePath returns the storage path of a converted page.
func PagePath(pagePath string) string {
	p := strings.Trim(pagePath, "/")
	if p == "" {
		p = "index"
	}
	return "/pages/" + p + ".html"
}

// Worker converts the pages of a job one after another.
type Worker struct {
	source    source.ArticleSource
	converter *convert.Converter
	out       fragment.Writer
	rec       metrics.Recorder
	log       *slog.Logger
}

func NewWorker(src source.ArticleSource, conv *convert.Converter, out fragment.Writer, rec metrics.Recorder, log *slog.Logger) *Worker {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Worker{source: src, converter: conv, out: out, rec: rec, log: log}
}

// Process converts every page of job and records the outcome.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "lang", job.Lang)
	job.SetStatus(StatusConverting, "converting")

	for _, path := range job.Paths {
		if ctx.Err() != nil {
			job.AddError(fmt.Sprintf("%s: %s", path, ctx.Err()))
			continue
		}
		page, err := w.convertPage(ctx, log, job, path)
		if err != nil {
			log.Error("page failed", "page_path", path, "error", err)
			job.AddError(fmt.Sprintf("%s: %s", path, err))
			continue
		}
		job.AddPage(page)
	}

	snap := job.Snapshot()
	switch {
	case snap.Progress.PagesFailed == 0:
		job.SetStatus(StatusCompleted, "done")
	case snap.Progress.PagesConverted > 0:
		job.SetStatus(StatusPartial, "done")
	default:
		job.SetStatus(StatusFailed, "converting")
	}
	final := job.Snapshot()
	w.rec.IncJobOutcome(string(final.Status))
	log.Info("job finished", "status", final.Status, "converted", final.Progress.PagesConverted, "failed", final.Progress.PagesFailed)
}

func (w *Worker) convertPage(ctx context.Context, log *slog.Logger, job *Job, path string) (Page, error) {
	var article *source.Article
	err := withRetry(ctx, log, "get article", func() error {
		var err error
		article, err = w.source.GetArticle(ctx, job.Lang, path)
		return err
	})
	if err != nil {
		if errors.Is(err, source.ErrNotFound) {
			w.rec.ObserveConversion(string(job.PageType), 0, metrics.OutcomeNotFound)
		}
		return Page{}, fmt.Errorf("get article: %w", err)
	}

	var out *convert.Output
	err = withRetry(ctx, log, "convert", func() error {
		var err error
		out, err = w.converter.Convert(ctx, convert.FromArticle(article, job.Lang, path, job.PageType))
		return err
	})
	if err != nil {
		return Page{}, err
	}

	target := PagePath(path)
	var url string
	err = withRetry(ctx, log, "write page", func() error {
		var err error
		url, err = w.out.WriteFragment(ctx, target, []byte(out.ConvertedHTML))
		return err
	})
	if err != nil {
		return Page{}, fmt.Errorf("write %s: %w", target, err)
	}
	return Page{
		PagePath:    source.NormalizePath(path),
		URL:         url,
		ContentHash: ContentHashHex([]byte(out.ConvertedHTML)),
		Fragments:   len(out.Fragments),
	}, nil
}
