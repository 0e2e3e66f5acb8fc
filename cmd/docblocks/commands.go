package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docblocks/internal/convert"
	"github.com/dgallion1/docblocks/internal/fragment"
	"github.com/dgallion1/docblocks/internal/frontmatter"
	"github.com/dgallion1/docblocks/internal/importer"
	"github.com/dgallion1/docblocks/internal/labels"
	"github.com/dgallion1/docblocks/internal/transform"
)

// Global is passed to every command.
type Global struct {
	Out io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Verbose bool `short:"v" help:"Enable verbose logging"`

	Convert  ConvertCmd  `cmd:"" help:"Convert one article file and print the page HTML"`
	Pipeline PipelineCmd `cmd:"" help:"Print the transform pipeline in execution order"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// ConvertCmd implements the 'convert' command.
type ConvertCmd struct {
	File        string `arg:"" type:"existingfile" help:"Article file (.md, .docx, .pdf, .html, .txt, .csv)"`
	Lang        string `short:"l" help:"Article language" default:"en"`
	PageType    string `short:"t" name:"page-type" help:"Article, DocLanding or SolutionLanding" default:"Article"`
	Path        string `short:"p" help:"Page path (defaults to the file name without extension)"`
	Data        string `short:"d" type:"existingfile" help:"JSON file holding the data record"`
	Out         string `short:"o" help:"Directory for image-budget fragments; without it pages stay whole"`
	Labels      string `help:"YAML labels file"`
	ImageBudget int    `name:"image-budget" help:"Images per page before fragmenting" default:"100"`
	Brand       string `help:"Solution name appended to article titles" env:"BRAND"`
	BrandPrefix string `name:"brand-prefix" help:"Prefix placed before the solution name" env:"BRAND_PREFIX"`
	SiteHost    string `name:"site-host" help:"Own host; links elsewhere open in a new tab" env:"SITE_HOST"`
	Original    bool   `help:"Print the untransformed page instead"`
	JSON        bool   `name:"json" help:"Print the full conversion result as JSON"`
}

// Run executes the convert command.
func (cmd *ConvertCmd) Run(g *Global) error {
	pageType, err := transform.ParsePageType(cmd.PageType)
	if err != nil {
		return err
	}
	in, err := cmd.input(pageType)
	if err != nil {
		return err
	}

	opts := convert.Options{
		ImageBudget: cmd.ImageBudget,
		Brand:       cmd.Brand,
		BrandPrefix: cmd.BrandPrefix,
		SiteHost:    cmd.SiteHost,
		Logger:      slog.Default(),
	}
	if cmd.Out != "" {
		opts.Fragments = fragment.DirWriter{Root: cmd.Out}
	}
	if cmd.Labels != "" {
		static, err := labels.LoadFile(cmd.Labels)
		if err != nil {
			return err
		}
		opts.Labels = static
	}

	conv, err := convert.New(opts)
	if err != nil {
		return err
	}
	out, err := conv.Convert(context.Background(), in)
	if err != nil {
		return fmt.Errorf("convert %s: %w", cmd.File, err)
	}
	for _, f := range out.Fragments {
		slog.Info("Fragment written", "path", f.Path, "images", f.Images)
	}

	switch {
	case cmd.JSON:
		enc := json.NewEncoder(g.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case cmd.Original:
		_, err = fmt.Fprintln(g.Out, out.OriginalHTML)
	default:
		_, err = fmt.Fprintln(g.Out, out.ConvertedHTML)
	}
	return err
}

func (cmd *ConvertCmd) input(pageType transform.PageType) (convert.Input, error) {
	imp, err := importer.ForFile(cmd.File)
	if err != nil {
		return convert.Input{}, err
	}
	f, err := os.Open(cmd.File)
	if err != nil {
		return convert.Input{}, err
	}
	defer f.Close()

	md, err := imp.Import(f, filepath.Base(cmd.File))
	if err != nil {
		return convert.Input{}, fmt.Errorf("import %s: %w", cmd.File, err)
	}
	front, body, err := frontmatter.Split(md)
	if err != nil {
		return convert.Input{}, fmt.Errorf("%s: %w", cmd.File, err)
	}

	var data map[string]any
	if cmd.Data != "" {
		raw, err := os.ReadFile(cmd.Data)
		if err != nil {
			return convert.Input{}, err
		}
		if err := json.Unmarshal(raw, &data); err != nil {
			return convert.Input{}, fmt.Errorf("data record %s: %w", cmd.Data, err)
		}
	}

	path := cmd.Path
	if path == "" {
		base := filepath.Base(cmd.File)
		path = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return convert.Input{
		Markdown:    body,
		FrontMatter: front,
		DataRecord:  data,
		Lang:        cmd.Lang,
		PageType:    pageType,
		PagePath:    path,
	}, nil
}

// PipelineCmd implements the 'pipeline' command.
type PipelineCmd struct {
	SiteHost string `name:"site-host" help:"Own host used by the external-links transform" env:"SITE_HOST"`
}

// Run executes the pipeline command.
func (cmd *PipelineCmd) Run(g *Global) error {
	p, err := transform.DefaultPipeline(transform.Options{SiteHost: cmd.SiteHost})
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}
	for i, t := range p.Transformers() {
		deps := t.Dependencies()
		line := fmt.Sprintf("%2d. %-10s %s", i+1, t.Stage(), t.Name())
		if len(deps.MustRunAfter) > 0 {
			line += " (after " + strings.Join(deps.MustRunAfter, ", ") + ")"
		}
		if _, err := fmt.Fprintln(g.Out, line); err != nil {
			return err
		}
	}
	return nil
}
