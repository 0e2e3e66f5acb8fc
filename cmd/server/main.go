package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dgallion1/docblocks/internal/api"
	"github.com/dgallion1/docblocks/internal/config"
	"github.com/dgallion1/docblocks/internal/convert"
	"github.com/dgallion1/docblocks/internal/fragment"
	"github.com/dgallion1/docblocks/internal/kvstore"
	"github.com/dgallion1/docblocks/internal/labels"
	"github.com/dgallion1/docblocks/internal/metrics"
	"github.com/dgallion1/docblocks/internal/pipeline"
	"github.com/dgallion1/docblocks/internal/source"
)

func main() {
	if err := config.LoadEnvFile(os.Getenv("ENV_FILE")); err != nil {
		slog.Error("load env file", "error", err)
		os.Exit(1)
	}
	cfg := config.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Collaborators: the store when configured, local files otherwise.
	var (
		src    source.ArticleSource
		out    fragment.Writer
		lookup labels.Lookup
		store  *kvstore.Client
	)
	if cfg.StoreURL != "" {
		store = kvstore.NewClient(cfg.StoreURL, cfg.StoreAPIKey)
		defer store.Close()
		src, out, lookup = store, store, store
	} else {
		src = source.Dir{Root: cfg.SourceDir}
		out = fragment.DirWriter{Root: cfg.OutputDir}
		lookup = labels.NewStatic()
	}
	if cfg.LabelsFile != "" {
		static, err := labels.LoadFile(cfg.LabelsFile)
		if err != nil {
			log.Error("load labels", "path", cfg.LabelsFile, "error", err)
			os.Exit(1)
		}
		lookup = static
	}

	reg := prometheus.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)
	latency := metrics.NewLatencyStats(time.Hour)

	conv, err := convert.New(convert.Options{
		Labels:      lookup,
		Fragments:   out,
		ImageBudget: cfg.ImageBudget,
		BrandPrefix: cfg.BrandPrefix,
		Brand:       cfg.Brand,
		SiteHost:    cfg.SiteHost,
		MaxDeferred: cfg.MaxDeferred,
		Logger:      log,
		Recorder:    rec,
		Latency:     latency,
	})
	if err != nil {
		log.Error("build converter", "error", err)
		os.Exit(1)
	}

	orch := pipeline.NewOrchestrator(cfg, src, conv, out, rec, log)
	orch.Start(ctx)

	srv := api.NewServer(api.Deps{
		Orchestrator: orch,
		Converter:    conv,
		Source:       src,
		Latency:      latency,
		Registry:     reg,
	}, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting docblocks",
		"port", cfg.Port,
		"store", cfg.StoreURL != "",
		"source_dir", cfg.SourceDir,
		"pipeline", conv.Pipeline().Names(),
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
