package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/docblocks/internal/config"
	"github.com/dgallion1/docblocks/internal/convert"
	"github.com/dgallion1/docblocks/internal/metrics"
	"github.com/dgallion1/docblocks/internal/pipeline"
	"github.com/dgallion1/docblocks/internal/source"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// Server is the HTTP API server for docblocks.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	converter    *convert.Converter
	source       source.ArticleSource
	latency      *metrics.LatencyStats
	registry     *prometheus.Registry
	log          *slog.Logger
	cfg          config.Config
}

// Deps are the collaborators of the server. Orchestrator, Source, Latency and
// Registry may be nil; the matching endpoints then answer 503 or are not mounted.
type Deps struct {
	Orchestrator *pipeline.Orchestrator
	Converter    *convert.Converter
	Source       source.ArticleSource
	Latency      *metrics.LatencyStats
	Registry     *prometheus.Registry
}

// NewServer creates and configures the HTTP server.
func NewServer(deps Deps, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: deps.Orchestrator,
		converter:    deps.Converter,
		source:       deps.Source,
		latency:      deps.Latency,
		registry:     deps.Registry,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	if s.registry != nil {
		r.Method(http.MethodGet, "/metrics", metrics.HTTPHandler(s.registry))
	}

	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/api/convert", s.handleConvert)
		r.Get("/api/articles/{lang}/*", s.handleArticle)
		r.Post("/api/import", s.handleImport)

		r.Post("/api/batch", s.handleBatch)
		r.Get("/api/batch/{jobID}/status", s.handleBatchStatus)

		r.Get("/api/stats/conversions", s.handleConversionStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
