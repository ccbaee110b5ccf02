// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package api is the HTTP surface of transcriptd.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ManuGH/transcriptd/internal/api/middleware"
	"github.com/ManuGH/transcriptd/internal/health"
	"github.com/ManuGH/transcriptd/internal/transcript"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// TranscriptService is the pipeline the handlers drive.
type TranscriptService interface {
	ResolveAndFormat(ctx context.Context, videoID string, opts transcript.Options) (*transcript.Result, error)
	ResolveAndFormatSingleLanguage(ctx context.Context, videoID, language string) (*transcript.Result, error)
	Bulk(ctx context.Context, urls []string, opts transcript.BulkOptions) (*transcript.BulkReport, error)
}

// Config holds the HTTP-facing settings.
type Config struct {
	AllowedOrigins []string
	Environment    string
	// ServeMetrics mounts /metrics on this router. Off when a dedicated
	// metrics listener is configured.
	ServeMetrics bool
	// TracingService names server spans; empty disables HTTP tracing.
	TracingService string

	BulkMaxItems    int
	BulkInterval    time.Duration
	BulkConcurrency int
}

// Server routes HTTP requests to the transcript pipeline.
type Server struct {
	svc    TranscriptService
	health *health.Manager
	cfg    Config
	router chi.Router
}

// New builds the server and its routes. A nil health manager serves
// unconditionally healthy probes.
func New(svc TranscriptService, hm *health.Manager, cfg Config) *Server {
	if hm == nil {
		hm = health.NewManager("")
	}
	s := &Server{svc: svc, health: hm, cfg: cfg}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := middleware.NewRouter(middleware.StackConfig{
		EnableCORS:     true,
		AllowedOrigins: s.cfg.AllowedOrigins,
		EnableMetrics:  true,
		TracingService: s.cfg.TracingService,
		EnableLogging:  true,
	})

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.health.ServeHealth)
	r.Get("/readyz", s.health.ServeReady)
	if s.cfg.ServeMetrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/transcript", s.handleTranscript)
		r.Post("/get_transcript", s.handleGetTranscript)
		r.Post("/bulk-transcripts", s.handleBulk)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found", Kind: string(transcript.KindNotFound)})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed", Kind: string(transcript.KindInvalidInput)})
	})
	return r
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	env := s.cfg.Environment
	if env == "" {
		env = "development"
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("transcriptd is running. Fetch transcripts via POST /api/transcript, /api/get_transcript or /api/bulk-transcripts. Environment: " + env))
}
