// Package chi is the admin HTTP transport: resolved limits, typed config
// views, configuration validation, and the edge-case battery, plus health
// and Prometheus endpoints.
package chi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/querylab/retrievalcfg/internal/config"
	"github.com/querylab/retrievalcfg/internal/hardening"
	"github.com/querylab/retrievalcfg/internal/limits"
	"github.com/querylab/retrievalcfg/internal/metrics"
	"github.com/querylab/retrievalcfg/internal/version"
)

// Server exposes the configuration and limits resolvers over HTTP.
type Server struct {
	loader   *config.Loader
	resolver *limits.Resolver
	logger   *zap.Logger
	apiKeys  []string
}

// NewServer creates the admin API server. apiKeys may be empty (auth off).
func NewServer(loader *config.Loader, resolver *limits.Resolver, apiKeys []string, logger *zap.Logger) *Server {
	return &Server{
		loader:   loader,
		resolver: resolver,
		logger:   logger,
		apiKeys:  apiKeys,
	}
}

// Handler builds the router with middleware installed.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(BearerAuthMiddleware(s.apiKeys))
	r.Use(metrics.Middleware())

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/limits", s.handleLimits)
		r.Get("/config", s.handleConfig)
		r.Post("/validate", s.handleValidate)
		r.Get("/edge-cases", s.handleEdgeCases)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
	})
}

// handleLimits resolves pipeline limits for ?tag= and ?path=.
func (s *Server) handleLimits(w http.ResponseWriter, r *http.Request) {
	tag := r.URL.Query().Get("tag")
	path := r.URL.Query().Get("path")

	lim := s.resolver.Load(tag, path)
	writeJSON(w, http.StatusOK, lim)
}

// configView is the full resolved configuration surface.
type configView struct {
	Path       string                   `json:"path"`
	Empty      bool                     `json:"empty"`
	Candidates config.CandidateLimits   `json:"candidates"`
	Fusion     config.FusionSettings    `json:"fusion"`
	Prefilter  config.PrefilterSettings `json:"prefilter"`
	Rerank     config.RerankSettings    `json:"rerank"`
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	doc := s.loader.Load(path)

	writeJSON(w, http.StatusOK, configView{
		Path:       config.ResolvePath(path),
		Empty:      len(doc) == 0,
		Candidates: config.CandidateLimitsFrom(doc),
		Fusion:     config.FusionSettingsFrom(doc),
		Prefilter:  config.PrefilterSettingsFrom(doc),
		Rerank:     config.RerankSettingsFrom(doc),
	})
}

type validateRequest struct {
	Path string `json:"path"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}

	report := hardening.ValidatePipelineComponents(config.ResolvePath(req.Path))
	if !report.Valid {
		s.logger.Warn("Pipeline config validation failed",
			zap.Strings("errors", report.Errors),
			zap.String("load_error", report.Error),
		)
	}
	// Validity is part of the body, not the status code
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleEdgeCases(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, hardening.GenerateEdgeCases())
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Code: http.StatusText(status), Message: msg})
}
