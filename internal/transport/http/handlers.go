// Package http serves finished pipeline results: JSON endpoints for the
// analysis outputs plus static access to the charts and CSVs.
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bowutt26/dsci510-fall2025-final-project/internal/config"
	apierrors "github.com/bowutt26/dsci510-fall2025-final-project/internal/errors"
	"github.com/bowutt26/dsci510-fall2025-final-project/internal/pipeline"
)

// Handler serves the report API
type Handler struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewHandler creates a report handler
func NewHandler(paths *config.Paths, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{paths: paths, logger: logger}
}

// NewRouter builds the report server router
func NewRouter(paths *config.Paths, metrics *Metrics, logger *slog.Logger) chi.Router {
	if logger == nil {
		logger = slog.Default()
	}
	h := NewHandler(paths, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Get("/api/health", h.Health)
	r.Get("/api/manifest", h.Manifest)
	r.Get("/api/results/correlations", h.Correlations)
	r.Get("/api/results/mixed-effects", h.MixedEffects)

	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))

	// Charts, CSVs and the workbook are served straight from the results dir
	fileServer := http.StripPrefix("/results/", http.FileServer(http.Dir(paths.ResultsDir)))
	r.Get("/results/*", fileServer.ServeHTTP)

	return r
}

// Health reports server liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Manifest serves the latest run manifest
func (h *Handler) Manifest(w http.ResponseWriter, r *http.Request) {
	manifest, err := pipeline.ReadManifest(h.paths.RunManifest)
	if err != nil {
		_ = render.Render(w, r, apierrors.ResultsPendingError(err))
		return
	}
	render.JSON(w, r, manifest)
}

// Correlations serves the correlation results of the latest run
func (h *Handler) Correlations(w http.ResponseWriter, r *http.Request) {
	h.serveResultJSON(w, r, h.paths.CorrelationsJSON)
}

// MixedEffects serves the mixed-effects results of the latest run
func (h *Handler) MixedEffects(w http.ResponseWriter, r *http.Request) {
	h.serveResultJSON(w, r, h.paths.MixedEffectsJSON)
}

// serveResultJSON relays a result JSON file produced by the pipeline
func (h *Handler) serveResultJSON(w http.ResponseWriter, r *http.Request, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		_ = render.Render(w, r, apierrors.ResultsPendingError(err))
		return
	}

	var payload interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		h.logger.Error("corrupt result file", "path", path, "error", err)
		_ = render.Render(w, r, apierrors.InternalError(err))
		return
	}
	render.JSON(w, r, payload)
}

// requestLogger logs each request through slog
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Info("request served",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("elapsed", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
