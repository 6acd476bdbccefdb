package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/forecast-enrichment-service/internal/domain"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// LatestProvider serves the most recent enriched dataset.
type LatestProvider interface {
	Latest() (domain.ForecastDataset, bool)
}

// Server exposes the forecast API plus health, readiness, and metrics
// endpoints.
type Server struct {
	httpServer *http.Server
	provider   LatestProvider
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /forecast, /forecast/summary,
// /healthz, /readyz, and /metrics routes.
func NewServer(addr string, ready ReadinessChecker, provider LatestProvider, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		provider: provider,
		logger:   logger,
	}

	mux.HandleFunc("GET /forecast", s.handleForecast)
	mux.HandleFunc("GET /forecast/summary", s.handleSummary)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleForecast(w http.ResponseWriter, _ *http.Request) {
	ds, ok := s.provider.Latest()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "no forecast available yet",
		})
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	ds, ok := s.provider.Latest()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "no forecast available yet",
		})
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		City:        ds.City,
		Source:      ds.Source,
		RetrievedAt: ds.RetrievedAt,
		Summary:     domain.ComputeSummary(ds),
	})
}

// summaryResponse wraps the dataset summary with its provenance.
type summaryResponse struct {
	City        string            `json:"city"`
	Source      domain.SourceMode `json:"source"`
	RetrievedAt time.Time         `json:"retrieved_at"`
	Summary     domain.Summary    `json:"summary"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
