// Package http exposes the service's HTTP surface: health, readiness,
// Prometheus metrics, and the read-only rainfall query API backed by the
// pipeline's latest table snapshot.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wxlabsg/rainfall-insights/internal/analytics"
	"github.com/wxlabsg/rainfall-insights/internal/domain"
)

const defaultRankSize = 10

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// TableSource provides the latest canonical table snapshot.
type TableSource interface {
	Latest() domain.Table
}

// Server exposes health, readiness, metrics, and the v1 query API.
type Server struct {
	httpServer *http.Server
	source     TableSource
	logger     *slog.Logger
}

// NewServer creates an HTTP server with health and query routes.
func NewServer(addr string, ready ReadinessChecker, source TableSource, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		source: source,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/summary", s.handleSummary)
	mux.HandleFunc("GET /v1/rankings/top", s.handleTopRankings)
	mux.HandleFunc("GET /v1/rankings/bottom", s.handleBottomRankings)
	mux.HandleFunc("GET /v1/hourly", s.handleHourly)
	mux.HandleFunc("GET /v1/alerts", s.handleAlerts)

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

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, analytics.Summarize(s.source.Latest()))
}

func (s *Server) handleTopRankings(w http.ResponseWriter, r *http.Request) {
	n, err := parseN(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	opts := analytics.RankOptions{GroupNearby: r.URL.Query().Get("group_nearby") == "true"}
	ranks := analytics.TopAreas(s.source.Latest(), n, opts)
	writeJSON(w, http.StatusOK, rankingsResponse{Rankings: coalesce(ranks)})
}

func (s *Server) handleBottomRankings(w http.ResponseWriter, r *http.Request) {
	n, err := parseN(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ranks := analytics.BottomAreas(s.source.Latest(), n)
	writeJSON(w, http.StatusOK, rankingsResponse{Rankings: coalesce(ranks)})
}

func (s *Server) handleHourly(w http.ResponseWriter, _ *http.Request) {
	stats := analytics.HourlyDistribution(s.source.Latest())
	writeJSON(w, http.StatusOK, hourlyResponse{Hours: coalesce(stats)})
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	multiplier := 0.0
	if raw := r.URL.Query().Get("multiplier"); raw != "" {
		m, err := strconv.ParseFloat(raw, 64)
		if err != nil || m <= 0 {
			writeError(w, http.StatusBadRequest, "multiplier must be a positive number")
			return
		}
		multiplier = m
	}
	alerts, threshold := analytics.AlertAreas(s.source.Latest(), multiplier)
	writeJSON(w, http.StatusOK, alertsResponse{
		Threshold: threshold,
		Alerts:    coalesce(alerts),
	})
}

type rankingsResponse struct {
	Rankings []analytics.AreaRank `json:"rankings"`
}

type hourlyResponse struct {
	Hours []analytics.HourlyStat `json:"hours"`
}

type alertsResponse struct {
	Threshold float64               `json:"threshold"`
	Alerts    []analytics.AlertArea `json:"alerts"`
}

func parseN(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("n")
	if raw == "" {
		return defaultRankSize, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.New("n must be a non-negative integer")
	}
	return n, nil
}

// coalesce maps a nil slice to an empty one so the JSON field is [] rather
// than null when there is no data.
func coalesce[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
