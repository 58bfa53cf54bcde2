// Package http exposes the dashboard data over HTTP: JSON snapshots for
// the chart widgets, a CSV download, a server-rendered summary page, and
// the health/readiness/metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jdalain/teq-dashboard/internal/dashboard"
	"github.com/jdalain/teq-dashboard/internal/domain"
	"github.com/jdalain/teq-dashboard/internal/export"
)

const dateParamLayout = "2006-01-02"

// Renderer produces dashboard snapshots and reports readiness.
type Renderer interface {
	Render(ctx context.Context, p dashboard.Params) (dashboard.Snapshot, error)
	CheckReadiness(ctx context.Context) error
}

// Defaults are the filter values used when a query omits a parameter.
type Defaults struct {
	StartDate  time.Time
	Magnitudes domain.MagnitudeRange
}

// Server is the inbound HTTP adapter.
type Server struct {
	httpServer *http.Server
	renderer   Renderer
	defaults   Defaults
	clock      clockwork.Clock
	logger     *slog.Logger
}

// NewServer creates the dashboard HTTP server.
func NewServer(addr string, renderer Renderer, defaults Defaults, clock clockwork.Clock, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		renderer: renderer,
		defaults: defaults,
		clock:    clock,
		logger:   logger,
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/events", s.handleEvents)
	mux.HandleFunc("GET /api/export.csv", s.handleExport)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
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

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.renderSnapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.renderSnapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap.Events)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.renderSnapshot(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	if err := export.WriteCSV(w, snap.Events); err != nil {
		// Headers are already out; all that is left is logging.
		s.logger.Error("csv export failed", "error", err)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.renderSnapshot(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, newIndexView(snap)); err != nil {
		s.logger.Error("rendering index page failed", "error", err)
	}
}

// renderSnapshot parses the query parameters, renders, and writes the
// error response itself when something fails. Render errors are never
// swallowed: the client sees the reason and the status class.
func (s *Server) renderSnapshot(w http.ResponseWriter, r *http.Request) (dashboard.Snapshot, bool) {
	params, err := s.paramsFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return dashboard.Snapshot{}, false
	}

	snap, err := s.renderer.Render(r.Context(), params)
	if err != nil {
		s.logger.Error("dashboard render failed", "error", err)
		writeError(w, statusForError(err), err)
		return dashboard.Snapshot{}, false
	}
	return snap, true
}

// paramsFromQuery fills Params from the query string, falling back to the
// configured defaults. The default end date is today.
func (s *Server) paramsFromQuery(q url.Values) (dashboard.Params, error) {
	p := dashboard.Params{
		Dates: domain.DateRange{
			Start: s.defaults.StartDate,
			End:   s.clock.Now().UTC(),
		},
		Magnitudes: s.defaults.Magnitudes,
	}

	if v := q.Get("start"); v != "" {
		t, err := time.ParseInLocation(dateParamLayout, v, time.UTC)
		if err != nil {
			return dashboard.Params{}, fmt.Errorf("invalid start date %q: want YYYY-MM-DD", v)
		}
		p.Dates.Start = t
	}
	if v := q.Get("end"); v != "" {
		t, err := time.ParseInLocation(dateParamLayout, v, time.UTC)
		if err != nil {
			return dashboard.Params{}, fmt.Errorf("invalid end date %q: want YYYY-MM-DD", v)
		}
		p.Dates.End = t
	}
	if v := q.Get("min_mag"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return dashboard.Params{}, fmt.Errorf("invalid min_mag %q", v)
		}
		p.Magnitudes.Min = f
	}
	if v := q.Get("max_mag"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return dashboard.Params{}, fmt.Errorf("invalid max_mag %q", v)
		}
		p.Magnitudes.Max = f
	}

	if p.Dates.End.Before(p.Dates.Start) {
		return dashboard.Params{}, errors.New("end date precedes start date")
	}
	if p.Magnitudes.Max < p.Magnitudes.Min {
		return dashboard.Params{}, errors.New("max_mag is below min_mag")
	}
	return p, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.renderer.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// statusForError maps upstream failures to 502 and everything else to 500.
func statusForError(err error) int {
	var fetchErr *domain.FetchError
	var parseErr *domain.ParseError
	if errors.As(err, &fetchErr) || errors.As(err, &parseErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
