// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/statboard/internal/adapters/chart"
	"github.com/okian/statboard/internal/adapters/repository"
	"github.com/okian/statboard/internal/domain/analytics"
	"github.com/okian/statboard/internal/domain/model"
)

// Request parameters shared by handlers.
const (
	SessionHeader = "X-Session-ID"
	sessionParam  = "session"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	NewSession(ctx context.Context) (string, error)
	Upload(ctx context.Context, sessionID, name string, content []byte) (model.Dataset, error)
	Controls(ctx context.Context, sessionID string) (analytics.Controls, error)
	Views(ctx context.Context, sessionID string, q analytics.Query) (analytics.Views, error)
	Chart(ctx context.Context, sessionID, name string, q analytics.Query, format chart.Format) ([]byte, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	sessionsHandler  *SessionsHandler
	datasetsHandler  *DatasetsHandler
	viewsHandler     *ViewsHandler
	dashboardHandler *dashboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	cfg := serverConfig{maxUploadBytes: defaultMaxUploadBytes}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		sessionsHandler:  NewSessionsHandler(deps),
		datasetsHandler:  NewDatasetsHandler(deps, cfg.maxUploadBytes),
		viewsHandler:     NewViewsHandler(deps),
		dashboardHandler: newDashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/sessions", MetricsMiddleware(s.sessionsHandler.HandleCreateSession, "sessions"))
	mux.HandleFunc("/datasets", MetricsMiddleware(s.datasetsHandler.HandleUpload, "datasets"))
	mux.HandleFunc("/controls", MetricsMiddleware(s.viewsHandler.HandleGetControls, "controls"))
	mux.HandleFunc("/views", MetricsMiddleware(s.viewsHandler.HandleGetViews, "views"))
	mux.HandleFunc("/charts/", MetricsMiddleware(s.viewsHandler.HandleGetChart, "charts"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps a dependency error onto the error envelope.
// unavailable is the status used when the dataset cannot be loaded.
func writeServiceError(w http.ResponseWriter, unavailable int, err error) {
	switch {
	case errors.Is(err, repository.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, ErrPayloadTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", err)
	case errors.Is(err, ErrBadRequest), errors.Is(err, model.ErrUnknownMetric), errors.Is(err, analytics.ErrInvalidThreshold),
		errors.Is(err, chart.ErrUnsupportedFormat):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, analytics.ErrDataUnavailable):
		writeError(w, unavailable, "data_unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// sessionID reads the session from the header, then the query string.
func sessionID(r *http.Request) (string, error) {
	if id := strings.TrimSpace(r.Header.Get(SessionHeader)); id != "" {
		return id, nil
	}
	if id := strings.TrimSpace(r.URL.Query().Get(sessionParam)); id != "" {
		return id, nil
	}
	return "", ErrMissingSession
}

// parseQuery reads the dashboard filters from the query string. A present
// but empty teams parameter selects no teams; an absent one selects all.
func parseQuery(r *http.Request) (analytics.Query, error) {
	values := r.URL.Query()
	q := analytics.Query{Metric: values.Get("metric")}
	if _, ok := values["teams"]; ok {
		q.Teams = splitList(values.Get("teams"))
	}
	if _, ok := values["players"]; ok {
		q.Players = splitList(values.Get("players"))
	}
	if raw := strings.TrimSpace(values.Get("min_points")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return analytics.Query{}, errors.New("min_points must be a number")
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return analytics.Query{}, fmt.Errorf("%w: min_points=%s", analytics.ErrInvalidThreshold, raw)
		}
		q.MinPoints = &v
	}
	return q, nil
}

// splitList splits a comma list, dropping blanks. The result is never nil.
func splitList(raw string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
