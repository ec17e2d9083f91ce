package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/statboard/internal/adapters/chart"
	"github.com/okian/statboard/internal/domain/analytics"
)

// Chart names served under /charts/.
var chartNames = map[string]struct{}{
	"teams":   {},
	"compare": {},
}

// ViewDependencies defines the interface for dashboard reads.
type ViewDependencies interface {
	Controls(ctx context.Context, sessionID string) (analytics.Controls, error)
	Views(ctx context.Context, sessionID string, q analytics.Query) (analytics.Views, error)
	Chart(ctx context.Context, sessionID, name string, q analytics.Query, format chart.Format) ([]byte, error)
}

// ViewsHandler serves controls, views and rendered charts.
type ViewsHandler struct {
	deps ViewDependencies
}

// NewViewsHandler creates a new views handler.
func NewViewsHandler(deps ViewDependencies) *ViewsHandler {
	return &ViewsHandler{deps: deps}
}

// HandleGetControls handles GET /controls requests.
func (h *ViewsHandler) HandleGetControls(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_controls"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id, err := sessionID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	controls, err := h.deps.Controls(r.Context(), id)
	if err != nil {
		writeServiceError(w, http.StatusServiceUnavailable, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, controls)
}

// HandleGetViews handles GET /views?teams=&metric=&min_points=&players= requests.
func (h *ViewsHandler) HandleGetViews(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_views"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id, q, err := sessionAndQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	views, err := h.deps.Views(r.Context(), id, q)
	if err != nil {
		writeServiceError(w, http.StatusServiceUnavailable, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// HandleGetChart handles GET /charts/{teams,compare}?format=png|svg requests.
func (h *ViewsHandler) HandleGetChart(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_chart"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/charts/")
	if _, ok := chartNames[name]; !ok {
		writeError(w, http.StatusNotFound, "not_found", NewKind(op, errors.New("unknown chart "+name)))
		return
	}
	format, err := chart.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	id, q, err := sessionAndQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	img, err := h.deps.Chart(r.Context(), id, name, q, format)
	if errors.Is(err, chart.ErrEmptyChart) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		writeServiceError(w, http.StatusServiceUnavailable, Wrap(op, err))
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}

func sessionAndQuery(r *http.Request) (string, analytics.Query, error) {
	id, err := sessionID(r)
	if err != nil {
		return "", analytics.Query{}, err
	}
	q, err := parseQuery(r)
	if err != nil {
		return "", analytics.Query{}, err
	}
	return id, q, nil
}
