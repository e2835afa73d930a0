package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"qrmenu/analytics-svc/internal/domain"
	"qrmenu/analytics-svc/internal/service"
	"qrmenu/pkg/auth"
	"qrmenu/schema"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Handler struct {
	Analytics service.AnalyticsInterface

	log    *zap.SugaredLogger
	secret []byte
}

func NewHandler(svc service.AnalyticsInterface, log *zap.SugaredLogger, secret []byte) *Handler {
	return &Handler{Analytics: svc, log: log, secret: secret}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")

	owner := auth.RequireOwner(h.secret)
	r.Handle("/api/restaurants/{id}/analytics/top-items", owner(http.HandlerFunc(h.getTopItems))).Methods("GET")
	r.Handle("/api/restaurants/{id}/analytics/status-summary", owner(http.HandlerFunc(h.getStatusSummary))).Methods("GET")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrUnknownPeriod), errors.Is(err, service.ErrInvalidLimit):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, schema.ErrSchemaMissing):
		h.log.Errorw("schema mismatch", "method", r.Method, "path", r.URL.Path, "error", err)
		http.Error(w, "service unavailable: database schema is out of date", http.StatusServiceUnavailable)
	default:
		h.log.Errorw("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"service":   "analytics-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) getTopItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	period, err := domain.ParsePeriod(q.Get("period"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit == 0 {
			h.writeError(w, r, service.ErrInvalidLimit)
			return
		}
	}
	top, err := h.Analytics.TopItems(r.Context(), mux.Vars(r)["id"], period, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, top)
}

func (h *Handler) getStatusSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Analytics.StatusSummary(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
