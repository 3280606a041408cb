package notify

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cuentame-ec/cuentame/internal/profiles"
	"github.com/cuentame-ec/cuentame/pkg/logging"
)

// Handler handles the reporter's notification endpoints.
type Handler struct {
	store  Store
	logger *logging.Logger
}

// NewHandler creates a new notifications handler
func NewHandler(store Store, logger *logging.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// ListResponse wraps a notification page.
type ListResponse struct {
	Notifications []*Notification `json:"notifications"`
	Count         int             `json:"count"`
}

// List handles GET /me/notifications?since=... requests.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	code, ok := profiles.ReporterCodeFromContext(r.Context())
	if !ok {
		http.Error(w, "missing reporter session", http.StatusUnauthorized)
		return
	}

	since := time.Time{}
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			http.Error(w, "invalid since cursor", http.StatusBadRequest)
			return
		}
		since = parsed
	}

	out, err := h.store.List(r.Context(), code, since)
	if err != nil {
		h.logger.Error("failed to list notifications", "error", err)
		http.Error(w, "failed to list notifications", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ListResponse{Notifications: out, Count: len(out)})
}

// MarkRead handles POST /me/notifications/{notificationID}/read.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	code, ok := profiles.ReporterCodeFromContext(r.Context())
	if !ok {
		http.Error(w, "missing reporter session", http.StatusUnauthorized)
		return
	}

	id := chi.URLParam(r, "notificationID")
	if err := h.store.MarkRead(r.Context(), code, id); err != nil {
		if errors.Is(err, ErrNotificationNotFound) {
			http.Error(w, "notification not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to mark notification read", "error", err)
		http.Error(w, "failed to mark notification read", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
