package messaging

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cuentame-ec/cuentame/internal/cases"
	"github.com/cuentame-ec/cuentame/internal/observability/metrics"
	"github.com/cuentame-ec/cuentame/internal/profiles"
	"github.com/cuentame-ec/cuentame/pkg/logging"
)

// Handler handles HTTP requests for case message threads.
type Handler struct {
	store   *Store
	cases   cases.Repository
	metrics *metrics.ThreadMetrics
	logger  *logging.Logger
}

// NewHandler creates a new messaging handler. threadMetrics may be nil.
func NewHandler(store *Store, caseRepo cases.Repository, threadMetrics *metrics.ThreadMetrics, logger *logging.Logger) *Handler {
	return &Handler{store: store, cases: caseRepo, metrics: threadMetrics, logger: logger}
}

// PostRequest is the body for sending a message.
type PostRequest struct {
	Body string `json:"body"`
}

// ListResponse wraps a message page.
type ListResponse struct {
	Messages []*Message `json:"messages"`
	Count    int        `json:"count"`
}

// parseSince reads the ?since cursor. Zero time when absent.
func parseSince(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("since")
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, raw)
}

// StaffPostMessage handles POST /staff/cases/{caseID}/messages.
func (h *Handler) StaffPostMessage(w http.ResponseWriter, r *http.Request) {
	h.postMessage(w, r, SenderStaff, "")
}

// StaffListMessages handles GET /staff/cases/{caseID}/messages.
func (h *Handler) StaffListMessages(w http.ResponseWriter, r *http.Request) {
	h.listMessages(w, r, "")
}

// ReporterPostMessage handles POST /me/cases/{caseID}/messages. The
// case must belong to the caller's reporter code.
func (h *Handler) ReporterPostMessage(w http.ResponseWriter, r *http.Request) {
	code, ok := profiles.ReporterCodeFromContext(r.Context())
	if !ok {
		http.Error(w, "missing reporter session", http.StatusUnauthorized)
		return
	}
	h.postMessage(w, r, SenderReporter, code)
}

// ReporterListMessages handles GET /me/cases/{caseID}/messages.
func (h *Handler) ReporterListMessages(w http.ResponseWriter, r *http.Request) {
	code, ok := profiles.ReporterCodeFromContext(r.Context())
	if !ok {
		http.Error(w, "missing reporter session", http.StatusUnauthorized)
		return
	}
	h.listMessages(w, r, code)
}

// ReporterInbox handles GET /me/messages: new messages across all of
// the reporter's cases, for polling.
func (h *Handler) ReporterInbox(w http.ResponseWriter, r *http.Request) {
	code, ok := profiles.ReporterCodeFromContext(r.Context())
	if !ok {
		http.Error(w, "missing reporter session", http.StatusUnauthorized)
		return
	}
	since, err := parseSince(r)
	if err != nil {
		http.Error(w, "invalid since cursor", http.StatusBadRequest)
		return
	}

	start := time.Now()
	msgs, err := h.store.ListInbox(r.Context(), code, since)
	h.metrics.ObserveListLatency("inbox", time.Since(start).Seconds())
	if err != nil {
		h.metrics.ObservePoll("inbox", "error")
		h.logger.Error("failed to list inbox", "error", err)
		http.Error(w, "failed to list messages", http.StatusInternalServerError)
		return
	}
	h.metrics.ObservePoll("inbox", "ok")
	writeJSON(w, http.StatusOK, ListResponse{Messages: msgs, Count: len(msgs)})
}

// postMessage validates case ownership when ownerCode is set, then
// appends the message.
func (h *Handler) postMessage(w http.ResponseWriter, r *http.Request, sender, ownerCode string) {
	caseID := chi.URLParam(r, "caseID")

	var req PostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if !h.authorizeCase(w, r, caseID, ownerCode) {
		return
	}

	m, err := h.store.Insert(r.Context(), caseID, sender, req.Body)
	if err != nil {
		if errors.Is(err, ErrEmptyBody) {
			http.Error(w, "body is required", http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to insert message", "error", err, "case_id", caseID)
		http.Error(w, "failed to send message", http.StatusInternalServerError)
		return
	}
	h.metrics.ObserveMessage(sender)
	writeJSON(w, http.StatusCreated, m)
}

func (h *Handler) listMessages(w http.ResponseWriter, r *http.Request, ownerCode string) {
	caseID := chi.URLParam(r, "caseID")
	since, err := parseSince(r)
	if err != nil {
		http.Error(w, "invalid since cursor", http.StatusBadRequest)
		return
	}

	if !h.authorizeCase(w, r, caseID, ownerCode) {
		return
	}

	start := time.Now()
	msgs, err := h.store.ListByCase(r.Context(), caseID, since)
	h.metrics.ObserveListLatency("case", time.Since(start).Seconds())
	if err != nil {
		h.metrics.ObservePoll("case", "error")
		h.logger.Error("failed to list messages", "error", err, "case_id", caseID)
		http.Error(w, "failed to list messages", http.StatusInternalServerError)
		return
	}
	h.metrics.ObservePoll("case", "ok")
	writeJSON(w, http.StatusOK, ListResponse{Messages: msgs, Count: len(msgs)})
}

// authorizeCase confirms the case exists and, when ownerCode is set,
// that it belongs to that reporter. Writes the error response itself.
func (h *Handler) authorizeCase(w http.ResponseWriter, r *http.Request, caseID, ownerCode string) bool {
	c, err := h.cases.GetByID(r.Context(), caseID)
	if err != nil {
		if errors.Is(err, cases.ErrCaseNotFound) {
			http.Error(w, "case not found", http.StatusNotFound)
			return false
		}
		h.logger.Error("failed to load case", "error", err, "case_id", caseID)
		http.Error(w, "failed to load case", http.StatusInternalServerError)
		return false
	}
	if ownerCode != "" && c.ReporterCode != ownerCode {
		// Do not reveal the case's existence to other reporters.
		http.Error(w, "case not found", http.StatusNotFound)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
