package cases

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cuentame-ec/cuentame/internal/profiles"
	"github.com/cuentame-ec/cuentame/internal/protocol"
	"github.com/cuentame-ec/cuentame/pkg/logging"
)

// Handler handles HTTP requests for case management
type Handler struct {
	repo      Repository
	lifecycle *Lifecycle
	logger    *logging.Logger
}

// NewHandler creates a new cases handler
func NewHandler(repo Repository, lifecycle *Lifecycle, logger *logging.Logger) *Handler {
	return &Handler{
		repo:      repo,
		lifecycle: lifecycle,
		logger:    logger,
	}
}

// ListCasesResponse is the response for listing cases
type ListCasesResponse struct {
	Cases  []*Case `json:"cases"`
	Count  int     `json:"count"`
	Offset int     `json:"offset"`
	Limit  int     `json:"limit"`
}

// ListCases handles GET /staff/cases requests
func (h *Handler) ListCases(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		Limit:  50,
		Offset: 0,
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && limit <= 200 {
			filter.Limit = limit
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filter.Offset = offset
		}
	}
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		status, err := ParseStatus(statusStr)
		if err != nil {
			http.Error(w, "invalid status filter", http.StatusBadRequest)
			return
		}
		filter.Status = status
	}
	if riskStr := r.URL.Query().Get("risk"); riskStr != "" {
		risk, err := protocol.ParseRiskStrict(riskStr)
		if err != nil {
			http.Error(w, "invalid risk filter", http.StatusBadRequest)
			return
		}
		filter.Risk = risk
	}
	if typology := r.URL.Query().Get("typology"); typology != "" {
		filter.Typology = typology
	}

	out, err := h.repo.ListAll(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list cases", "error", err)
		http.Error(w, "failed to list cases", http.StatusInternalServerError)
		return
	}

	response := ListCasesResponse{
		Cases:  out,
		Count:  len(out),
		Offset: filter.Offset,
		Limit:  filter.Limit,
	}
	writeJSON(w, http.StatusOK, response)
}

// GetCase handles GET /staff/cases/{caseID} requests
func (h *Handler) GetCase(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "caseID")
	c, err := h.repo.GetByID(r.Context(), caseID)
	if err != nil {
		if errors.Is(err, ErrCaseNotFound) {
			http.Error(w, "case not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to get case", "error", err, "case_id", caseID)
		http.Error(w, "failed to get case", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// AddInterventionRequest is the body for logging a staff action.
type AddInterventionRequest struct {
	ActionTaken string `json:"action_taken"`
	Responsible string `json:"responsible"`
	Outcome     string `json:"outcome"`
	NewStatus   string `json:"new_status"`
}

// AddIntervention handles POST /staff/cases/{caseID}/interventions.
func (h *Handler) AddIntervention(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "caseID")

	var req AddInterventionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	newStatus := StatusInProgress
	if req.NewStatus != "" {
		parsed, err := ParseStatus(req.NewStatus)
		if err != nil {
			http.Error(w, "invalid new_status", http.StatusBadRequest)
			return
		}
		newStatus = parsed
	}

	c, err := h.lifecycle.AddIntervention(r.Context(), caseID, Intervention{
		ActionTaken: req.ActionTaken,
		Responsible: req.Responsible,
		Outcome:     req.Outcome,
	}, newStatus)
	if err != nil {
		switch {
		case errors.Is(err, ErrCaseNotFound):
			http.Error(w, "case not found", http.StatusNotFound)
		case errors.Is(err, ErrInvalidIntervention):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			h.logger.Error("failed to add intervention", "error", err, "case_id", caseID)
			http.Error(w, "failed to add intervention", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// UpdateStatusRequest is the body for a bare status transition.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /staff/cases/{caseID}/status.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "caseID")

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	status, err := ParseStatus(req.Status)
	if err != nil {
		http.Error(w, "invalid status", http.StatusBadRequest)
		return
	}

	c, err := h.lifecycle.UpdateStatus(r.Context(), caseID, status)
	if err != nil {
		if errors.Is(err, ErrCaseNotFound) {
			http.Error(w, "case not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to update status", "error", err, "case_id", caseID)
		http.Error(w, "failed to update status", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CloseCaseRequest is the body for closing a case with a final report.
type CloseCaseRequest struct {
	FinalReport string `json:"final_report"`
	Responsible string `json:"responsible"`
}

// CloseCase handles POST /staff/cases/{caseID}/close.
func (h *Handler) CloseCase(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "caseID")

	var req CloseCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	c, err := h.lifecycle.CloseAndReport(r.Context(), caseID, req.FinalReport, req.Responsible)
	if err != nil {
		switch {
		case errors.Is(err, ErrCaseNotFound):
			http.Error(w, "case not found", http.StatusNotFound)
		case errors.Is(err, ErrInvalidIntervention):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			h.logger.Error("failed to close case", "error", err, "case_id", caseID)
			http.Error(w, "failed to close case", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// GetStats handles GET /staff/cases/stats requests. Optional from/to
// query params bound the range by case creation time.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	var rng StatsRange
	if raw := r.URL.Query().Get("from"); raw != "" {
		t, err := parseDashboardTime(raw)
		if err != nil {
			http.Error(w, "invalid from date", http.StatusBadRequest)
			return
		}
		rng.From = t
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		t, err := parseDashboardTime(raw)
		if err != nil {
			http.Error(w, "invalid to date", http.StatusBadRequest)
			return
		}
		rng.To = t
	}

	stats, err := h.repo.Stats(r.Context(), rng)
	if err != nil {
		h.logger.Error("failed to compute stats", "error", err)
		http.Error(w, "failed to compute stats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ListMyCases handles GET /me/cases: the reporter's own cases, looked
// up by the pseudonymous code carried in the session context.
func (h *Handler) ListMyCases(w http.ResponseWriter, r *http.Request) {
	code, ok := profiles.ReporterCodeFromContext(r.Context())
	if !ok {
		http.Error(w, "missing reporter session", http.StatusUnauthorized)
		return
	}

	out, err := h.repo.ListByReporterCode(r.Context(), code)
	if err != nil {
		h.logger.Error("failed to list reporter cases", "error", err)
		http.Error(w, "failed to list cases", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, ListCasesResponse{Cases: out, Count: len(out)})
}

// parseDashboardTime accepts RFC3339 timestamps or bare dates.
func parseDashboardTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
