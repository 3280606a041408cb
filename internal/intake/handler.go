package intake

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cuentame-ec/cuentame/internal/classifier"
	"github.com/cuentame-ec/cuentame/internal/profiles"
	"github.com/cuentame-ec/cuentame/pkg/logging"
)

// Handler handles the reporter-facing conversation endpoints.
type Handler struct {
	manager   *Manager
	assistant *Assistant
	logger    *logging.Logger
}

// NewHandler creates a new intake handler
func NewHandler(manager *Manager, assistant *Assistant, logger *logging.Logger) *Handler {
	return &Handler{manager: manager, assistant: assistant, logger: logger}
}

// SessionResponse describes the live conversation.
type SessionResponse struct {
	State State             `json:"state"`
	Turns []classifier.Turn `json:"turns"`
}

// StartSession handles POST /me/report/session: starts a fresh
// conversation or resumes the stored draft.
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	code, ok := profiles.ReporterCodeFromContext(r.Context())
	if !ok {
		http.Error(w, "missing reporter session", http.StatusUnauthorized)
		return
	}
	role := ""
	if parsed, ok := profiles.ReporterRoleFromContext(r.Context()); ok {
		role = string(parsed)
	}

	s, err := h.manager.StartOrResume(r.Context(), code, role)
	if err != nil {
		h.logger.Error("failed to start session", "error", err)
		http.Error(w, "failed to start session", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SessionResponse{State: s.State, Turns: s.Snapshot()})
}

// MessageRequest is the body for one reporter message.
type MessageRequest struct {
	Text string `json:"text"`
}

// MessageResponse carries the assistant's reply.
type MessageResponse struct {
	Reply string            `json:"reply"`
	Turns []classifier.Turn `json:"turns"`
}

// PostMessage handles POST /me/report/messages: records the reporter's
// turn and answers with the assistant's next question.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	code, ok := profiles.ReporterCodeFromContext(r.Context())
	if !ok {
		http.Error(w, "missing reporter session", http.StatusUnauthorized)
		return
	}

	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	s, err := h.manager.StartOrResume(r.Context(), code, roleFromContext(r))
	if err != nil {
		h.logger.Error("failed to resume session", "error", err)
		http.Error(w, "failed to resume session", http.StatusInternalServerError)
		return
	}

	turn, err := h.manager.AppendTurn(r.Context(), s, classifier.SenderReporter, req.Text)
	if err != nil {
		if errors.Is(err, ErrSessionFinalized) {
			http.Error(w, "report already submitted", http.StatusConflict)
			return
		}
		h.logger.Error("failed to append turn", "error", err)
		http.Error(w, "failed to record message", http.StatusInternalServerError)
		return
	}
	if turn == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	reply := h.assistant.Reply(r.Context(), s.Snapshot())
	if _, err := h.manager.AppendTurn(r.Context(), s, classifier.SenderAssistant, reply); err != nil {
		h.logger.Error("failed to record assistant turn", "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(MessageResponse{Reply: reply, Turns: s.Snapshot()})
}

// FinalizeResponse is the reporter-visible summary of the new case.
type FinalizeResponse struct {
	CaseID     string `json:"case_id"`
	Status     string `json:"status"`
	RiskLevel  string `json:"risk_level"`
	AssignedTo string `json:"assigned_to"`
	Route      string `json:"route"`
}

// Finalize handles POST /me/report/finalize.
func (h *Handler) Finalize(w http.ResponseWriter, r *http.Request) {
	code, ok := profiles.ReporterCodeFromContext(r.Context())
	if !ok {
		http.Error(w, "missing reporter session", http.StatusUnauthorized)
		return
	}

	s, err := h.manager.StartOrResume(r.Context(), code, roleFromContext(r))
	if err != nil {
		h.logger.Error("failed to resume session", "error", err)
		http.Error(w, "failed to resume session", http.StatusInternalServerError)
		return
	}

	c, err := h.manager.Finalize(r.Context(), s)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyConversation):
			http.Error(w, "cuéntanos qué pasó antes de enviar el reporte", http.StatusUnprocessableEntity)
		case errors.Is(err, ErrFinalizeInProgress):
			http.Error(w, "report submission already in progress", http.StatusConflict)
		default:
			h.logger.Error("failed to finalize report", "error", err)
			http.Error(w, "failed to submit report", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(FinalizeResponse{
		CaseID:     c.ID,
		Status:     c.Status.DisplayES(),
		RiskLevel:  c.Risk.DisplayES(),
		AssignedTo: c.AssignedTo,
		Route:      c.Route,
	})
}

func roleFromContext(r *http.Request) string {
	if role, ok := profiles.ReporterRoleFromContext(r.Context()); ok {
		return string(role)
	}
	return ""
}
