package profiles

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cuentame-ec/cuentame/pkg/logging"
)

// Handler handles HTTP requests for profiles
type Handler struct {
	service *Service
	repo    Repository
	logger  *logging.Logger
}

// NewHandler creates a new profiles handler
func NewHandler(service *Service, repo Repository, logger *logging.Logger) *Handler {
	return &Handler{service: service, repo: repo, logger: logger}
}

// RegisterRequest is the body for creating a profile.
type RegisterRequest struct {
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	Grade    string `json:"grade"`
}

// RegisterResponse returns the access code the reporter will use from
// now on. The full name is not echoed back.
type RegisterResponse struct {
	AccessCode string `json:"access_code"`
	Role       Role   `json:"role"`
}

// Register handles POST /profiles requests
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.FullName == "" {
		http.Error(w, "full_name is required", http.StatusBadRequest)
		return
	}
	role, err := ParseRole(req.Role)
	if err != nil {
		http.Error(w, "invalid role", http.StatusBadRequest)
		return
	}

	p, err := h.service.Register(r.Context(), req.FullName, role, req.Grade)
	if err != nil {
		h.logger.Error("failed to register profile", "error", err)
		http.Error(w, "failed to register profile", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(RegisterResponse{AccessCode: p.AccessCode, Role: p.Role})
}

// GetMyProfile handles GET /me/profile requests. Returns the public
// projection only.
func (h *Handler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	code, ok := ReporterCodeFromContext(r.Context())
	if !ok {
		http.Error(w, "missing reporter session", http.StatusUnauthorized)
		return
	}

	p, err := h.repo.GetByAccessCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			http.Error(w, "profile not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to get profile", "error", err)
		http.Error(w, "failed to get profile", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p.Public())
}
