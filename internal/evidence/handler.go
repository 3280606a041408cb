package evidence

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cuentame-ec/cuentame/internal/cases"
	"github.com/cuentame-ec/cuentame/internal/profiles"
	"github.com/cuentame-ec/cuentame/pkg/logging"
)

// maxUploadBytes caps one evidence file at 10 MiB.
const maxUploadBytes = 10 << 20

// Handler handles evidence uploads and listings.
type Handler struct {
	store  *Store
	cases  cases.Repository
	logger *logging.Logger
}

// NewHandler creates a new evidence handler
func NewHandler(store *Store, caseRepo cases.Repository, logger *logging.Logger) *Handler {
	return &Handler{store: store, cases: caseRepo, logger: logger}
}

// ListResponse wraps a case's evidence metadata.
type ListResponse struct {
	Evidence []*Item `json:"evidence"`
	Count    int     `json:"count"`
}

// StaffUpload handles POST /staff/cases/{caseID}/evidence.
func (h *Handler) StaffUpload(w http.ResponseWriter, r *http.Request) {
	h.upload(w, r, "")
}

// StaffList handles GET /staff/cases/{caseID}/evidence.
func (h *Handler) StaffList(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "")
}

// ReporterUpload handles POST /me/cases/{caseID}/evidence. The case
// must belong to the caller's reporter code.
func (h *Handler) ReporterUpload(w http.ResponseWriter, r *http.Request) {
	code, ok := profiles.ReporterCodeFromContext(r.Context())
	if !ok {
		http.Error(w, "missing reporter session", http.StatusUnauthorized)
		return
	}
	h.upload(w, r, code)
}

// ReporterList handles GET /me/cases/{caseID}/evidence.
func (h *Handler) ReporterList(w http.ResponseWriter, r *http.Request) {
	code, ok := profiles.ReporterCodeFromContext(r.Context())
	if !ok {
		http.Error(w, "missing reporter session", http.StatusUnauthorized)
		return
	}
	h.list(w, r, code)
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request, ownerCode string) {
	caseID := chi.URLParam(r, "caseID")
	if !h.authorizeCase(w, r, caseID, ownerCode) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart body", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	item, err := h.store.Put(r.Context(), caseID, header.Filename, contentType, header.Size, file)
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			http.Error(w, "evidence storage not configured", http.StatusServiceUnavailable)
			return
		}
		h.logger.Error("failed to upload evidence", "error", err, "case_id", caseID)
		http.Error(w, "failed to upload evidence", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(item)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, ownerCode string) {
	caseID := chi.URLParam(r, "caseID")
	if !h.authorizeCase(w, r, caseID, ownerCode) {
		return
	}

	items, err := h.store.List(r.Context(), caseID)
	if err != nil {
		h.logger.Error("failed to list evidence", "error", err, "case_id", caseID)
		http.Error(w, "failed to list evidence", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ListResponse{Evidence: items, Count: len(items)})
}

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
		http.Error(w, "case not found", http.StatusNotFound)
		return false
	}
	return true
}
