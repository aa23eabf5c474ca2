package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/devportal/backend/internal/service"
	"github.com/devportal/backend/pkg/pagination"
)

// ReleaseHandler handles HTTP requests for release notes.
type ReleaseHandler struct {
	service *service.ReleaseService
	logger  *slog.Logger
}

// NewReleaseHandler creates a new release HTTP handler.
func NewReleaseHandler(svc *service.ReleaseService, logger *slog.Logger) *ReleaseHandler {
	return &ReleaseHandler{service: svc, logger: logger}
}

// CreateReleaseRequest is the JSON request body for creating a release.
type CreateReleaseRequest struct {
	Version    string     `json:"version" validate:"required,min=1,max=50"`
	Title      string     `json:"title" validate:"required,min=1,max=200"`
	Notes      string     `json:"notes"`
	Type       string     `json:"type" validate:"required,oneof=MAJOR MINOR PATCH HOTFIX"`
	ReleasedAt *time.Time `json:"released_at"`
}

// UpdateReleaseRequest is the JSON request body for updating a release.
type UpdateReleaseRequest struct {
	Title *string `json:"title" validate:"omitempty,min=1,max=200"`
	Notes *string `json:"notes"`
	Type  *string `json:"type" validate:"omitempty,oneof=MAJOR MINOR PATCH HOTFIX"`
}

// List handles GET /api/v1/releases
func (h *ReleaseHandler) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.List(r.Context(), pagination.FromRequest(r))
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Get handles GET /api/v1/releases/{id}
func (h *ReleaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	rel, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, rel)
}

// Create handles POST /api/v1/admin/releases
func (h *ReleaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateReleaseRequest
	if !decodeBody(w, r, &req) {
		return
	}

	input := service.CreateReleaseInput{
		Version: req.Version,
		Title:   req.Title,
		Notes:   req.Notes,
		Type:    req.Type,
	}
	if req.ReleasedAt != nil {
		input.ReleasedAt = *req.ReleasedAt
	}

	rel, err := h.service.Create(r.Context(), input)
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, rel)
}

// Update handles PATCH /api/v1/admin/releases/{id}
func (h *ReleaseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req UpdateReleaseRequest
	if !decodeBody(w, r, &req) {
		return
	}

	rel, err := h.service.Update(r.Context(), id, service.UpdateReleaseInput{
		Title: req.Title,
		Notes: req.Notes,
		Type:  req.Type,
	})
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, rel)
}

// Delete handles DELETE /api/v1/admin/releases/{id}
func (h *ReleaseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
