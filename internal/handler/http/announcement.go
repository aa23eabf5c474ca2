package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/devportal/backend/internal/service"
	"github.com/devportal/backend/pkg/pagination"
)

// AnnouncementHandler handles HTTP requests for announcements. Public reads
// serve only published items; admin routes see everything.
type AnnouncementHandler struct {
	service *service.AnnouncementService
	logger  *slog.Logger
}

// NewAnnouncementHandler creates a new announcement HTTP handler.
func NewAnnouncementHandler(svc *service.AnnouncementService, logger *slog.Logger) *AnnouncementHandler {
	return &AnnouncementHandler{service: svc, logger: logger}
}

// CreateAnnouncementRequest is the JSON request body for creating an announcement.
type CreateAnnouncementRequest struct {
	Title    string `json:"title" validate:"required,min=1,max=200"`
	Content  string `json:"content" validate:"required"`
	Category string `json:"category" validate:"required,oneof=GENERAL MAINTENANCE RELEASE EVENT"`
	Publish  bool   `json:"publish"`
}

// UpdateAnnouncementRequest is the JSON request body for updating an announcement.
type UpdateAnnouncementRequest struct {
	Title    *string `json:"title" validate:"omitempty,min=1,max=200"`
	Content  *string `json:"content" validate:"omitempty,min=1"`
	Category *string `json:"category" validate:"omitempty,oneof=GENERAL MAINTENANCE RELEASE EVENT"`
}

// ListPublished handles GET /api/v1/announcements
func (h *AnnouncementHandler) ListPublished(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	category := r.URL.Query().Get("category")

	result, err := h.service.ListPublished(r.Context(), category, params)
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Get handles GET /api/v1/announcements/{id}
func (h *AnnouncementHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	a, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	// Unpublished announcements are not visible on the public route.
	if !a.Published {
		writeProblem(w, r, http.StatusNotFound, "NOT_FOUND", "resource not found")
		return
	}

	writeJSON(w, http.StatusOK, a)
}

// ListAll handles GET /api/v1/admin/announcements
func (h *AnnouncementHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ListAll(r.Context(), pagination.FromRequest(r))
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Create handles POST /api/v1/admin/announcements
func (h *AnnouncementHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAnnouncementRequest
	if !decodeBody(w, r, &req) {
		return
	}

	a, err := h.service.Create(r.Context(), service.CreateAnnouncementInput{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		Publish:  req.Publish,
	})
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, a)
}

// Update handles PATCH /api/v1/admin/announcements/{id}
func (h *AnnouncementHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req UpdateAnnouncementRequest
	if !decodeBody(w, r, &req) {
		return
	}

	a, err := h.service.Update(r.Context(), id, service.UpdateAnnouncementInput{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
	})
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, a)
}

// Publish handles POST /api/v1/admin/announcements/{id}/publish
func (h *AnnouncementHandler) Publish(w http.ResponseWriter, r *http.Request) {
	h.setPublished(w, r, true)
}

// Unpublish handles POST /api/v1/admin/announcements/{id}/unpublish
func (h *AnnouncementHandler) Unpublish(w http.ResponseWriter, r *http.Request) {
	h.setPublished(w, r, false)
}

func (h *AnnouncementHandler) setPublished(w http.ResponseWriter, r *http.Request, published bool) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	a, err := h.service.SetPublished(r.Context(), id, published)
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, a)
}

// Delete handles DELETE /api/v1/admin/announcements/{id}
func (h *AnnouncementHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// idParam parses the {id} route parameter, writing a 400 problem on failure.
func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, r, http.StatusBadRequest, "INVALID_INPUT", "id must be an integer")
		return 0, false
	}
	return id, true
}
