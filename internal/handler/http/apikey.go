package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/devportal/backend/internal/domain"
	"github.com/devportal/backend/internal/service"
)

// APIKeyHandler handles HTTP requests for API key management.
type APIKeyHandler struct {
	service *service.APIKeyService
	logger  *slog.Logger
}

// NewAPIKeyHandler creates a new API key HTTP handler.
func NewAPIKeyHandler(svc *service.APIKeyService, logger *slog.Logger) *APIKeyHandler {
	return &APIKeyHandler{service: svc, logger: logger}
}

// CreateAPIKeyRequest is the JSON request body for creating an API key.
type CreateAPIKeyRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// CreateAPIKeyResponse carries the one and only disclosure of the raw key.
type CreateAPIKeyResponse struct {
	Key *domain.APIKey `json:"key"`

	// SecretOnce is shown once at creation and cannot be retrieved again.
	SecretOnce string `json:"secretOnce"`
}

// List handles GET /api/v1/api-keys
func (h *APIKeyHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeProblem(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}

	keys, err := h.service.ListKeys(r.Context(), p.UserID)
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, keys)
}

// Create handles POST /api/v1/api-keys
func (h *APIKeyHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeProblem(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}

	var req CreateAPIKeyRequest
	if !decodeBody(w, r, &req) {
		return
	}

	key, rawSecret, err := h.service.CreateKey(r.Context(), p.UserID, req.Name)
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, CreateAPIKeyResponse{
		Key:        key,
		SecretOnce: rawSecret,
	})
}

// Delete handles DELETE /api/v1/api-keys/{id}
func (h *APIKeyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeProblem(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}

	keyID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, r, http.StatusBadRequest, "INVALID_INPUT", "key id must be an integer")
		return
	}

	if err := h.service.DeleteKey(r.Context(), keyID, p.UserID); err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
