package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/devportal/backend/pkg/errors"
	"github.com/devportal/backend/pkg/logger"
	"github.com/devportal/backend/pkg/validator"
)

// problem is an RFC 7807 problem document. Every error response carries the
// request trace id so clients can quote it in support requests.
type problem struct {
	Type    string            `json:"type"`
	Title   string            `json:"title"`
	Status  int               `json:"status"`
	Detail  string            `json:"detail,omitempty"`
	TraceID string            `json:"traceId,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

func writeProblem(w http.ResponseWriter, r *http.Request, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(problem{
		Type:    "about:blank",
		Title:   title,
		Status:  status,
		Detail:  detail,
		TraceID: logger.TraceIDFromContext(r.Context()),
	})
}

// writeAppError maps service errors onto problem documents. AppError values
// expose their code and message; anything else becomes an opaque 500 so
// internal details never leak.
func writeAppError(w http.ResponseWriter, r *http.Request, err error, l *slog.Logger) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		writeProblem(w, r, appErr.Status, appErr.Code, appErr.Message)
		return
	}

	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "request failed",
			slog.String("error", err.Error()),
		)
		writeProblem(w, r, status, "INTERNAL_ERROR", "an internal error occurred")
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		writeProblem(w, r, status, "NOT_FOUND", "resource not found")
	case errors.Is(err, apperrors.ErrUnauthorized):
		writeProblem(w, r, status, "UNAUTHORIZED", err.Error())
	default:
		writeProblem(w, r, status, "INVALID_INPUT", err.Error())
	}
}

func writeValidationError(w http.ResponseWriter, r *http.Request, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(problem{
			Type:    "about:blank",
			Title:   "VALIDATION_ERROR",
			Status:  http.StatusBadRequest,
			Detail:  "request validation failed",
			TraceID: logger.TraceIDFromContext(r.Context()),
			Fields:  valErr.Fields(),
		})
		return
	}

	writeProblem(w, r, http.StatusBadRequest, "INVALID_INPUT", err.Error())
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeProblem(w, r, http.StatusBadRequest, "INVALID_INPUT", "invalid request body: "+err.Error())
		return false
	}

	if err := validator.Validate(dst); err != nil {
		writeValidationError(w, r, err)
		return false
	}

	return true
}
