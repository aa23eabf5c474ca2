package http

import (
	"log/slog"
	"net/http"

	"github.com/devportal/backend/internal/service"
)

// BillingHandler handles HTTP requests for plans and subscriptions.
type BillingHandler struct {
	service *service.BillingService
	logger  *slog.Logger
}

// NewBillingHandler creates a new billing HTTP handler.
func NewBillingHandler(svc *service.BillingService, logger *slog.Logger) *BillingHandler {
	return &BillingHandler{service: svc, logger: logger}
}

// ChangePlanRequest is the JSON request body for changing the plan.
type ChangePlanRequest struct {
	PlanCode string `json:"plan_code" validate:"required,min=1,max=50"`
}

// ListPlans handles GET /api/v1/billing/plans
func (h *BillingHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.service.ListPlans(r.Context())
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, plans)
}

// GetSubscription handles GET /api/v1/billing/subscription
func (h *BillingHandler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeProblem(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}

	detail, err := h.service.GetSubscription(r.Context(), p.UserID)
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

// ChangePlan handles PUT /api/v1/billing/subscription
func (h *BillingHandler) ChangePlan(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeProblem(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}

	var req ChangePlanRequest
	if !decodeBody(w, r, &req) {
		return
	}

	detail, err := h.service.ChangePlan(r.Context(), p.UserID, req.PlanCode)
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

// CancelSubscription handles DELETE /api/v1/billing/subscription
func (h *BillingHandler) CancelSubscription(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeProblem(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}

	detail, err := h.service.CancelSubscription(r.Context(), p.UserID)
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}
