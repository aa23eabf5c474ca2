package domain

import (
	"time"
)

// DefaultPlanCode is the plan auto-provisioned for users without a
// subscription.
const DefaultPlanCode = "free"

// Plan is a billing plan. Plans are seeded by migration and read-only at
// runtime; no payment processing happens in this service.
type Plan struct {
	ID                int64  `json:"id"`
	Code              string `json:"code"`
	Name              string `json:"name"`
	Description       string `json:"description"`
	PriceMonthlyCents int64  `json:"price_monthly_cents"`
	PriceYearlyCents  int64  `json:"price_yearly_cents"`
}

// Subscription statuses.
const (
	SubscriptionActive   = "ACTIVE"
	SubscriptionCanceled = "CANCELED"
)

// Subscription links a user to a plan.
type Subscription struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	PlanID    int64     `json:"plan_id"`
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSubscription builds an active subscription starting now.
func NewSubscription(userID, planID int64, now time.Time) *Subscription {
	return &Subscription{
		UserID:    userID,
		PlanID:    planID,
		Status:    SubscriptionActive,
		StartedAt: now,
		UpdatedAt: now,
	}
}
