package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/devportal/backend/internal/domain"
	"github.com/devportal/backend/internal/repository"
	apperrors "github.com/devportal/backend/pkg/errors"
)

// BillingService implements plan listing and subscription management. No
// payment processing happens here; plan changes take effect immediately.
type BillingService struct {
	planRepo repository.PlanRepository
	subRepo  repository.SubscriptionRepository
	logger   *slog.Logger
}

// NewBillingService creates a new billing service.
func NewBillingService(
	planRepo repository.PlanRepository,
	subRepo repository.SubscriptionRepository,
	logger *slog.Logger,
) *BillingService {
	return &BillingService{
		planRepo: planRepo,
		subRepo:  subRepo,
		logger:   logger,
	}
}

// SubscriptionDetail pairs a subscription with its resolved plan.
type SubscriptionDetail struct {
	Subscription *domain.Subscription `json:"subscription"`
	Plan         *domain.Plan         `json:"plan"`
}

// ListPlans returns all plans ordered by monthly price.
func (s *BillingService) ListPlans(ctx context.Context) ([]domain.Plan, error) {
	plans, err := s.planRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return plans, nil
}

// GetSubscription returns the user's subscription. Users without one are
// provisioned onto the default plan on first read.
func (s *BillingService) GetSubscription(ctx context.Context, userID int64) (*SubscriptionDetail, error) {
	sub, err := s.subRepo.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("get subscription: %w", err)
		}
		sub, err = s.provisionDefault(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	plan, err := s.planRepo.GetByID(ctx, sub.PlanID)
	if err != nil {
		return nil, fmt.Errorf("get plan for subscription: %w", err)
	}

	return &SubscriptionDetail{Subscription: sub, Plan: plan}, nil
}

// ChangePlan moves the user onto the named plan, provisioning a subscription
// if they have none.
func (s *BillingService) ChangePlan(ctx context.Context, userID int64, planCode string) (*SubscriptionDetail, error) {
	if planCode == "" {
		return nil, apperrors.InvalidInput("plan code is required")
	}

	plan, err := s.planRepo.GetByCode(ctx, planCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("unknown plan %q", planCode))
		}
		return nil, fmt.Errorf("get plan: %w", err)
	}

	sub, err := s.subRepo.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("get subscription: %w", err)
		}
		sub, err = s.provisionDefault(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	sub.PlanID = plan.ID
	sub.Status = domain.SubscriptionActive
	if err := s.subRepo.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("update subscription: %w", err)
	}

	s.logger.InfoContext(ctx, "subscription plan changed",
		slog.Int64("user_id", userID),
		slog.String("plan_code", plan.Code),
	)

	return &SubscriptionDetail{Subscription: sub, Plan: plan}, nil
}

// CancelSubscription marks the user's subscription canceled. The record is
// kept so the history survives.
func (s *BillingService) CancelSubscription(ctx context.Context, userID int64) (*SubscriptionDetail, error) {
	sub, err := s.subRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	sub.Status = domain.SubscriptionCanceled
	if err := s.subRepo.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("update subscription: %w", err)
	}

	plan, err := s.planRepo.GetByID(ctx, sub.PlanID)
	if err != nil {
		return nil, fmt.Errorf("get plan for subscription: %w", err)
	}

	s.logger.InfoContext(ctx, "subscription canceled",
		slog.Int64("user_id", userID),
	)

	return &SubscriptionDetail{Subscription: sub, Plan: plan}, nil
}

// provisionDefault creates a subscription on the default plan.
func (s *BillingService) provisionDefault(ctx context.Context, userID int64) (*domain.Subscription, error) {
	plan, err := s.planRepo.GetByCode(ctx, domain.DefaultPlanCode)
	if err != nil {
		return nil, fmt.Errorf("get default plan: %w", err)
	}

	sub := domain.NewSubscription(userID, plan.ID, time.Now().UTC())
	if err := s.subRepo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("provision subscription: %w", err)
	}

	s.logger.InfoContext(ctx, "subscription provisioned on default plan",
		slog.Int64("user_id", userID),
	)

	return sub, nil
}
