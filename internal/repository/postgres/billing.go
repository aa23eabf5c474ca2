package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/devportal/backend/internal/domain"
	"github.com/devportal/backend/pkg/database"
	apperrors "github.com/devportal/backend/pkg/errors"
)

// PlanRepository implements repository.PlanRepository using PostgreSQL.
// Plans are seeded by migration and never written at runtime.
type PlanRepository struct {
	pool database.DBTX
}

// NewPlanRepository creates a new PostgreSQL-backed plan repository.
func NewPlanRepository(pool database.DBTX) *PlanRepository {
	return &PlanRepository{pool: pool}
}

// List returns all plans ordered by monthly price.
func (r *PlanRepository) List(ctx context.Context) ([]domain.Plan, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, code, name, description, price_monthly_cents, price_yearly_cents
		FROM plans
		ORDER BY price_monthly_cents ASC`)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	plans := []domain.Plan{}
	for rows.Next() {
		var p domain.Plan
		if err := rows.Scan(
			&p.ID,
			&p.Code,
			&p.Name,
			&p.Description,
			&p.PriceMonthlyCents,
			&p.PriceYearlyCents,
		); err != nil {
			return nil, fmt.Errorf("scan plan row: %w", err)
		}
		plans = append(plans, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plan rows: %w", err)
	}

	return plans, nil
}

// GetByID retrieves a plan by its ID.
func (r *PlanRepository) GetByID(ctx context.Context, id int64) (*domain.Plan, error) {
	query := `
		SELECT id, code, name, description, price_monthly_cents, price_yearly_cents
		FROM plans
		WHERE id = $1`

	return r.scanPlan(ctx, query, id)
}

// GetByCode retrieves a plan by its code.
func (r *PlanRepository) GetByCode(ctx context.Context, code string) (*domain.Plan, error) {
	query := `
		SELECT id, code, name, description, price_monthly_cents, price_yearly_cents
		FROM plans
		WHERE code = $1`

	return r.scanPlan(ctx, query, code)
}

func (r *PlanRepository) scanPlan(ctx context.Context, query string, args ...any) (*domain.Plan, error) {
	var p domain.Plan
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&p.ID,
		&p.Code,
		&p.Name,
		&p.Description,
		&p.PriceMonthlyCents,
		&p.PriceYearlyCents,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan plan: %w", err)
	}

	return &p, nil
}

// --- Subscription Repository ---

// SubscriptionRepository implements repository.SubscriptionRepository using PostgreSQL.
type SubscriptionRepository struct {
	pool database.DBTX
}

// NewSubscriptionRepository creates a new PostgreSQL-backed subscription repository.
func NewSubscriptionRepository(pool database.DBTX) *SubscriptionRepository {
	return &SubscriptionRepository{pool: pool}
}

// Create inserts a new subscription and assigns the generated id.
func (r *SubscriptionRepository) Create(ctx context.Context, s *domain.Subscription) error {
	query := `
		INSERT INTO subscriptions (user_id, plan_id, status, started_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		s.UserID,
		s.PlanID,
		s.Status,
		s.StartedAt,
		s.UpdatedAt,
	).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("insert subscription: %w", err)
	}

	return nil
}

// GetByUserID retrieves the subscription for the given user.
func (r *SubscriptionRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Subscription, error) {
	query := `
		SELECT id, user_id, plan_id, status, started_at, updated_at
		FROM subscriptions
		WHERE user_id = $1`

	var s domain.Subscription
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&s.ID,
		&s.UserID,
		&s.PlanID,
		&s.Status,
		&s.StartedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan subscription: %w", err)
	}

	return &s, nil
}

// Update modifies an existing subscription.
func (r *SubscriptionRepository) Update(ctx context.Context, s *domain.Subscription) error {
	s.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE subscriptions
		SET plan_id = $1, status = $2, updated_at = $3
		WHERE id = $4`

	ct, err := r.pool.Exec(ctx, query,
		s.PlanID,
		s.Status,
		s.UpdatedAt,
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("subscription", fmt.Sprint(s.ID))
	}

	return nil
}
