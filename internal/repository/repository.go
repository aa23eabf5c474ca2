package repository

import (
	"context"
	"time"

	"github.com/devportal/backend/internal/domain"
)

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user and assigns its generated id.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// ExistsByEmail reports whether a user with the given email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Update modifies an existing user in the store.
	Update(ctx context.Context, user *domain.User) error
}

// RefreshTokenRepository defines the interface for refresh token persistence.
// Tokens are never deleted; rotation and revocation flip the revoked flag.
type RefreshTokenRepository interface {
	// Create stores a new refresh token hash and returns the stored record.
	Create(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) (*domain.RefreshToken, error)

	// GetActiveByHash retrieves a non-revoked refresh token record by hash.
	GetActiveByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)

	// Rotate atomically inserts a replacement token and revokes the old one,
	// linking the old row to its successor. At most one concurrent caller
	// presenting the same old hash succeeds; the rest get ErrInvalidToken.
	Rotate(ctx context.Context, oldHash string, userID int64, newHash string, expiresAt time.Time) (*domain.RefreshToken, error)

	// Revoke revokes the token with the given hash. Revoking an unknown or
	// already-revoked hash is a no-op.
	Revoke(ctx context.Context, tokenHash string) error

	// RevokeAllByUser revokes every non-revoked token for the given user.
	RevokeAllByUser(ctx context.Context, userID int64) error
}

// APIKeyRepository defines the interface for API key persistence operations.
type APIKeyRepository interface {
	// Create inserts a new API key and assigns its generated id.
	Create(ctx context.Context, key *domain.APIKey) error

	// GetByHash retrieves an API key record by the hash of its raw secret.
	GetByHash(ctx context.Context, keyHash string) (*domain.APIKey, error)

	// GetByIDAndUser retrieves a key by id scoped to its owner.
	GetByIDAndUser(ctx context.Context, id, userID int64) (*domain.APIKey, error)

	// ListByUser returns all keys owned by the given user, newest first.
	ListByUser(ctx context.Context, userID int64) ([]domain.APIKey, error)

	// CountByUser returns the number of keys owned by the given user.
	CountByUser(ctx context.Context, userID int64) (int, error)

	// TouchLastUsed records a successful validation.
	TouchLastUsed(ctx context.Context, id int64, usedAt time.Time) error

	// Delete removes a key owned by the given user.
	Delete(ctx context.Context, id, userID int64) error
}

// AnnouncementRepository defines the interface for announcement persistence.
type AnnouncementRepository interface {
	Create(ctx context.Context, a *domain.Announcement) error
	GetByID(ctx context.Context, id int64) (*domain.Announcement, error)

	// ListPublished returns published announcements, newest publish first,
	// optionally filtered by category. The second return value is the total
	// row count for pagination.
	ListPublished(ctx context.Context, category string, limit, offset int) ([]domain.Announcement, int, error)

	// ListAll returns every announcement regardless of publish state.
	ListAll(ctx context.Context, limit, offset int) ([]domain.Announcement, int, error)

	Update(ctx context.Context, a *domain.Announcement) error
	Delete(ctx context.Context, id int64) error
}

// ReleaseRepository defines the interface for release persistence.
type ReleaseRepository interface {
	Create(ctx context.Context, r *domain.Release) error
	GetByID(ctx context.Context, id int64) (*domain.Release, error)

	// List returns releases newest first with the total row count.
	List(ctx context.Context, limit, offset int) ([]domain.Release, int, error)

	Update(ctx context.Context, r *domain.Release) error
	Delete(ctx context.Context, id int64) error
}

// PlanRepository defines the read-only interface for billing plans.
type PlanRepository interface {
	// List returns all plans ordered by monthly price.
	List(ctx context.Context) ([]domain.Plan, error)
	GetByID(ctx context.Context, id int64) (*domain.Plan, error)
	GetByCode(ctx context.Context, code string) (*domain.Plan, error)
}

// SubscriptionRepository defines the interface for subscription persistence.
type SubscriptionRepository interface {
	Create(ctx context.Context, s *domain.Subscription) error
	GetByUserID(ctx context.Context, userID int64) (*domain.Subscription, error)
	Update(ctx context.Context, s *domain.Subscription) error
}
