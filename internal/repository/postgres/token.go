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

// RefreshTokenRepository implements repository.RefreshTokenRepository using
// PostgreSQL. Rows are append-then-flag: nothing is ever deleted so rotation
// chains stay auditable.
type RefreshTokenRepository struct {
	pool database.DBTX
}

// NewRefreshTokenRepository creates a new PostgreSQL-backed refresh token repository.
func NewRefreshTokenRepository(pool database.DBTX) *RefreshTokenRepository {
	return &RefreshTokenRepository{pool: pool}
}

// Create stores a new refresh token hash and returns the stored record.
func (r *RefreshTokenRepository) Create(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) (*domain.RefreshToken, error) {
	query := `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at, revoked, created_at)
		VALUES ($1, $2, $3, false, $4)
		RETURNING id, created_at`

	rt := &domain.RefreshToken{
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
	}
	err := r.pool.QueryRow(ctx, query, userID, tokenHash, expiresAt, time.Now().UTC()).
		Scan(&rt.ID, &rt.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert refresh token: %w", err)
	}

	return rt, nil
}

// GetActiveByHash retrieves a non-revoked refresh token record by its hash.
func (r *RefreshTokenRepository) GetActiveByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, revoked, replaced_by_id, created_at
		FROM refresh_tokens
		WHERE token_hash = $1 AND revoked = false`

	var rt domain.RefreshToken
	err := r.pool.QueryRow(ctx, query, tokenHash).Scan(
		&rt.ID,
		&rt.UserID,
		&rt.TokenHash,
		&rt.ExpiresAt,
		&rt.Revoked,
		&rt.ReplacedByID,
		&rt.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan refresh token: %w", err)
	}

	return &rt, nil
}

// Rotate atomically inserts the replacement token and revokes the old one.
// The conditional UPDATE on revoked = false is the single-use guarantee:
// when two callers race on the same old hash, only one UPDATE matches a row
// and the other caller gets ErrInvalidToken.
func (r *RefreshTokenRepository) Rotate(ctx context.Context, oldHash string, userID int64, newHash string, expiresAt time.Time) (*domain.RefreshToken, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now().UTC()

	newToken := &domain.RefreshToken{
		UserID:    userID,
		TokenHash: newHash,
		ExpiresAt: expiresAt,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at, revoked, created_at)
		VALUES ($1, $2, $3, false, $4)
		RETURNING id, created_at`,
		userID, newHash, expiresAt, now,
	).Scan(&newToken.ID, &newToken.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert rotated refresh token: %w", err)
	}

	ct, err := tx.Exec(ctx, `
		UPDATE refresh_tokens
		SET revoked = true, replaced_by_id = $1
		WHERE token_hash = $2 AND revoked = false`,
		newToken.ID, oldHash,
	)
	if err != nil {
		return nil, fmt.Errorf("revoke rotated refresh token: %w", err)
	}
	if ct.RowsAffected() == 0 {
		// Lost the race or the token was revoked in between.
		return nil, apperrors.ErrInvalidToken
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit rotation: %w", err)
	}

	return newToken, nil
}

// Revoke revokes a specific refresh token by its hash. Unknown or
// already-revoked hashes are a no-op, which makes logout idempotent.
func (r *RefreshTokenRepository) Revoke(ctx context.Context, tokenHash string) error {
	query := `UPDATE refresh_tokens SET revoked = true WHERE token_hash = $1 AND revoked = false`

	_, err := r.pool.Exec(ctx, query, tokenHash)
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}

	return nil
}

// RevokeAllByUser revokes all refresh tokens for the given user.
func (r *RefreshTokenRepository) RevokeAllByUser(ctx context.Context, userID int64) error {
	query := `UPDATE refresh_tokens SET revoked = true WHERE user_id = $1 AND revoked = false`

	_, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("revoke refresh tokens by user: %w", err)
	}

	return nil
}

// --- API Key Repository ---

// APIKeyRepository implements repository.APIKeyRepository using PostgreSQL.
type APIKeyRepository struct {
	pool database.DBTX
}

// NewAPIKeyRepository creates a new PostgreSQL-backed API key repository.
func NewAPIKeyRepository(pool database.DBTX) *APIKeyRepository {
	return &APIKeyRepository{pool: pool}
}

// Create inserts a new API key and assigns the generated id.
func (r *APIKeyRepository) Create(ctx context.Context, k *domain.APIKey) error {
	query := `
		INSERT INTO api_keys (user_id, name, display_prefix, key_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		k.UserID,
		k.Name,
		k.DisplayPrefix,
		k.KeyHash,
		k.CreatedAt,
	).Scan(&k.ID)
	if err != nil {
		return fmt.Errorf("insert api key: %w", err)
	}

	return nil
}

// GetByHash retrieves an API key record by the hash of its raw secret.
func (r *APIKeyRepository) GetByHash(ctx context.Context, keyHash string) (*domain.APIKey, error) {
	query := `
		SELECT id, user_id, name, display_prefix, key_hash, created_at, last_used_at
		FROM api_keys
		WHERE key_hash = $1`

	return r.scanKey(ctx, query, keyHash)
}

// GetByIDAndUser retrieves a key by id scoped to its owner.
func (r *APIKeyRepository) GetByIDAndUser(ctx context.Context, id, userID int64) (*domain.APIKey, error) {
	query := `
		SELECT id, user_id, name, display_prefix, key_hash, created_at, last_used_at
		FROM api_keys
		WHERE id = $1 AND user_id = $2`

	return r.scanKey(ctx, query, id, userID)
}

// ListByUser returns all keys owned by the given user, newest first.
func (r *APIKeyRepository) ListByUser(ctx context.Context, userID int64) ([]domain.APIKey, error) {
	query := `
		SELECT id, user_id, name, display_prefix, key_hash, created_at, last_used_at
		FROM api_keys
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	keys := []domain.APIKey{}
	for rows.Next() {
		var k domain.APIKey
		if err := rows.Scan(
			&k.ID,
			&k.UserID,
			&k.Name,
			&k.DisplayPrefix,
			&k.KeyHash,
			&k.CreatedAt,
			&k.LastUsedAt,
		); err != nil {
			return nil, fmt.Errorf("scan api key row: %w", err)
		}
		keys = append(keys, k)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate api key rows: %w", err)
	}

	return keys, nil
}

// CountByUser returns the number of keys owned by the given user.
func (r *APIKeyRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM api_keys WHERE user_id = $1`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count api keys: %w", err)
	}
	return count, nil
}

// TouchLastUsed records a successful validation.
func (r *APIKeyRepository) TouchLastUsed(ctx context.Context, id int64, usedAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE api_keys SET last_used_at = $1 WHERE id = $2`, usedAt, id,
	)
	if err != nil {
		return fmt.Errorf("touch api key: %w", err)
	}
	return nil
}

// Delete removes a key owned by the given user.
func (r *APIKeyRepository) Delete(ctx context.Context, id, userID int64) error {
	ct, err := r.pool.Exec(ctx,
		`DELETE FROM api_keys WHERE id = $1 AND user_id = $2`, id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete api key: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("api key", fmt.Sprint(id))
	}

	return nil
}

// scanKey is a helper that executes a query expected to return a single key row.
func (r *APIKeyRepository) scanKey(ctx context.Context, query string, args ...any) (*domain.APIKey, error) {
	var k domain.APIKey

	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&k.ID,
		&k.UserID,
		&k.Name,
		&k.DisplayPrefix,
		&k.KeyHash,
		&k.CreatedAt,
		&k.LastUsedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan api key: %w", err)
	}

	return &k, nil
}
