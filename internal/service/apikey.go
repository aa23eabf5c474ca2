package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/devportal/backend/internal/auth"
	"github.com/devportal/backend/internal/domain"
	"github.com/devportal/backend/internal/repository"
	apperrors "github.com/devportal/backend/pkg/errors"
)

// maxKeysPerUser caps the number of API keys a single user may hold.
const maxKeysPerUser = 10

// maxKeyNameLength bounds the user-supplied key label.
const maxKeyNameLength = 100

// APIKeyService implements API key management and validation.
type APIKeyService struct {
	keyRepo  repository.APIKeyRepository
	userRepo repository.UserRepository
	logger   *slog.Logger
}

// NewAPIKeyService creates a new API key service.
func NewAPIKeyService(
	keyRepo repository.APIKeyRepository,
	userRepo repository.UserRepository,
	logger *slog.Logger,
) *APIKeyService {
	return &APIKeyService{
		keyRepo:  keyRepo,
		userRepo: userRepo,
		logger:   logger,
	}
}

// CreateKey generates a new API key for the user. The raw secret is returned
// exactly once; only its hash and display prefix are stored.
func (s *APIKeyService) CreateKey(ctx context.Context, userID int64, name string) (*domain.APIKey, string, error) {
	if name == "" {
		return nil, "", apperrors.InvalidInput("key name is required")
	}
	if len(name) > maxKeyNameLength {
		return nil, "", apperrors.InvalidInput(fmt.Sprintf("key name must be at most %d characters", maxKeyNameLength))
	}

	count, err := s.keyRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, "", fmt.Errorf("count api keys: %w", err)
	}
	if count >= maxKeysPerUser {
		return nil, "", apperrors.KeyLimitExceeded(maxKeysPerUser)
	}

	rawSecret, err := auth.NewAPIKeySecret()
	if err != nil {
		return nil, "", fmt.Errorf("generate api key: %w", err)
	}

	key := &domain.APIKey{
		UserID:        userID,
		Name:          name,
		DisplayPrefix: auth.DisplayPrefix(rawSecret),
		KeyHash:       auth.HashLookupSecret(rawSecret),
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.keyRepo.Create(ctx, key); err != nil {
		return nil, "", fmt.Errorf("create api key: %w", err)
	}

	s.logger.InfoContext(ctx, "api key created",
		slog.Int64("user_id", userID),
		slog.Int64("key_id", key.ID),
		slog.String("key_prefix", key.DisplayPrefix),
	)

	return key, rawSecret, nil
}

// ListKeys returns all keys owned by the user. Raw secrets are not
// recoverable; responses carry the display prefix only.
func (s *APIKeyService) ListKeys(ctx context.Context, userID int64) ([]domain.APIKey, error) {
	keys, err := s.keyRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	return keys, nil
}

// DeleteKey removes one of the user's keys. Keys belonging to other users
// read as not found.
func (s *APIKeyService) DeleteKey(ctx context.Context, keyID, userID int64) error {
	if err := s.keyRepo.Delete(ctx, keyID, userID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "api key deleted",
		slog.Int64("user_id", userID),
		slog.Int64("key_id", keyID),
	)

	return nil
}

// ValidateKey authenticates a raw API key, returning its owner. A successful
// validation stamps the key's last-used time.
func (s *APIKeyService) ValidateKey(ctx context.Context, rawSecret string) (*domain.User, *domain.APIKey, error) {
	if rawSecret == "" {
		return nil, nil, apperrors.InvalidAPIKey()
	}

	key, err := s.keyRepo.GetByHash(ctx, auth.HashLookupSecret(rawSecret))
	if err != nil {
		return nil, nil, apperrors.InvalidAPIKey()
	}

	user, err := s.userRepo.GetByID(ctx, key.UserID)
	if err != nil {
		return nil, nil, apperrors.InvalidAPIKey()
	}

	// Best-effort stamp; a failed update must not reject the request.
	if err := s.keyRepo.TouchLastUsed(ctx, key.ID, time.Now().UTC()); err != nil {
		s.logger.WarnContext(ctx, "failed to stamp api key last_used_at",
			slog.Int64("key_id", key.ID),
			slog.String("error", err.Error()),
		)
	}

	return user, key, nil
}
