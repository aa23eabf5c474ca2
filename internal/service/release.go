package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/devportal/backend/internal/domain"
	"github.com/devportal/backend/internal/repository"
	apperrors "github.com/devportal/backend/pkg/errors"
	"github.com/devportal/backend/pkg/pagination"
)

const releaseCacheNamespace = "releases"

const releaseCacheTTL = 5 * time.Minute

// ReleaseService implements release note management. The public listing is
// cached in Redis.
type ReleaseService struct {
	repo   repository.ReleaseRepository
	cache  *listCache
	logger *slog.Logger
}

// NewReleaseService creates a new release service. A nil Redis client
// disables caching.
func NewReleaseService(
	repo repository.ReleaseRepository,
	redisClient *redis.Client,
	logger *slog.Logger,
) *ReleaseService {
	return &ReleaseService{
		repo:   repo,
		cache:  newListCache(redisClient, logger, releaseCacheTTL),
		logger: logger,
	}
}

// CreateReleaseInput holds the parameters for creating a release.
type CreateReleaseInput struct {
	Version    string
	Title      string
	Notes      string
	Type       string
	ReleasedAt time.Time
}

// UpdateReleaseInput holds the parameters for updating a release.
type UpdateReleaseInput struct {
	Title *string
	Notes *string
	Type  *string
}

// List returns releases newest first.
func (s *ReleaseService) List(ctx context.Context, params pagination.Params) (*pagination.Result[domain.Release], error) {
	cacheKey := s.cache.key(ctx, releaseCacheNamespace,
		fmt.Sprintf("list:%d:%d", params.Size, params.Offset))

	var cached pagination.Result[domain.Release]
	if s.cache.get(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	items, total, err := s.repo.List(ctx, params.Size, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("list releases: %w", err)
	}

	result := pagination.NewResult(items, total, params)
	s.cache.set(ctx, cacheKey, result)

	return &result, nil
}

// Get retrieves a single release.
func (s *ReleaseService) Get(ctx context.Context, id int64) (*domain.Release, error) {
	rel, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return rel, nil
}

// Create stores a new release note. Versions are unique.
func (s *ReleaseService) Create(ctx context.Context, input CreateReleaseInput) (*domain.Release, error) {
	if input.Version == "" {
		return nil, apperrors.InvalidInput("version is required")
	}
	if input.Title == "" {
		return nil, apperrors.InvalidInput("title is required")
	}
	if !domain.IsValidReleaseType(input.Type) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown release type %q", input.Type))
	}

	rel := domain.NewRelease(input.Version, input.Title, input.Notes, input.Type, input.ReleasedAt, time.Now().UTC())

	if err := s.repo.Create(ctx, rel); err != nil {
		return nil, err
	}

	s.cache.bump(ctx, releaseCacheNamespace)

	s.logger.InfoContext(ctx, "release created",
		slog.Int64("release_id", rel.ID),
		slog.String("version", rel.Version),
	)

	return rel, nil
}

// Update modifies release fields. The version is immutable once created.
func (s *ReleaseService) Update(ctx context.Context, id int64, input UpdateReleaseInput) (*domain.Release, error) {
	rel, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, apperrors.InvalidInput("title must not be empty")
		}
		rel.Title = *input.Title
	}
	if input.Notes != nil {
		rel.Notes = *input.Notes
	}
	if input.Type != nil {
		if !domain.IsValidReleaseType(*input.Type) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("unknown release type %q", *input.Type))
		}
		rel.Type = *input.Type
	}

	if err := s.repo.Update(ctx, rel); err != nil {
		return nil, err
	}

	s.cache.bump(ctx, releaseCacheNamespace)

	return rel, nil
}

// Delete removes a release.
func (s *ReleaseService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.bump(ctx, releaseCacheNamespace)

	s.logger.InfoContext(ctx, "release deleted",
		slog.Int64("release_id", id),
	)

	return nil
}
