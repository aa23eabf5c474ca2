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

const announcementCacheNamespace = "announcements"

// announcementCacheTTL bounds staleness of the public listing between
// explicit invalidations.
const announcementCacheTTL = 5 * time.Minute

// AnnouncementService implements announcement management. The public listing
// is cached in Redis; admin reads always hit the database.
type AnnouncementService struct {
	repo   repository.AnnouncementRepository
	cache  *listCache
	logger *slog.Logger
}

// NewAnnouncementService creates a new announcement service. A nil Redis
// client disables caching.
func NewAnnouncementService(
	repo repository.AnnouncementRepository,
	redisClient *redis.Client,
	logger *slog.Logger,
) *AnnouncementService {
	return &AnnouncementService{
		repo:   repo,
		cache:  newListCache(redisClient, logger, announcementCacheTTL),
		logger: logger,
	}
}

// CreateAnnouncementInput holds the parameters for creating an announcement.
type CreateAnnouncementInput struct {
	Title    string
	Content  string
	Category string
	Publish  bool
}

// UpdateAnnouncementInput holds the parameters for updating an announcement.
type UpdateAnnouncementInput struct {
	Title    *string
	Content  *string
	Category *string
}

// ListPublished returns published announcements for the public endpoint,
// optionally filtered by category.
func (s *AnnouncementService) ListPublished(ctx context.Context, category string, params pagination.Params) (*pagination.Result[domain.Announcement], error) {
	if category != "" && !domain.IsValidAnnouncementCategory(category) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown announcement category %q", category))
	}

	cacheKey := s.cache.key(ctx, announcementCacheNamespace,
		fmt.Sprintf("published:%s:%d:%d", category, params.Size, params.Offset))

	var cached pagination.Result[domain.Announcement]
	if s.cache.get(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	items, total, err := s.repo.ListPublished(ctx, category, params.Size, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("list published announcements: %w", err)
	}

	result := pagination.NewResult(items, total, params)
	s.cache.set(ctx, cacheKey, result)

	return &result, nil
}

// ListAll returns every announcement for the admin endpoint.
func (s *AnnouncementService) ListAll(ctx context.Context, params pagination.Params) (*pagination.Result[domain.Announcement], error) {
	items, total, err := s.repo.ListAll(ctx, params.Size, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}

	result := pagination.NewResult(items, total, params)
	return &result, nil
}

// Get retrieves a single announcement.
func (s *AnnouncementService) Get(ctx context.Context, id int64) (*domain.Announcement, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create stores a new announcement, optionally publishing it immediately.
func (s *AnnouncementService) Create(ctx context.Context, input CreateAnnouncementInput) (*domain.Announcement, error) {
	if input.Title == "" {
		return nil, apperrors.InvalidInput("title is required")
	}
	if input.Content == "" {
		return nil, apperrors.InvalidInput("content is required")
	}
	if !domain.IsValidAnnouncementCategory(input.Category) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown announcement category %q", input.Category))
	}

	now := time.Now().UTC()
	a := domain.NewAnnouncement(input.Title, input.Content, input.Category, now)
	if input.Publish {
		a.Publish(now)
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create announcement: %w", err)
	}

	s.cache.bump(ctx, announcementCacheNamespace)

	s.logger.InfoContext(ctx, "announcement created",
		slog.Int64("announcement_id", a.ID),
		slog.String("category", a.Category),
		slog.Bool("published", a.Published),
	)

	return a, nil
}

// Update modifies announcement fields.
func (s *AnnouncementService) Update(ctx context.Context, id int64, input UpdateAnnouncementInput) (*domain.Announcement, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, apperrors.InvalidInput("title must not be empty")
		}
		a.Title = *input.Title
	}
	if input.Content != nil {
		if *input.Content == "" {
			return nil, apperrors.InvalidInput("content must not be empty")
		}
		a.Content = *input.Content
	}
	if input.Category != nil {
		if !domain.IsValidAnnouncementCategory(*input.Category) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("unknown announcement category %q", *input.Category))
		}
		a.Category = *input.Category
	}
	a.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}

	s.cache.bump(ctx, announcementCacheNamespace)

	return a, nil
}

// SetPublished publishes or unpublishes an announcement. Re-publishing keeps
// the original publish timestamp.
func (s *AnnouncementService) SetPublished(ctx context.Context, id int64, published bool) (*domain.Announcement, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if published {
		a.Publish(now)
	} else {
		a.Unpublish(now)
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}

	s.cache.bump(ctx, announcementCacheNamespace)

	s.logger.InfoContext(ctx, "announcement publish state changed",
		slog.Int64("announcement_id", a.ID),
		slog.Bool("published", a.Published),
	)

	return a, nil
}

// Delete removes an announcement.
func (s *AnnouncementService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.bump(ctx, announcementCacheNamespace)

	s.logger.InfoContext(ctx, "announcement deleted",
		slog.Int64("announcement_id", id),
	)

	return nil
}
