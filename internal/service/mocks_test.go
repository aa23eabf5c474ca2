package service

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/devportal/backend/internal/auth"
	"github.com/devportal/backend/internal/domain"
	"github.com/devportal/backend/internal/event"
	pkgkafka "github.com/devportal/backend/pkg/kafka"
)

// --- Mock User Repository ---

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepository) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// --- Mock Refresh Token Repository ---

type mockRefreshTokenRepository struct {
	mock.Mock
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) (*domain.RefreshToken, error) {
	args := m.Called(ctx, userID, tokenHash, expiresAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefreshToken), args.Error(1)
}

func (m *mockRefreshTokenRepository) GetActiveByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefreshToken), args.Error(1)
}

func (m *mockRefreshTokenRepository) Rotate(ctx context.Context, oldHash string, userID int64, newHash string, expiresAt time.Time) (*domain.RefreshToken, error) {
	args := m.Called(ctx, oldHash, userID, newHash, expiresAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefreshToken), args.Error(1)
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

func (m *mockRefreshTokenRepository) RevokeAllByUser(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// --- Mock API Key Repository ---

type mockAPIKeyRepository struct {
	mock.Mock
}

func (m *mockAPIKeyRepository) Create(ctx context.Context, key *domain.APIKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *mockAPIKeyRepository) GetByHash(ctx context.Context, keyHash string) (*domain.APIKey, error) {
	args := m.Called(ctx, keyHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.APIKey), args.Error(1)
}

func (m *mockAPIKeyRepository) GetByIDAndUser(ctx context.Context, id, userID int64) (*domain.APIKey, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.APIKey), args.Error(1)
}

func (m *mockAPIKeyRepository) ListByUser(ctx context.Context, userID int64) ([]domain.APIKey, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.APIKey), args.Error(1)
}

func (m *mockAPIKeyRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *mockAPIKeyRepository) TouchLastUsed(ctx context.Context, id int64, usedAt time.Time) error {
	args := m.Called(ctx, id, usedAt)
	return args.Error(0)
}

func (m *mockAPIKeyRepository) Delete(ctx context.Context, id, userID int64) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// --- Mock Announcement Repository ---

type mockAnnouncementRepository struct {
	mock.Mock
}

func (m *mockAnnouncementRepository) Create(ctx context.Context, a *domain.Announcement) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *mockAnnouncementRepository) GetByID(ctx context.Context, id int64) (*domain.Announcement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Announcement), args.Error(1)
}

func (m *mockAnnouncementRepository) ListPublished(ctx context.Context, category string, limit, offset int) ([]domain.Announcement, int, error) {
	args := m.Called(ctx, category, limit, offset)
	return args.Get(0).([]domain.Announcement), args.Int(1), args.Error(2)
}

func (m *mockAnnouncementRepository) ListAll(ctx context.Context, limit, offset int) ([]domain.Announcement, int, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]domain.Announcement), args.Int(1), args.Error(2)
}

func (m *mockAnnouncementRepository) Update(ctx context.Context, a *domain.Announcement) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *mockAnnouncementRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Mock Release Repository ---

type mockReleaseRepository struct {
	mock.Mock
}

func (m *mockReleaseRepository) Create(ctx context.Context, r *domain.Release) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *mockReleaseRepository) GetByID(ctx context.Context, id int64) (*domain.Release, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Release), args.Error(1)
}

func (m *mockReleaseRepository) List(ctx context.Context, limit, offset int) ([]domain.Release, int, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]domain.Release), args.Int(1), args.Error(2)
}

func (m *mockReleaseRepository) Update(ctx context.Context, r *domain.Release) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *mockReleaseRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Mock Plan Repository ---

type mockPlanRepository struct {
	mock.Mock
}

func (m *mockPlanRepository) List(ctx context.Context) ([]domain.Plan, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Plan), args.Error(1)
}

func (m *mockPlanRepository) GetByID(ctx context.Context, id int64) (*domain.Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Plan), args.Error(1)
}

func (m *mockPlanRepository) GetByCode(ctx context.Context, code string) (*domain.Plan, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Plan), args.Error(1)
}

// --- Mock Subscription Repository ---

type mockSubscriptionRepository struct {
	mock.Mock
}

func (m *mockSubscriptionRepository) Create(ctx context.Context, s *domain.Subscription) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockSubscriptionRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subscription), args.Error(1)
}

func (m *mockSubscriptionRepository) Update(ctx context.Context, s *domain.Subscription) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestJWTManager() *auth.JWTManager {
	return auth.NewJWTManager("test-secret-key-for-testing", 15*time.Minute)
}

// newTestHasher uses bcrypt.MinCost to keep password hashing fast in tests.
func newTestHasher() *auth.Hasher {
	return auth.NewHasherWithCost(bcrypt.MinCost)
}

func newTestEventProducer() *event.Producer {
	logger := newTestLogger()
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	kafkaProducer := pkgkafka.NewProducer(kafkaCfg, logger)
	return event.NewProducer(kafkaProducer, logger)
}

func strPtr(s string) *string {
	return &s
}
