package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/devportal/backend/internal/auth"
	"github.com/devportal/backend/internal/domain"
	"github.com/devportal/backend/internal/event"
	"github.com/devportal/backend/internal/service"
	apperrors "github.com/devportal/backend/pkg/errors"
	pkgkafka "github.com/devportal/backend/pkg/kafka"
)

// ============================================================================
// Mock Repositories
// ============================================================================

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type mockRefreshTokenRepo struct {
	mock.Mock
}

func (m *mockRefreshTokenRepo) Create(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) (*domain.RefreshToken, error) {
	args := m.Called(ctx, userID, tokenHash, expiresAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefreshToken), args.Error(1)
}

func (m *mockRefreshTokenRepo) GetActiveByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefreshToken), args.Error(1)
}

func (m *mockRefreshTokenRepo) Rotate(ctx context.Context, oldHash string, userID int64, newHash string, expiresAt time.Time) (*domain.RefreshToken, error) {
	args := m.Called(ctx, oldHash, userID, newHash, expiresAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefreshToken), args.Error(1)
}

func (m *mockRefreshTokenRepo) Revoke(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

func (m *mockRefreshTokenRepo) RevokeAllByUser(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type mockAPIKeyRepo struct {
	mock.Mock
}

func (m *mockAPIKeyRepo) Create(ctx context.Context, key *domain.APIKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *mockAPIKeyRepo) GetByHash(ctx context.Context, keyHash string) (*domain.APIKey, error) {
	args := m.Called(ctx, keyHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.APIKey), args.Error(1)
}

func (m *mockAPIKeyRepo) GetByIDAndUser(ctx context.Context, id, userID int64) (*domain.APIKey, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.APIKey), args.Error(1)
}

func (m *mockAPIKeyRepo) ListByUser(ctx context.Context, userID int64) ([]domain.APIKey, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.APIKey), args.Error(1)
}

func (m *mockAPIKeyRepo) CountByUser(ctx context.Context, userID int64) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *mockAPIKeyRepo) TouchLastUsed(ctx context.Context, id int64, usedAt time.Time) error {
	args := m.Called(ctx, id, usedAt)
	return args.Error(0)
}

func (m *mockAPIKeyRepo) Delete(ctx context.Context, id, userID int64) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// ============================================================================
// Test Helpers
// ============================================================================

const testUserID int64 = 1234

func testEventProducer() *event.Producer {
	logger := newTestLogger()
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	return event.NewProducer(pkgkafka.NewProducer(kafkaCfg, logger), logger)
}

func testHasher() *auth.Hasher {
	return auth.NewHasherWithCost(bcrypt.MinCost)
}

func testJWTManager() *auth.JWTManager {
	return auth.NewJWTManager("test-secret-key-for-testing", 15*time.Minute)
}

func sampleProfileUser(t *testing.T, password string) *domain.User {
	t.Helper()

	hash, err := testHasher().HashPassword(password)
	require.NoError(t, err)

	now := time.Now().UTC()
	return &domain.User{
		ID:           testUserID,
		Email:        "alice@example.com",
		PasswordHash: hash,
		Nickname:     "alice",
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// setupUserRouter mirrors the production routes for profile and API key
// endpoints, authenticating with a real access token.
func setupUserRouter(t *testing.T, userHandler *UserHandler, keyHandler *APIKeyHandler, keyService *service.APIKeyService) (*chi.Mux, string) {
	t.Helper()

	jwtManager := testJWTManager()
	token, err := jwtManager.GenerateAccessToken(testUserID, "alice@example.com", domain.RoleUser)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Route("/api/v1/users/me", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(Identity(jwtManager, keyService))
		r.Use(RequireAuth)

		r.Get("/", userHandler.GetProfile)
		r.Patch("/", userHandler.UpdateProfile)
		r.Post("/password", userHandler.ChangePassword)
	})
	r.Route("/api/v1/api-keys", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(Identity(jwtManager, keyService))
		r.Use(RequireAuth)

		r.Get("/", keyHandler.List)
		r.Post("/", keyHandler.Create)
		r.Delete("/{id}", keyHandler.Delete)
	})

	return r, token
}

type userHandlerFixture struct {
	userRepo   *mockUserRepo
	tokenRepo  *mockRefreshTokenRepo
	keyRepo    *mockAPIKeyRepo
	router     *chi.Mux
	authHeader string
}

func newUserHandlerFixture(t *testing.T) *userHandlerFixture {
	t.Helper()

	logger := newTestLogger()
	userRepo := new(mockUserRepo)
	tokenRepo := new(mockRefreshTokenRepo)
	keyRepo := new(mockAPIKeyRepo)

	userService := service.NewUserService(userRepo, tokenRepo, testHasher(), testEventProducer(), logger)
	keyService := service.NewAPIKeyService(keyRepo, userRepo, logger)

	router, token := setupUserRouter(t,
		NewUserHandler(userService, logger),
		NewAPIKeyHandler(keyService, logger),
		keyService,
	)

	return &userHandlerFixture{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		keyRepo:    keyRepo,
		router:     router,
		authHeader: "Bearer " + token,
	}
}

func (f *userHandlerFixture) do(method, path string, body any) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		buf, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(buf))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Authorization", f.authHeader)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

// ============================================================================
// Profile Tests
// ============================================================================

func TestGetProfile_Success(t *testing.T) {
	f := newUserHandlerFixture(t)
	user := sampleProfileUser(t, "Correct1Password")
	f.userRepo.On("GetByID", mock.Anything, testUserID).Return(user, nil)

	rec := f.do(http.MethodGet, "/api/v1/users/me", nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var got domain.User
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Equal(t, "alice", got.Nickname)
	assert.NotContains(t, rec.Body.String(), user.PasswordHash)
	f.userRepo.AssertExpectations(t)
}

func TestGetProfile_Unauthenticated(t *testing.T) {
	f := newUserHandlerFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
}

func TestGetProfile_NotFound(t *testing.T) {
	f := newUserHandlerFixture(t)
	f.userRepo.On("GetByID", mock.Anything, testUserID).
		Return(nil, apperrors.NotFound("user", "1234"))

	rec := f.do(http.MethodGet, "/api/v1/users/me", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestUpdateProfile_Success(t *testing.T) {
	f := newUserHandlerFixture(t)
	user := sampleProfileUser(t, "Correct1Password")
	f.userRepo.On("GetByID", mock.Anything, testUserID).Return(user, nil)
	f.userRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Nickname == "new-nick"
	})).Return(nil)

	rec := f.do(http.MethodPatch, "/api/v1/users/me", map[string]string{"nickname": "new-nick"})

	assert.Equal(t, http.StatusOK, rec.Code)

	var got domain.User
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "new-nick", got.Nickname)
	f.userRepo.AssertExpectations(t)
}

func TestUpdateProfile_EmptyNickname_Returns400(t *testing.T) {
	f := newUserHandlerFixture(t)
	user := sampleProfileUser(t, "Correct1Password")
	f.userRepo.On("GetByID", mock.Anything, testUserID).Return(user, nil)

	rec := f.do(http.MethodPatch, "/api/v1/users/me", map[string]string{"nickname": ""})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_INPUT")
	f.userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestChangePassword_Success(t *testing.T) {
	f := newUserHandlerFixture(t)
	user := sampleProfileUser(t, "Correct1Password")
	f.userRepo.On("GetByID", mock.Anything, testUserID).Return(user, nil)
	f.userRepo.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.tokenRepo.On("RevokeAllByUser", mock.Anything, testUserID).Return(nil)

	rec := f.do(http.MethodPost, "/api/v1/users/me/password", map[string]string{
		"current_password": "Correct1Password",
		"new_password":     "Brand2NewPassword",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	f.tokenRepo.AssertExpectations(t)
}

func TestChangePassword_WrongCurrent_Returns401(t *testing.T) {
	f := newUserHandlerFixture(t)
	user := sampleProfileUser(t, "Correct1Password")
	f.userRepo.On("GetByID", mock.Anything, testUserID).Return(user, nil)

	rec := f.do(http.MethodPost, "/api/v1/users/me/password", map[string]string{
		"current_password": "Wrong1Password",
		"new_password":     "Brand2NewPassword",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	f.userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

// ============================================================================
// API Key Tests
// ============================================================================

func TestCreateAPIKey_Success(t *testing.T) {
	f := newUserHandlerFixture(t)
	f.keyRepo.On("CountByUser", mock.Anything, testUserID).Return(0, nil)
	f.keyRepo.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.APIKey).ID = 7
		}).
		Return(nil)

	rec := f.do(http.MethodPost, "/api/v1/api-keys", map[string]string{"name": "ci"})

	assert.Equal(t, http.StatusCreated, rec.Code)

	assert.Contains(t, rec.Body.String(), `"secretOnce"`)

	var resp CreateAPIKeyResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, int64(7), resp.Key.ID)
	assert.Regexp(t, `^sk_[0-9a-f]{64}$`, resp.SecretOnce)
	f.keyRepo.AssertExpectations(t)
}

func TestCreateAPIKey_LimitExceeded_Returns400(t *testing.T) {
	f := newUserHandlerFixture(t)
	f.keyRepo.On("CountByUser", mock.Anything, testUserID).Return(10, nil)

	rec := f.do(http.MethodPost, "/api/v1/api-keys", map[string]string{"name": "one-too-many"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "KEY_LIMIT_EXCEEDED")
	f.keyRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestListAPIKeys_OmitsHashes(t *testing.T) {
	f := newUserHandlerFixture(t)
	f.keyRepo.On("ListByUser", mock.Anything, testUserID).Return([]domain.APIKey{
		{ID: 1, UserID: testUserID, Name: "ci", DisplayPrefix: "sk_12345...", KeyHash: "super-secret-hash"},
	}, nil)

	rec := f.do(http.MethodGet, "/api/v1/api-keys", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sk_12345...")
	assert.NotContains(t, rec.Body.String(), "super-secret-hash")
}

func TestDeleteAPIKey_Success(t *testing.T) {
	f := newUserHandlerFixture(t)
	f.keyRepo.On("Delete", mock.Anything, int64(7), testUserID).Return(nil)

	rec := f.do(http.MethodDelete, "/api/v1/api-keys/7", nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	f.keyRepo.AssertExpectations(t)
}

func TestDeleteAPIKey_NonNumericID_Returns400(t *testing.T) {
	f := newUserHandlerFixture(t)

	rec := f.do(http.MethodDelete, "/api/v1/api-keys/not-a-number", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.keyRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}
