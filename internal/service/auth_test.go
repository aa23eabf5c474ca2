package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/devportal/backend/internal/auth"
	"github.com/devportal/backend/internal/domain"
	apperrors "github.com/devportal/backend/pkg/errors"
)

const testRefreshExpiry = 14 * 24 * time.Hour

func newTestAuthService(userRepo *mockUserRepository, tokenRepo *mockRefreshTokenRepository) *AuthService {
	return NewAuthService(
		userRepo,
		tokenRepo,
		newTestJWTManager(),
		newTestHasher(),
		newTestEventProducer(),
		newTestLogger(),
		testRefreshExpiry,
	)
}

func testUser(t *testing.T, password string) *domain.User {
	t.Helper()
	hash, err := newTestHasher().HashPassword(password)
	require.NoError(t, err)
	u := domain.NewUser("alice@example.com", hash, "alice", time.Now().UTC())
	u.ID = 1234
	return u
}

// --- Register ---

func TestRegister_Success(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc := newTestAuthService(userRepo, tokenRepo)
	ctx := context.Background()

	userRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.User).ID = 1234
		}).Return(nil)
	tokenRepo.On("Create", ctx, int64(1234), mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
		Return(&domain.RefreshToken{ID: 1, UserID: 1234}, nil)

	user, tokens, err := svc.Register(ctx, RegisterInput{
		Email:    "alice@example.com",
		Password: "SecurePass123",
		Nickname: "alice",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1234), user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.NotEqual(t, "SecurePass123", user.PasswordHash)

	userRepo.AssertExpectations(t)
	tokenRepo.AssertExpectations(t)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc := newTestAuthService(userRepo, tokenRepo)
	ctx := context.Background()

	userRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).
		Return(apperrors.DuplicateCredential("email is already registered"))

	user, tokens, err := svc.Register(ctx, RegisterInput{
		Email:    "alice@example.com",
		Password: "SecurePass123",
		Nickname: "alice",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrDuplicateCredential))
	assert.Nil(t, user)
	assert.Nil(t, tokens)

	userRepo.AssertExpectations(t)
	tokenRepo.AssertNotCalled(t, "Create")
}

func TestRegister_WeakPassword(t *testing.T) {
	svc := newTestAuthService(new(mockUserRepository), new(mockRefreshTokenRepository))

	tests := []struct {
		name     string
		password string
	}{
		{"too short", "Ab1"},
		{"no uppercase", "securepass123"},
		{"no lowercase", "SECUREPASS123"},
		{"no digit", "SecurePassword"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Register(context.Background(), RegisterInput{
				Email:    "alice@example.com",
				Password: tt.password,
				Nickname: "alice",
			})
			assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
		})
	}
}

// --- Login ---

func TestLogin_Success(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc := newTestAuthService(userRepo, tokenRepo)
	ctx := context.Background()

	user := testUser(t, "SecurePass123")
	userRepo.On("GetByEmail", ctx, "alice@example.com").Return(user, nil)
	tokenRepo.On("Create", ctx, user.ID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
		Return(&domain.RefreshToken{ID: 1, UserID: user.ID}, nil)

	got, tokens, err := svc.Login(ctx, LoginInput{Email: "alice@example.com", Password: "SecurePass123"})

	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	userRepo.AssertExpectations(t)
	tokenRepo.AssertExpectations(t)
}

// Unknown email and wrong password must be indistinguishable to the caller.
func TestLogin_UnknownEmailAndWrongPasswordMatch(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc := newTestAuthService(userRepo, tokenRepo)
	ctx := context.Background()

	user := testUser(t, "SecurePass123")
	userRepo.On("GetByEmail", ctx, "nobody@example.com").Return(nil, apperrors.ErrNotFound)
	userRepo.On("GetByEmail", ctx, "alice@example.com").Return(user, nil)

	_, _, errUnknown := svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "SecurePass123"})
	_, _, errWrongPw := svc.Login(ctx, LoginInput{Email: "alice@example.com", Password: "WrongPass123"})

	require.Error(t, errUnknown)
	require.Error(t, errWrongPw)
	assert.True(t, errors.Is(errUnknown, apperrors.ErrInvalidCredentials))
	assert.True(t, errors.Is(errWrongPw, apperrors.ErrInvalidCredentials))
	assert.Equal(t, errUnknown.Error(), errWrongPw.Error())

	tokenRepo.AssertNotCalled(t, "Create")
}

// --- Refresh ---

func TestRefresh_Success(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc := newTestAuthService(userRepo, tokenRepo)
	ctx := context.Background()

	user := testUser(t, "SecurePass123")
	raw, err := auth.NewRefreshTokenValue()
	require.NoError(t, err)
	oldHash := auth.HashLookupSecret(raw)

	stored := &domain.RefreshToken{
		ID:        42,
		UserID:    user.ID,
		TokenHash: oldHash,
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}

	tokenRepo.On("GetActiveByHash", ctx, oldHash).Return(stored, nil)
	tokenRepo.On("Rotate", ctx, oldHash, user.ID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
		Return(&domain.RefreshToken{ID: 43, UserID: user.ID}, nil)
	userRepo.On("GetByID", ctx, user.ID).Return(user, nil)

	tokens, err := svc.Refresh(ctx, raw)

	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.NotEqual(t, raw, tokens.RefreshToken)

	userRepo.AssertExpectations(t)
	tokenRepo.AssertExpectations(t)
}

// A rotated token is single use: the second presentation loses the
// conditional revoke and is rejected.
func TestRefresh_ReusedTokenRejected(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc := newTestAuthService(userRepo, tokenRepo)
	ctx := context.Background()

	raw, err := auth.NewRefreshTokenValue()
	require.NoError(t, err)
	oldHash := auth.HashLookupSecret(raw)

	stored := &domain.RefreshToken{
		ID:        42,
		UserID:    1234,
		TokenHash: oldHash,
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}

	tokenRepo.On("GetActiveByHash", ctx, oldHash).Return(stored, nil)
	tokenRepo.On("Rotate", ctx, oldHash, int64(1234), mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
		Return(nil, apperrors.ErrInvalidToken)

	tokens, err := svc.Refresh(ctx, raw)

	assert.Nil(t, tokens)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidToken))
	userRepo.AssertNotCalled(t, "GetByID")
}

func TestRefresh_ExpiredToken(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc := newTestAuthService(userRepo, tokenRepo)
	ctx := context.Background()

	raw, err := auth.NewRefreshTokenValue()
	require.NoError(t, err)
	oldHash := auth.HashLookupSecret(raw)

	stored := &domain.RefreshToken{
		ID:        42,
		UserID:    1234,
		TokenHash: oldHash,
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	}

	tokenRepo.On("GetActiveByHash", ctx, oldHash).Return(stored, nil)

	tokens, err := svc.Refresh(ctx, raw)

	assert.Nil(t, tokens)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidToken))
	tokenRepo.AssertNotCalled(t, "Rotate")
}

func TestRefresh_UnknownToken(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc := newTestAuthService(userRepo, tokenRepo)
	ctx := context.Background()

	tokenRepo.On("GetActiveByHash", ctx, mock.AnythingOfType("string")).
		Return(nil, apperrors.ErrNotFound)

	tokens, err := svc.Refresh(ctx, "bogus-token")

	assert.Nil(t, tokens)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidToken))
}

func TestRefresh_EmptyToken(t *testing.T) {
	svc := newTestAuthService(new(mockUserRepository), new(mockRefreshTokenRepository))

	tokens, err := svc.Refresh(context.Background(), "")

	assert.Nil(t, tokens)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidToken))
}

// --- Logout ---

func TestLogout_Idempotent(t *testing.T) {
	tokenRepo := new(mockRefreshTokenRepository)
	svc := newTestAuthService(new(mockUserRepository), tokenRepo)
	ctx := context.Background()

	raw, err := auth.NewRefreshTokenValue()
	require.NoError(t, err)
	hash := auth.HashLookupSecret(raw)

	// The repository revoke is a no-op for unknown hashes, so repeated
	// logouts with the same token all succeed.
	tokenRepo.On("Revoke", ctx, hash).Return(nil).Twice()

	require.NoError(t, svc.Logout(ctx, raw))
	require.NoError(t, svc.Logout(ctx, raw))

	tokenRepo.AssertExpectations(t)
}

func TestLogout_NoCookieIsNoOp(t *testing.T) {
	tokenRepo := new(mockRefreshTokenRepository)
	svc := newTestAuthService(new(mockUserRepository), tokenRepo)

	require.NoError(t, svc.Logout(context.Background(), ""))
	tokenRepo.AssertNotCalled(t, "Revoke")
}

func TestLogoutAll(t *testing.T) {
	tokenRepo := new(mockRefreshTokenRepository)
	svc := newTestAuthService(new(mockUserRepository), tokenRepo)
	ctx := context.Background()

	tokenRepo.On("RevokeAllByUser", ctx, int64(1234)).Return(nil)

	require.NoError(t, svc.LogoutAll(ctx, 1234))
	tokenRepo.AssertExpectations(t)
}
