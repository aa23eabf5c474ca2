package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode"

	"github.com/devportal/backend/internal/auth"
	"github.com/devportal/backend/internal/domain"
	"github.com/devportal/backend/internal/event"
	"github.com/devportal/backend/internal/repository"
	apperrors "github.com/devportal/backend/pkg/errors"
)

// minPasswordLength is the minimum password length required.
const minPasswordLength = 8

// AuthService implements credential lifecycle operations: registration,
// login, refresh token rotation and logout.
type AuthService struct {
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	jwtManager       *auth.JWTManager
	hasher           *auth.Hasher
	producer         *event.Producer
	logger           *slog.Logger
	refreshExpiry    time.Duration
}

// NewAuthService creates a new auth service.
func NewAuthService(
	userRepo repository.UserRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	jwtManager *auth.JWTManager,
	hasher *auth.Hasher,
	producer *event.Producer,
	logger *slog.Logger,
	refreshExpiry time.Duration,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		jwtManager:       jwtManager,
		hasher:           hasher,
		producer:         producer,
		logger:           logger,
		refreshExpiry:    refreshExpiry,
	}
}

// RefreshExpiry returns the refresh token TTL, which also bounds the cookie
// lifetime.
func (s *AuthService) RefreshExpiry() time.Duration {
	return s.refreshExpiry
}

// AccessExpiry returns the access token TTL.
func (s *AuthService) AccessExpiry() time.Duration {
	return s.jwtManager.AccessExpiry()
}

// RegisterInput holds the parameters for registering a new user.
type RegisterInput struct {
	Email    string
	Password string
	Nickname string
}

// LoginInput holds the parameters for user login.
type LoginInput struct {
	Email    string
	Password string
}

// Register creates a new user account, hashes the password, and returns the
// user with a fresh token pair.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, *domain.TokenPair, error) {
	if input.Email == "" {
		return nil, nil, apperrors.InvalidInput("email is required")
	}
	if input.Nickname == "" {
		return nil, nil, apperrors.InvalidInput("nickname is required")
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, nil, err
	}

	hashedPassword, err := s.hasher.HashPassword(input.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	user := domain.NewUser(input.Email, hashedPassword, input.Nickname, time.Now().UTC())

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("create user: %w", err)
	}

	tokens, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("issue tokens: %w", err)
	}

	// Publish registration event (non-blocking on failure).
	if err := s.producer.PublishUserRegistered(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.Int64("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, tokens, nil
}

// Login authenticates a user with email and password, returning a token pair.
// Unknown email and wrong password fail with the same error so the response
// never reveals whether an account exists.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*domain.User, *domain.TokenPair, error) {
	if input.Email == "" {
		return nil, nil, apperrors.InvalidInput("email is required")
	}
	if input.Password == "" {
		return nil, nil, apperrors.InvalidInput("password is required")
	}

	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, nil, apperrors.InvalidCredentials()
	}

	if !s.hasher.VerifyPassword(input.Password, user.PasswordHash) {
		return nil, nil, apperrors.InvalidCredentials()
	}

	tokens, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("issue tokens: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.Int64("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, tokens, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued. A token can be rotated at most once; presenting it again
// fails, which covers both replay and concurrent rotation races.
func (s *AuthService) Refresh(ctx context.Context, rawRefreshToken string) (*domain.TokenPair, error) {
	if rawRefreshToken == "" {
		return nil, apperrors.InvalidToken()
	}

	oldHash := auth.HashLookupSecret(rawRefreshToken)

	stored, err := s.refreshTokenRepo.GetActiveByHash(ctx, oldHash)
	if err != nil {
		return nil, apperrors.InvalidToken()
	}

	now := time.Now().UTC()
	if !stored.IsValid(now) {
		return nil, apperrors.InvalidToken()
	}

	newRaw, err := auth.NewRefreshTokenValue()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	newHash := auth.HashLookupSecret(newRaw)

	if _, err := s.refreshTokenRepo.Rotate(ctx, oldHash, stored.UserID, newHash, now.Add(s.refreshExpiry)); err != nil {
		return nil, err
	}

	// Fetch the user for current email and role in the new access token.
	user, err := s.userRepo.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user for token refresh: %w", err)
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	s.logger.InfoContext(ctx, "tokens refreshed",
		slog.Int64("user_id", user.ID),
	)

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRaw,
	}, nil
}

// Logout revokes the presented refresh token. Missing, unknown and
// already-revoked tokens all succeed, so logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, rawRefreshToken string) error {
	if rawRefreshToken == "" {
		return nil
	}

	if err := s.refreshTokenRepo.Revoke(ctx, auth.HashLookupSecret(rawRefreshToken)); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}

	return nil
}

// LogoutAll revokes every active refresh token for the user, ending all of
// their sessions.
func (s *AuthService) LogoutAll(ctx context.Context, userID int64) error {
	if err := s.refreshTokenRepo.RevokeAllByUser(ctx, userID); err != nil {
		return fmt.Errorf("revoke all refresh tokens: %w", err)
	}

	if err := s.producer.PublishUserLoggedOutAll(ctx, userID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.logged_out_all event",
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "all sessions revoked",
		slog.Int64("user_id", userID),
	)

	return nil
}

// issueTokenPair creates an access token and a fresh opaque refresh token,
// storing only the refresh token's hash.
func (s *AuthService) issueTokenPair(ctx context.Context, user *domain.User) (*domain.TokenPair, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	rawRefresh, err := auth.NewRefreshTokenValue()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	expiresAt := time.Now().UTC().Add(s.refreshExpiry)
	if _, err := s.refreshTokenRepo.Create(ctx, user.ID, auth.HashLookupSecret(rawRefresh), expiresAt); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: rawRefresh,
	}, nil
}

// validatePassword checks that the password meets minimum complexity requirements.
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperrors.InvalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	var hasUpper, hasLower, hasDigit bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		}
	}

	if !hasUpper || !hasLower || !hasDigit {
		return apperrors.InvalidInput("password must contain at least one uppercase letter, one lowercase letter, and one digit")
	}

	return nil
}
