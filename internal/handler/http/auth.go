package http

import (
	"log/slog"
	"net/http"

	"github.com/devportal/backend/internal/domain"
	"github.com/devportal/backend/internal/service"
)

// refreshCookieName is the cookie carrying the opaque refresh token.
const refreshCookieName = "refreshToken"

// refreshCookiePath scopes the cookie to the auth endpoints so it is never
// sent along with ordinary API calls.
const refreshCookiePath = "/api/v1/auth"

// AuthHandler handles HTTP requests for auth endpoints.
type AuthHandler struct {
	service       *service.AuthService
	logger        *slog.Logger
	secureCookies bool
}

// NewAuthHandler creates a new auth HTTP handler. secureCookies marks the
// refresh cookie Secure, which production behind TLS must enable.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger, secureCookies bool) *AuthHandler {
	return &AuthHandler{service: svc, logger: logger, secureCookies: secureCookies}
}

// --- Request DTOs ---

// RegisterRequest is the JSON request body for user registration.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Nickname string `json:"nickname" validate:"required,min=1,max=50"`
}

// LoginRequest is the JSON request body for user login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// --- Response types ---

// AuthResponse carries the user and access token. The refresh token never
// appears in a response body; it travels only in the HttpOnly cookie.
type AuthResponse struct {
	User        *domain.User `json:"user,omitempty"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
}

// --- Handlers ---

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, tokens, err := h.service.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Nickname: req.Nickname,
	})
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	h.setRefreshCookie(w, tokens.RefreshToken)
	writeJSON(w, http.StatusCreated, h.authResponse(user, tokens))
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, tokens, err := h.service.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	h.setRefreshCookie(w, tokens.RefreshToken)
	writeJSON(w, http.StatusOK, h.authResponse(user, tokens))
}

// Refresh handles POST /api/v1/auth/refresh
//
// The presented cookie token is rotated: it is revoked and the response
// cookie carries its single-use replacement.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	tokens, err := h.service.Refresh(r.Context(), h.refreshTokenFromCookie(r))
	if err != nil {
		h.clearRefreshCookie(w)
		writeAppError(w, r, err, h.logger)
		return
	}

	h.setRefreshCookie(w, tokens.RefreshToken)
	writeJSON(w, http.StatusOK, h.authResponse(nil, tokens))
}

// Logout handles POST /api/v1/auth/logout
//
// Always succeeds: revoking an absent, unknown or already-revoked token is a
// no-op, so repeated logouts behave identically.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), h.refreshTokenFromCookie(r)); err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	h.clearRefreshCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// LogoutAll handles POST /api/v1/auth/logout-all
func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeProblem(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}

	if err := h.service.LogoutAll(r.Context(), p.UserID); err != nil {
		writeAppError(w, r, err, h.logger)
		return
	}

	h.clearRefreshCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "all sessions logged out"})
}

// --- Helpers ---

func (h *AuthHandler) authResponse(user *domain.User, tokens *domain.TokenPair) AuthResponse {
	return AuthResponse{
		User:        user,
		AccessToken: tokens.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.service.AccessExpiry().Seconds()),
	}
}

func (h *AuthHandler) refreshTokenFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     refreshCookiePath,
		MaxAge:   int(h.service.RefreshExpiry().Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}
