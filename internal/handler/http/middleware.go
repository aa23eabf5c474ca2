package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/devportal/backend/internal/auth"
	"github.com/devportal/backend/internal/service"
	"github.com/devportal/backend/pkg/logger"
)

// AuthMethod identifies how a request was authenticated.
type AuthMethod string

const (
	AuthMethodJWT    AuthMethod = "jwt"
	AuthMethodAPIKey AuthMethod = "api_key"
)

// Principal is the authenticated identity attached to the request context by
// the Identity middleware.
type Principal struct {
	UserID   int64
	Email    string
	Role     string
	Method   AuthMethod
	APIKeyID int64
}

type principalContextKey struct{}

// PrincipalFromContext returns the request principal, if any.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(*Principal)
	return p, ok
}

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 {
			ct := r.Header.Get("Content-Type")
			if !strings.HasPrefix(ct, "application/json") {
				writeProblem(w, r, http.StatusUnsupportedMediaType,
					"UNSUPPORTED_MEDIA_TYPE", "Content-Type must be application/json")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// CORSConfig holds configuration for the CORS middleware.
type CORSConfig struct {
	AllowedOrigins []string
	Environment    string
}

// CORS returns a middleware that sets Cross-Origin Resource Sharing headers.
// In development mode (or when AllowedOrigins contains "*"), a wildcard origin
// is used. Otherwise only the explicitly listed origins are allowed.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	allowWildcard := cfg.Environment == "development"
	originSet := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			allowWildcard = true
		}
		originSet[normalizeOrigin(o)] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if allowWildcard {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else if origin != "" {
				if _, ok := originSet[normalizeOrigin(origin)]; ok {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Access-Control-Allow-Credentials", "true")
					w.Header().Set("Vary", "Origin")
				}
			}

			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-API-Key, X-Trace-Id")
			w.Header().Set("Access-Control-Max-Age", "3600")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// OriginGuard rejects cookie-bearing state changes from unknown sites. The
// request passes iff the Origin header or the Referer header's origin matches
// one of the allowed origins. A request carrying neither header is rejected:
// browsers always attach at least one of them to cookie-authenticated
// mutations, so their absence is treated as hostile.
func OriginGuard(allowedOrigins []string) func(http.Handler) http.Handler {
	originSet := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		originSet[normalizeOrigin(o)] = struct{}{}
	}

	allowed := func(raw string) bool {
		if raw == "" {
			return false
		}
		_, ok := originSet[normalizeOrigin(raw)]
		return ok
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !allowed(r.Header.Get("Origin")) && !allowed(r.Header.Get("Referer")) {
				writeProblem(w, r, http.StatusForbidden,
					"FORBIDDEN_ORIGIN", "request origin validation failed")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// normalizeOrigin reduces a URL to a comparable scheme://host[:port] form:
// lowercased, default ports stripped, any path ignored. Referer values
// normalize the same way as Origin values.
func normalizeOrigin(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return strings.ToLower(strings.TrimSuffix(raw, "/"))
	}

	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	port := u.Port()

	if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		port = ""
	}

	if port != "" {
		return scheme + "://" + host + ":" + port
	}
	return scheme + "://" + host
}

// Identity authenticates the request if it carries valid credentials: a
// Bearer access token is checked first, then an X-API-Key header. Absent or
// invalid credentials leave the request anonymous; route guards such as
// RequireAuth decide whether an anonymous request is acceptable.
func Identity(jwtManager *auth.JWTManager, keyService *service.APIKeyService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p := resolvePrincipal(r, jwtManager, keyService); p != nil {
				next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func resolvePrincipal(r *http.Request, jwtManager *auth.JWTManager, keyService *service.APIKeyService) *Principal {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if ok {
			if claims, err := jwtManager.ValidateAccessToken(token); err == nil {
				return &Principal{
					UserID: claims.UserID,
					Email:  claims.Email,
					Role:   claims.Role,
					Method: AuthMethodJWT,
				}
			}
		}
	}

	if rawKey := r.Header.Get("X-API-Key"); rawKey != "" {
		if user, key, err := keyService.ValidateKey(r.Context(), rawKey); err == nil {
			return &Principal{
				UserID:   user.ID,
				Email:    user.Email,
				Role:     user.Role,
				Method:   AuthMethodAPIKey,
				APIKeyID: key.ID,
			}
		}
	}

	return nil
}

func withPrincipal(ctx context.Context, p *Principal) context.Context {
	ctx = context.WithValue(ctx, principalContextKey{}, p)
	ctx = logger.WithUserID(ctx, strconv.FormatInt(p.UserID, 10))

	if l := logger.FromContext(ctx); l != nil {
		ctx = logger.NewContext(ctx, l.With(
			slog.Int64("user_id", p.UserID),
			slog.String("auth_method", string(p.Method)),
		))
	}

	return ctx
}

// RequireAuth rejects requests without an authenticated principal.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFromContext(r.Context()); !ok {
			writeProblem(w, r, http.StatusUnauthorized,
				"UNAUTHORIZED", "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects authenticated requests whose principal lacks the role.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				writeProblem(w, r, http.StatusUnauthorized,
					"UNAUTHORIZED", "authentication required")
				return
			}
			if p.Role != role {
				writeProblem(w, r, http.StatusForbidden,
					"FORBIDDEN", "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
