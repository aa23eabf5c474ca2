package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/devportal/backend/internal/auth"
	"github.com/devportal/backend/internal/domain"
	"github.com/devportal/backend/internal/service"
	"github.com/devportal/backend/pkg/health"
	"github.com/devportal/backend/pkg/middleware"
)

// RouterConfig bundles the services and settings the router wires together.
type RouterConfig struct {
	AuthService         *service.AuthService
	UserService         *service.UserService
	APIKeyService       *service.APIKeyService
	AnnouncementService *service.AnnouncementService
	ReleaseService      *service.ReleaseService
	BillingService      *service.BillingService
	JWTManager          *auth.JWTManager
	HealthHandler       *health.Handler
	Logger              *slog.Logger
	CORS                CORSConfig
	SecureCookies       bool
}

// NewRouter creates a chi router with all API routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(CORS(cfg.CORS))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.PrometheusMetrics("api"))

	// Health check endpoints
	r.Get("/health/live", cfg.HealthHandler.LivenessHandler())
	r.Get("/health/ready", cfg.HealthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	authHandler := NewAuthHandler(cfg.AuthService, cfg.Logger, cfg.SecureCookies)
	userHandler := NewUserHandler(cfg.UserService, cfg.Logger)
	apiKeyHandler := NewAPIKeyHandler(cfg.APIKeyService, cfg.Logger)
	announcementHandler := NewAnnouncementHandler(cfg.AnnouncementService, cfg.Logger)
	releaseHandler := NewReleaseHandler(cfg.ReleaseService, cfg.Logger)
	billingHandler := NewBillingHandler(cfg.BillingService, cfg.Logger)

	identity := Identity(cfg.JWTManager, cfg.APIKeyService)
	originGuard := OriginGuard(cfg.CORS.AllowedOrigins)

	r.Route("/api/v1", func(r chi.Router) {
		// Auth endpoints. The cookie-bearing routes additionally require a
		// matching Origin or Referer header.
		r.Route("/auth", func(r chi.Router) {
			r.Use(ContentTypeJSON)

			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(originGuard)

				r.Post("/refresh", authHandler.Refresh)
				r.Post("/logout", authHandler.Logout)
			})

			r.Group(func(r chi.Router) {
				r.Use(identity)
				r.Use(RequireAuth)

				r.Post("/logout-all", authHandler.LogoutAll)
			})
		})

		// Public content endpoints
		r.Get("/announcements", announcementHandler.ListPublished)
		r.Get("/announcements/{id}", announcementHandler.Get)
		r.Get("/releases", releaseHandler.List)
		r.Get("/releases/{id}", releaseHandler.Get)
		r.Get("/billing/plans", billingHandler.ListPlans)

		// Profile endpoints (auth required)
		r.Route("/users/me", func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Use(identity)
			r.Use(RequireAuth)

			r.Get("/", userHandler.GetProfile)
			r.Patch("/", userHandler.UpdateProfile)
			r.Post("/password", userHandler.ChangePassword)
		})

		// API key endpoints (bearer token or existing API key)
		r.Route("/api-keys", func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Use(identity)
			r.Use(RequireAuth)

			r.Get("/", apiKeyHandler.List)
			r.Post("/", apiKeyHandler.Create)
			r.Delete("/{id}", apiKeyHandler.Delete)
		})

		// Subscription endpoints (auth required)
		r.Route("/billing/subscription", func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Use(identity)
			r.Use(RequireAuth)

			r.Get("/", billingHandler.GetSubscription)
			r.Put("/", billingHandler.ChangePlan)
			r.Delete("/", billingHandler.CancelSubscription)
		})

		// Admin endpoints
		r.Route("/admin", func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Use(identity)
			r.Use(RequireAuth)
			r.Use(RequireRole(domain.RoleAdmin))

			r.Get("/announcements", announcementHandler.ListAll)
			r.Post("/announcements", announcementHandler.Create)
			r.Patch("/announcements/{id}", announcementHandler.Update)
			r.Post("/announcements/{id}/publish", announcementHandler.Publish)
			r.Post("/announcements/{id}/unpublish", announcementHandler.Unpublish)
			r.Delete("/announcements/{id}", announcementHandler.Delete)

			r.Post("/releases", releaseHandler.Create)
			r.Patch("/releases/{id}", releaseHandler.Update)
			r.Delete("/releases/{id}", releaseHandler.Delete)
		})
	})

	return r
}
