package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wayralabs/qosqo/internal/auth"
	"github.com/wayralabs/qosqo/internal/domain"
	"github.com/wayralabs/qosqo/internal/service"
	"github.com/wayralabs/qosqo/internal/session"
	"github.com/wayralabs/qosqo/internal/wishlist"
	"github.com/wayralabs/qosqo/pkg/health"
	"github.com/wayralabs/qosqo/pkg/middleware"
)

// NewRouter creates a chi router with all API routes registered.
func NewRouter(
	sessions *session.Manager,
	experiences *service.ExperienceService,
	wishlistCache *wishlist.Cache,
	jwtManager *auth.JWTManager,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsConfig middleware.CORSConfig,
	pprofAllowedCIDRs []string,
	authRateLimitRPS int,
	authRateLimitBurst int,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Tracing("qosqo-api"))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics("qosqo"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Profiling endpoints, restricted to the allowed CIDRs.
	middleware.RegisterPprof(r, pprofAllowedCIDRs, logger)

	// Public directory endpoints
	experienceHandler := NewExperienceHandler(experiences)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/categories", experienceHandler.Categories)
		r.Get("/experiences", experienceHandler.List)
		r.Get("/experiences/featured", experienceHandler.Featured)
		r.Get("/experiences/{id}", experienceHandler.Get)
	})

	// Token validator that bridges to our internal JWTManager.
	tokenValidator := func(token string) (*middleware.Claims, error) {
		claims, err := jwtManager.ValidateAccessToken(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   claims.Role,
		}, nil
	}

	// Auth endpoints, throttled per client IP.
	authHandler := NewAuthHandler(sessions, logger)
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(middleware.RateLimit(authRateLimitRPS, authRateLimitBurst, logger))

		r.Get("/google/login", authHandler.GoogleLogin)
		r.Get("/google/callback", authHandler.GoogleCallback)

		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)

			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.RefreshToken)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokenValidator))

			r.Post("/logout", authHandler.Logout)
		})
	})

	// Profile and wishlist endpoints (auth required)
	userHandler := NewUserHandler(sessions)
	wishlistHandler := NewWishlistHandler(wishlistCache)

	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(middleware.Auth(tokenValidator))

		r.Get("/me", userHandler.GetMe)

		r.Get("/me/wishlist", wishlistHandler.List)
		r.Post("/me/wishlist/{experienceId}", wishlistHandler.Add)
		r.Delete("/me/wishlist/{experienceId}", wishlistHandler.Remove)
		r.Get("/me/wishlist/{experienceId}", wishlistHandler.Exists)
	})

	// Admin directory management (admin role required)
	adminHandler := NewAdminHandler(experiences)
	r.Route("/api/v1/admin/experiences", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(tokenValidator))
		r.Use(middleware.RequireRole(domain.RoleAdmin))

		r.Post("/", adminHandler.Create)
		r.Put("/{id}", adminHandler.Update)
		r.Delete("/{id}", adminHandler.Delete)
		r.Put("/{id}/featured", adminHandler.SetFeatured)
		r.Put("/{id}/active", adminHandler.SetActive)
	})

	return r
}
