package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/auth"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/handlers"
	"github.com/suhejbmusliu/Full-Stack-Blog-Post/internal/middleware"
)

// RegisterRoutes registers all application routes under /api.
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	twoFactorHandler *handlers.TwoFactorHandler,
	recoveryHandler *handlers.RecoveryHandler,
	postHandler *handlers.PostHandler,
	logHandler *handlers.LogHandler,
	contactHandler *handlers.ContactHandler,
	tokens *auth.TokenCodec,
) {
	rateLimitConfig := middleware.DefaultAuthRateLimit()
	authLimiter := middleware.RateLimitByIP(rateLimitConfig)

	router.Route("/api", func(r chi.Router) {
		// Public content routes
		r.Get("/posts", postHandler.ListPublic)
		r.Get("/posts/{slug}", postHandler.GetPublicBySlug)
		r.Get("/categories", postHandler.ListCategories)
		r.Get("/tags", postHandler.ListTags)
		r.With(authLimiter).Post("/contact", contactHandler.Submit)

		r.Route("/auth", func(r chi.Router) {
			// Credential-bearing endpoints share one IP-based limiter.
			r.With(authLimiter).Post("/login", authHandler.Login)
			r.With(authLimiter).Post("/forgot-password", recoveryHandler.ForgotPassword)
			r.With(authLimiter).Post("/reset-password", recoveryHandler.ResetPassword)
			r.With(authLimiter).Post("/2fa-reset/request", recoveryHandler.RequestTwoFactorReset)
			r.With(authLimiter).Post("/2fa-reset/confirm", recoveryHandler.ConfirmTwoFactorReset)

			// Refresh and logout authenticate via the refresh cookie, not the
			// access token.
			r.Post("/refresh", authHandler.Refresh)
			r.Post("/logout", authHandler.Logout)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAuth(tokens))
				r.Get("/me", authHandler.Me)
				r.Post("/2fa/setup", twoFactorHandler.Setup)
				r.Post("/2fa/enable", twoFactorHandler.Enable)
				r.Post("/2fa/disable", twoFactorHandler.Disable)
			})
		})

		// Admin routes - authentication required
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Route("/admin/posts", func(r chi.Router) {
				r.Get("/", postHandler.ListAdmin)
				r.Post("/", postHandler.Create)
				r.Get("/{id}", postHandler.GetByID)
				r.Put("/{id}", postHandler.Update)
				r.Patch("/{id}/status", postHandler.SetStatus)
				r.Delete("/{id}", postHandler.Delete)
			})

			r.Get("/logs", logHandler.List)
		})
	})
}
