package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hanxue/hanxue-api/internal/api"
	apiMiddleware "github.com/hanxue/hanxue-api/internal/api/middleware"
	"github.com/hanxue/hanxue-api/internal/api/shared"
)

// routeDeps holds what the router mounts. A nil rateLimiter disables
// rate limiting.
type routeDeps struct {
	logger      *slog.Logger
	auth        *apiMiddleware.AuthMiddleware
	rateLimiter *apiMiddleware.RateLimiter
	health      *api.HealthHandler
	authHandler *api.AuthHandler
	progress    *api.ProgressHandler
	user        *api.UserHandler
}

// newRouter builds the HTTP routing tree.
func newRouter(d routeDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(d.logger))
	r.Use(middleware.Recoverer)
	if d.rateLimiter != nil {
		r.Use(d.rateLimiter.Middleware)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithError(w, r, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/health", d.health.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", d.authHandler.Register)
		r.Post("/auth/login", d.authHandler.Login)
		r.Post("/auth/refresh", d.authHandler.RefreshToken)

		r.Group(func(r chi.Router) {
			r.Use(d.auth.Authenticate)

			r.Route("/progress", func(r chi.Router) {
				r.Post("/review", d.progress.SubmitReview)
				r.Get("/due", d.progress.GetDue)
				r.Get("/new", d.progress.GetNew)
				r.Get("/stats", d.progress.GetStats)
				r.Get("/{vocabId}", d.progress.GetProgress)
			})

			r.Route("/user", func(r chi.Router) {
				r.Delete("/", d.user.DeleteAccount)
				r.Get("/streak", d.user.GetStreak)
				r.Get("/profile", d.user.GetProfile)
				r.Patch("/profile", d.user.UpdateProfile)
				r.Put("/password", d.user.ChangePassword)
			})
		})
	})

	return r
}
