package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/vidtube/vidtube-backend/internal/handlers"
	"github.com/vidtube/vidtube-backend/internal/middleware"
	"github.com/vidtube/vidtube-backend/internal/services"
)

// SetupRoutes mounts the user API under /api/v1/users.
func SetupRoutes(r *chi.Mux, tokens *services.TokenService, auth *handlers.AuthHandler, profile *handlers.ProfileHandler, channel *handlers.ChannelHandler) {
	requireAuth := middleware.RequireAuth(tokens, handlers.RespondError)

	r.Route("/api/v1/users", func(r chi.Router) {
		r.Post("/register", auth.Register)
		r.Post("/login", auth.Login)
		r.Post("/refresh-token", auth.Refresh)

		// Secured routes
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/logout", auth.Logout)
			r.Post("/change-password", auth.ChangePassword)
			r.Get("/me", auth.GetMe)
			r.Patch("/me", profile.UpdateProfile)
			r.Get("/c/{username}", channel.GetChannelProfile)
			r.Get("/watch-history", channel.GetWatchHistory)
		})
	})
}
