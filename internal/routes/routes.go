package routes

import (
	"log/slog"

	"github.com/BradenHooton/dancingpony/internal/auth"
	"github.com/BradenHooton/dancingpony/internal/handlers"
	"github.com/BradenHooton/dancingpony/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// Dependencies are the collaborators the API routes need
type Dependencies struct {
	UserHandler  *handlers.UserHandler
	DishHandler  *handlers.DishHandler
	AuthHandler  *handlers.AuthHandler
	Guard        auth.CredentialAuthenticator
	TokenManager *auth.TokenManager
	Users        auth.UserRepository
	RateLimit    middleware.RateLimitConfig
	Logger       *slog.Logger
}

// RegisterRoutes registers all application routes
func RegisterRoutes(router chi.Router, deps Dependencies) {
	// Public routes - no authentication required
	router.With(middleware.RateLimitByIP(deps.RateLimit)).Post("/register", deps.UserHandler.Register)
	router.With(
		middleware.RateLimitByIP(deps.RateLimit),
		middleware.RateLimitByLogin(deps.RateLimit),
	).Post("/auth/token", deps.AuthHandler.Token)

	// Protected routes - Basic credentials through the login guard, or a bearer token
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(deps.Guard, deps.TokenManager, deps.Users, deps.Logger))

		r.Get("/me", deps.UserHandler.Me)
		r.Get("/search", deps.DishHandler.SearchDishes)

		r.Route("/dishes", func(r chi.Router) {
			r.Post("/", deps.DishHandler.CreateDish)
			r.Get("/", deps.DishHandler.ListDishes)
			r.Get("/{id}", deps.DishHandler.GetDish)
			r.Put("/{id}", deps.DishHandler.UpdateDish)
			r.Put("/{id}/rate", deps.DishHandler.RateDish)
			r.Delete("/{id}", deps.DishHandler.DeleteDish)
		})
	})
}
