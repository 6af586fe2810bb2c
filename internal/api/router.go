package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/isdelr/mylibrary-be/internal/api/handlers"
	"github.com/isdelr/mylibrary-be/internal/auth"
	"github.com/isdelr/mylibrary-be/internal/config"
	"github.com/isdelr/mylibrary-be/internal/models"
	"github.com/isdelr/mylibrary-be/internal/services"
)

// NewRouter creates and configures a new Chi router. Guards compose as an
// ordered middleware chain per route group; Access/Refresh always precede
// RequireRoles so a subject id is attached first.
func NewRouter(
	cfg *config.Config,
	guard *auth.Guard,
	sessionService services.SessionServiceProvider,
	userService services.UserServiceProvider,
	bookService services.BookServiceProvider,
	addressService services.AddressServiceProvider,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration for browser clients with cookie credentials
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"}, // Adjust for your frontend URL
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(sessionService, cfg)
	profileHandler := handlers.NewProfileHandler(userService)
	userHandler := handlers.NewUserHandler(userService)
	bookHandler := handlers.NewBookHandler(bookService)
	addressHandler := handlers.NewAddressHandler(addressService)

	// API versioning
	r.Route("/api/v1", func(r chi.Router) {
		// Public authentication endpoints
		r.Post("/register", authHandler.Register)
		r.Get("/verify-email", authHandler.VerifyEmail)
		r.Post("/login", authHandler.Login)
		r.Post("/forgot-password", authHandler.ForgotPassword)
		r.Patch("/reset-password", authHandler.ResetPassword)

		// Refresh-guarded token rotation
		r.Group(func(r chi.Router) {
			r.Use(guard.Refresh)
			r.Get("/refresh-tokens", authHandler.RefreshTokens)
		})

		// Access-guarded session and profile endpoints
		r.Group(func(r chi.Router) {
			r.Use(guard.Access)

			r.Post("/logout", authHandler.Logout)
			r.Patch("/change-password", authHandler.ChangePassword)

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", profileHandler.Get)
				r.Patch("/", profileHandler.Update)
				r.Delete("/", profileHandler.Delete)
			})

			r.Route("/addresses", func(r chi.Router) {
				r.Get("/", addressHandler.GetAll)
				r.Post("/", addressHandler.Create)
				r.Put("/{id}", addressHandler.Update)
				r.Delete("/{id}", addressHandler.Delete)
			})
		})

		// Catalog: reads are public, writes are admin-only
		r.Route("/books", func(r chi.Router) {
			r.Get("/", bookHandler.GetAll)
			r.Get("/{id}", bookHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(guard.Access)
				r.Use(guard.RequireRoles(models.RoleAdmin))
				r.Post("/", bookHandler.Create)
				r.Put("/{id}", bookHandler.Update)
				r.Delete("/{id}", bookHandler.Delete)
			})
		})

		// Admin user management
		r.Route("/users", func(r chi.Router) {
			r.Use(guard.Access)
			r.Use(guard.RequireRoles(models.RoleAdmin))
			r.Get("/", userHandler.GetAll)
			r.Get("/{id}", userHandler.Get)
			r.Delete("/{id}", userHandler.Delete)
		})
	})

	return r
}
