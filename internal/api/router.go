package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/nabil-s/appointly/internal/api/handlers"
	"github.com/nabil-s/appointly/internal/api/middleware"
	"github.com/nabil-s/appointly/internal/config"
	"github.com/nabil-s/appointly/internal/domain"
	"github.com/nabil-s/appointly/internal/service"
)

func NewRouter(services *service.Services, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Appointment Management System is running successfully"))
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","environment":"` + cfg.Environment + `"}`))
	})

	authHandler := handlers.NewAuthHandler(services.Auth, cfg.CookieTTL(), logger, cfg.Environment)
	categoryHandler := handlers.NewCategoryHandler(services.Category, logger, cfg.Environment)

	requireAuth := middleware.RequireAuth(services.Auth, logger, cfg.Environment)
	adminOnly := middleware.RequireRoles(logger, cfg.Environment, domain.RoleAdmin)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/user", func(r chi.Router) {
			r.Route("/users", func(r chi.Router) {
				// Public
				r.Post("/signup", authHandler.Signup)
				r.Post("/login", authHandler.Login)
				r.Get("/activate/{activationToken}", authHandler.Activate)

				// Protected
				r.Group(func(r chi.Router) {
					r.Use(requireAuth)
					r.Post("/logout", authHandler.Logout)
					r.Get("/profile", authHandler.Profile)
					r.Put("/profile", authHandler.UpdateProfile)
					r.Delete("/account", authHandler.DeleteAccount)
				})
			})

			// Public active-category listing; the app issues both verbs.
			// Identity is attached opportunistically when a token is sent.
			r.Group(func(r chi.Router) {
				r.Use(middleware.OptionalAuth(services.Auth))
				r.Get("/categories", categoryHandler.ListActive)
				r.Post("/categories", categoryHandler.ListActive)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAuth, adminOnly)

			r.Route("/categories", func(r chi.Router) {
				r.Post("/", categoryHandler.Create)
				r.Get("/", categoryHandler.List)
				r.Get("/{id}", categoryHandler.Get)
				r.Put("/{id}", categoryHandler.Update)
				r.Delete("/{id}", categoryHandler.Delete)
			})
		})
	})

	return r
}
