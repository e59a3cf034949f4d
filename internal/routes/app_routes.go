package routes

import (
	"github.com/go-chi/chi/v5"

	"horoscope/internal/cacheadmin"
	"horoscope/internal/config"
	"horoscope/internal/handlers"
	"horoscope/internal/middleware"
	"horoscope/internal/readingcache"
	"horoscope/internal/repository"
	"horoscope/internal/validation"
)

const (
	loginPath      = "/login"
	onboardingPath = "/onboarding"

	// RoleReader is required for the readings endpoints when the access
	// policy defines it.
	RoleReader = "reader"
)

func RegisterAccountRoutes(router chi.Router, cfg *config.Config, users repository.UserRepository, sessions repository.SessionRepository, cache *readingcache.Cache) {
	h := handlers.NewAccountHandler(users, cache, validation.New())

	router.Group(func(r chi.Router) {
		r.Use(middleware.OptionalJWTAuth(cfg.JWTSecret, sessions))
		r.Use(middleware.RequireAuthenticated(loginPath))
		r.Get("/me", h.Me)
		r.Post("/onboarding", h.CompleteOnboarding)
	})
}

func RegisterReadingRoutes(router chi.Router, cfg *config.Config, users repository.UserRepository, sessions repository.SessionRepository, cache *readingcache.Cache, roles middleware.RoleChecker) {
	h := handlers.NewReadingHandler(cache)

	router.Route("/readings", func(r chi.Router) {
		r.Use(middleware.OptionalJWTAuth(cfg.JWTSecret, sessions))
		r.Use(middleware.RequireAuthenticated(loginPath))
		r.Use(middleware.RequireOnboarding(users, onboardingPath))
		r.Use(middleware.RequireRole(roles, RoleReader))
		r.Get("/today", h.Today)
		r.Get("/{date}", h.ByDate)
	})
}

// RegisterCacheRoutes mounts the admin cache surface. Every method shares
// one authentication step and one capability gate.
func RegisterCacheRoutes(router chi.Router, cfg *config.Config, sessions repository.SessionRepository, admin *cacheadmin.Dispatcher, authz middleware.Authorizer) {
	h := handlers.NewCacheStatsHandler(admin)

	router.Route("/cache/stats", func(r chi.Router) {
		r.Use(middleware.JWTAuth(cfg.JWTSecret, sessions))
		r.Use(middleware.RequireCapability(authz))
		r.Get("/", h.GetStats)
		r.Post("/", h.PostAction)
		r.Delete("/", h.ResetStats)
		r.Patch("/", h.EmergencyFlush)
	})
}
