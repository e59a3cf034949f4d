package routes

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"horoscope/internal/cacheadmin"
	"horoscope/internal/config"
	"horoscope/internal/logger"
	"horoscope/internal/metrics"
	"horoscope/internal/middleware"
	"horoscope/internal/readingcache"
	"horoscope/internal/repository"
	"horoscope/internal/services"
	"horoscope/internal/validation"
)

// Deps carries what the router needs beyond the database handle. Nil fields
// are built from DB and Cfg with in-process defaults.
type Deps struct {
	DB      *sql.DB
	Cfg     *config.Config
	Logger  *zap.Logger
	Metrics *metrics.Metrics

	Auth       *services.AuthService
	Cache      *readingcache.Cache
	Admin      *cacheadmin.Dispatcher
	Authorizer middleware.Authorizer

	// Roles answers RequireRole checks; nil enforces no role rules.
	Roles middleware.RoleChecker
}

func SetupRoutes(d Deps) *chi.Mux {
	d = withDefaults(d)

	users := repository.NewUserRepository(d.DB)
	sessions := repository.NewSessionRepository(d.DB)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(middleware.Metrics(d.Metrics))
	r.Use(chimw.Recoverer)
	r.Use(corsHandler(cors.Options{
		AllowedOrigins:   d.Cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}, resetPasswordPath))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"message": "horoscope api"})
	})
	r.Get("/health", healthHandler(d.DB, d.Cache))
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics.Handler())
	}
	RegisterSwaggerRoutes(r)

	r.Route("/api/v1", func(r chi.Router) {
		RegisterAuthRoutes(r, d.Auth, d.Cfg, sessions)
		RegisterAccountRoutes(r, d.Cfg, users, sessions, d.Cache)
		RegisterReadingRoutes(r, d.Cfg, users, sessions, d.Cache, d.Roles)
		RegisterCacheRoutes(r, d.Cfg, sessions, d.Admin, d.Authorizer)
	})

	return r
}

func withDefaults(d Deps) Deps {
	if d.Cfg == nil {
		d.Cfg = &config.Config{}
	}
	if d.Logger == nil {
		d.Logger = logger.L()
	}
	if d.Auth == nil {
		d.Auth = services.NewAuthService(services.AuthDeps{
			Users:     repository.NewUserRepository(d.DB),
			Sessions:  repository.NewSessionRepository(d.DB),
			Tokens:    repository.NewVerificationTokenRepository(d.DB),
			Resets:    repository.NewResetStore(d.DB),
			Hasher:    passwordHasher(d.Cfg),
			Mailer:    NewMailer(d.Cfg),
			Validator: validation.New(),
		}, services.AuthConfig{
			JWTSecret:        d.Cfg.JWTSecret,
			AccessTokenTTL:   time.Duration(d.Cfg.JWTExpiresInSeconds) * time.Second,
			ResetTokenTTL:    d.Cfg.ResetTokenTTL,
			ReturnResetToken: d.Cfg.AuthReturnResetToken,
		})
	}
	if d.Cache == nil {
		d.Cache = readingcache.New(readingcache.Options{
			Backend:  readingcache.NewMemory(d.Cfg.Cache.TTL),
			Users:    repository.NewUserRepository(d.DB),
			Readings: repository.NewReadingRepository(d.DB),
			TTL:      d.Cfg.Cache.TTL,
			Metrics:  d.Metrics,
		})
	}
	if d.Admin == nil {
		d.Admin = cacheadmin.NewDispatcher(d.Cache, nil, d.Metrics)
	}
	if d.Authorizer == nil {
		d.Authorizer = middleware.EmailSuffixAuthorizer{d.Cfg.AdminEmailSuffix}
	}
	return d
}

// corsHandler answers preflights itself except on the passthrough paths,
// whose OPTIONS routes run after the CORS headers are set.
func corsHandler(opts cors.Options, passthrough ...string) func(http.Handler) http.Handler {
	strict := cors.New(opts)
	opts.OptionsPassthrough = true
	relaxed := cors.New(opts)

	return func(next http.Handler) http.Handler {
		strictNext := strict.Handler(next)
		relaxedNext := relaxed.Handler(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if slices.Contains(passthrough, r.URL.Path) {
				relaxedNext.ServeHTTP(w, r)
				return
			}
			strictNext.ServeHTTP(w, r)
		})
	}
}

type componentStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type healthResponse struct {
	Status string          `json:"status"`
	DB     componentStatus `json:"db"`
	Cache  componentStatus `json:"cache"`
}

// healthHandler reports 503 when the database is unreachable. A degraded
// cache is reported but does not fail the check; readings still render.
func healthHandler(db *sql.DB, cache *readingcache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", DB: componentStatus{Status: "ok"}}
		status := http.StatusOK
		if err := db.PingContext(ctx); err != nil {
			resp.Status = "degraded"
			resp.DB = componentStatus{Status: "down", Error: err.Error()}
			status = http.StatusServiceUnavailable
		}
		if cache != nil {
			h := cache.Health(ctx)
			resp.Cache = componentStatus{Status: h.Status, Error: h.Error}
		}
		writeJSON(w, status, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
