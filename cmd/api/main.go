// @title Horoscope API
// @version 1.0
// @description Accounts, password reset, daily readings and reading cache administration.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"horoscope/internal/audit"
	"horoscope/internal/cacheadmin"
	"horoscope/internal/config"
	"horoscope/internal/db"
	"horoscope/internal/db/migrations"
	"horoscope/internal/logger"
	"horoscope/internal/metrics"
	"horoscope/internal/middleware"
	"horoscope/internal/readingcache"
	"horoscope/internal/repository"
	"horoscope/internal/routes"
)

func main() {
	cfg := config.Load()

	env := "dev"
	if cfg.IsProduction() {
		env = "prod"
	}
	logger.Init(logger.Config{Env: env, Level: cfg.LogLevel, ServiceName: "horoscope-api"})
	defer func() { _ = logger.Sync() }()
	log := logger.L()

	if err := db.EnsureDatabase(context.Background(), cfg.DatabaseURL); err != nil {
		log.Fatal("failed to ensure database exists", zap.Error(err))
	}

	database, err := db.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	if err := migrations.RunMigrations(database.DB); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	ctx := context.Background()

	m, err := metrics.New()
	if err != nil {
		log.Fatal("failed to register metrics", zap.Error(err))
	}

	backend, err := readingcache.NewBackend(ctx, cfg.Cache)
	if err != nil {
		log.Fatal("failed to open reading cache", zap.Error(err), zap.String("driver", cfg.Cache.Driver))
	}
	cache := readingcache.New(readingcache.Options{
		Backend:  backend,
		Users:    repository.NewUserRepository(database.DB),
		Readings: repository.NewReadingRepository(database.DB),
		TTL:      cfg.Cache.TTL,
		Metrics:  m,
	})
	defer cache.Close()

	sink, err := auditSink(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to configure audit sink", zap.Error(err))
	}

	policy, err := config.LoadAccessPolicy(cfg.AccessPolicyFile, cfg.AdminEmailSuffix)
	if err != nil {
		log.Fatal("failed to load access policy", zap.Error(err))
	}

	authz := middleware.PolicyAuthorizer{Policy: policy}
	var roles middleware.RoleChecker
	if _, ok := policy.Roles[routes.RoleReader]; ok {
		roles = authz
	}

	router := routes.SetupRoutes(routes.Deps{
		DB:         database.DB,
		Cfg:        cfg,
		Logger:     log,
		Metrics:    m,
		Cache:      cache,
		Admin:      cacheadmin.NewDispatcher(cache, sink, m),
		Authorizer: authz,
		Roles:      roles,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("port", cfg.Port), zap.String("cache_driver", cfg.Cache.Driver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	// Give in-flight requests 5 seconds.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exiting")
}

// auditSink always logs; with AUDIT_S3_BUCKET set every record is also
// archived to S3.
func auditSink(ctx context.Context, cfg *config.Config, log *zap.Logger) (audit.Sink, error) {
	logSink := audit.LogSink{Logger: log.Named("audit")}
	if cfg.AuditS3Bucket == "" {
		return logSink, nil
	}
	s3cfg, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return audit.MultiSink{logSink, audit.NewS3Sink(s3cfg.Client, s3cfg.Bucket)}, nil
}
