package routes

import (
	"github.com/go-chi/chi/v5"

	"horoscope/internal/config"
	"horoscope/internal/handlers"
	"horoscope/internal/middleware"
	"horoscope/internal/password"
	"horoscope/internal/repository"
	"horoscope/internal/services"
)

// NewMailer picks SMTP delivery when a host is configured and the log
// sender otherwise.
func NewMailer(cfg *config.Config) services.EmailSender {
	if cfg.SMTPHost == "" {
		return services.LogSender{}
	}
	return &services.SMTPSender{
		Host:   cfg.SMTPHost,
		Port:   cfg.SMTPPort,
		User:   cfg.SMTPUser,
		Pass:   cfg.SMTPPassword,
		From:   cfg.SMTPFrom,
		UseTLS: cfg.SMTPUseTLS,
	}
}

func passwordHasher(cfg *config.Config) password.Hasher {
	return password.Bcrypt{Cost: cfg.BcryptCost}
}

const resetPasswordPath = "/api/v1/auth/reset-password"

func RegisterAuthRoutes(router chi.Router, auth *services.AuthService, cfg *config.Config, sessions repository.SessionRepository) {
	authHandler := handlers.NewAuthHandler(auth)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
		r.Post("/forgot-password", authHandler.ForgotPassword)
		r.Post("/reset-password", authHandler.ResetPassword)
		r.Options("/reset-password", authHandler.ResetPasswordOptions)
		r.With(middleware.JWTAuth(cfg.JWTSecret, sessions)).Post("/logout", authHandler.Logout)
	})
}
