package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"horoscope/internal/apperr"
	"horoscope/internal/db"
	"horoscope/internal/logger"
	"horoscope/internal/models"
	"horoscope/internal/password"
	"horoscope/internal/repository"
)

type AuthConfig struct {
	JWTSecret        string
	AccessTokenTTL   time.Duration
	ResetTokenTTL    time.Duration
	ReturnResetToken bool
}

type AuthService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	tokens   repository.VerificationTokenRepository
	resets   repository.ResetStore
	hasher   password.Hasher
	mailer   EmailSender
	v        *validator.Validate
	cfg      AuthConfig
	now      func() time.Time
}

type AuthDeps struct {
	Users     repository.UserRepository
	Sessions  repository.SessionRepository
	Tokens    repository.VerificationTokenRepository
	Resets    repository.ResetStore
	Hasher    password.Hasher
	Mailer    EmailSender
	Validator *validator.Validate
	Now       func() time.Time
}

func NewAuthService(deps AuthDeps, cfg AuthConfig) *AuthService {
	if cfg.AccessTokenTTL <= 0 {
		cfg.AccessTokenTTL = 24 * time.Hour
	}
	if cfg.ResetTokenTTL <= 0 {
		cfg.ResetTokenTTL = time.Hour
	}
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	if deps.Mailer == nil {
		deps.Mailer = LogSender{}
	}
	return &AuthService{
		users:    deps.Users,
		sessions: deps.Sessions,
		tokens:   deps.Tokens,
		resets:   deps.Resets,
		hasher:   deps.Hasher,
		mailer:   deps.Mailer,
		v:        deps.Validator,
		cfg:      cfg,
		now:      deps.Now,
	}
}

// ResetPassword redeems a verification token. On success the password is
// replaced, every token for the identity is gone and every session of the
// user is revoked, all in one transaction.
//
// Unknown and expired tokens fail identically with ErrTokenInvalid.
func (s *AuthService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (*models.ResetPasswordResponse, error) {
	if err := s.v.Struct(req); err != nil {
		return nil, apperr.FromValidation(err)
	}

	log := logger.From(ctx).With(logger.Op("ResetPassword"))
	now := s.now()

	tok, err := s.tokens.GetValid(ctx, req.Token, now)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.ErrTokenInvalid
		}
		return nil, fmt.Errorf("lookup reset token: %w", err)
	}

	u, err := s.users.GetByEmail(ctx, tok.Identifier)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			log.Warn("reset token outlived its user")
			return nil, apperr.ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	res, err := s.resets.ResetPassword(ctx, repository.ResetPasswordParams{
		UserID:       u.ID,
		Identifier:   tok.Identifier,
		Token:        req.Token,
		PasswordHash: hash,
		VerifiedAt:   now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrTokenRedeemed) {
			return nil, apperr.ErrTokenInvalid
		}
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, fmt.Errorf("commit password reset: %w", err)
	}

	log.Info("password reset completed",
		logger.UserID(u.ID),
		zap.Int64("tokens_deleted", res.TokensDeleted),
		zap.Int64("sessions_revoked", res.SessionsRevoked),
	)
	return &models.ResetPasswordResponse{
		Success: true,
		Message: "Password has been reset. Please sign in with your new password.",
	}, nil
}

// ForgotPasswordResult is only populated with the raw token when
// ReturnResetToken is enabled (development).
type ForgotPasswordResult struct {
	Token     string
	ExpiresIn time.Duration
}

// ForgotPassword issues a reset token and mails it. It reports success for
// unknown addresses too, so callers cannot enumerate accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) (*ForgotPasswordResult, error) {
	if err := s.v.Struct(req); err != nil {
		return nil, apperr.FromValidation(err)
	}
	log := logger.From(ctx).With(logger.Op("ForgotPassword"))

	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			log.Error("lookup user", logger.Err(err))
		}
		return &ForgotPasswordResult{}, nil
	}

	raw, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("generate reset token: %w", err)
	}
	tok := &models.VerificationToken{
		Identifier: strings.ToLower(u.Email),
		Token:      raw,
		Expires:    s.now().Add(s.cfg.ResetTokenTTL),
	}
	if err := s.tokens.Create(ctx, tok); err != nil {
		return nil, fmt.Errorf("store reset token: %w", err)
	}

	body := "Use this token to reset your password:\n\n" + raw +
		"\n\nThis token expires in " + s.cfg.ResetTokenTTL.String() + "."
	if err := s.mailer.Send(u.Email, "Reset your password", body); err != nil {
		log.Error("send reset email", logger.UserID(u.ID), logger.Err(err))
	}

	out := &ForgotPasswordResult{ExpiresIn: s.cfg.ResetTokenTTL}
	if s.cfg.ReturnResetToken {
		out.Token = raw
	}
	return out, nil
}

func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	if err := s.v.Struct(req); err != nil {
		return nil, apperr.FromValidation(err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Name:         req.Name,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, db.ErrConflict) {
			return nil, apperr.ErrConflict.WithMessage("Email already registered")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// SessionMeta describes the client a session is opened for.
type SessionMeta struct {
	UserAgent string
	IP        string
}

// Login verifies credentials, opens a server-side session and returns a
// bearer token bound to it through the "sid" claim.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest, meta SessionMeta) (*models.LoginResponse, error) {
	if err := s.v.Struct(req); err != nil {
		return nil, apperr.FromValidation(err)
	}

	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if err := s.hasher.Compare(u.PasswordHash, req.Password); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("compare password: %w", err)
	}

	now := s.now()
	sess := &models.Session{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		UserAgent: meta.UserAgent,
		IP:        meta.IP,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.AccessTokenTTL),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	claims := jwt.MapClaims{
		"sub":   u.ID,
		"email": u.Email,
		"sid":   sess.ID,
		"iat":   now.Unix(),
		"exp":   sess.ExpiresAt.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &models.LoginResponse{
		AccessToken: signed,
		ExpiresIn:   int64(s.cfg.AccessTokenTTL / time.Second),
		Email:       u.Email,
		Name:        u.Name,
	}, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
