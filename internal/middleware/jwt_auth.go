package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"horoscope/internal/apperr"
	"horoscope/internal/db"
	"horoscope/internal/logger"
	"horoscope/internal/models"
)

type ctxKey string

const ctxPrincipal ctxKey = "principal"

// Principal is the authenticated caller.
type Principal struct {
	UserID    string
	Email     string
	SessionID string
}

// SessionChecker confirms a token's session is still live. Password resets
// delete sessions, which is how they revoke outstanding tokens.
type SessionChecker interface {
	GetValid(ctx context.Context, id string, now time.Time) (*models.Session, error)
}

var errNoToken = errors.New("no bearer token")

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipal, p)
}

// PrincipalFrom returns the caller set by JWTAuth or OptionalJWTAuth.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxPrincipal).(Principal)
	return p, ok && p.UserID != ""
}

// JWTAuth rejects requests without a valid bearer token bound to a live
// session.
func JWTAuth(secret string, sessions SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := authenticate(r, secret, sessions)
			if err != nil {
				apperr.Write(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(withCaller(r.Context(), p)))
		})
	}
}

// OptionalJWTAuth records the caller when a valid token is present and lets
// the request through either way. Route guards decide what to do with it.
func OptionalJWTAuth(secret string, sessions SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := authenticate(r, secret, sessions)
			if err == nil {
				r = r.WithContext(withCaller(r.Context(), p))
			} else if !errors.Is(err, errNoToken) {
				logger.From(r.Context()).Debug("ignoring invalid bearer token", logger.Err(err))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func withCaller(ctx context.Context, p Principal) context.Context {
	ctx = WithPrincipal(ctx, p)
	return logger.ToContext(ctx, logger.From(ctx).With(logger.UserID(p.UserID)))
}

func authenticate(r *http.Request, secret string, sessions SessionChecker) (Principal, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return Principal{}, apperr.ErrAuthRequired.WithCause(errNoToken)
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return Principal{}, apperr.ErrAuthRequired.WithMessage("Invalid Authorization header")
	}
	tokenString := parts[1]

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithLeeway(30*time.Second))
	if err != nil || token == nil || !token.Valid {
		return Principal{}, apperr.ErrAuthRequired.WithMessage("Invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, apperr.ErrAuthRequired.WithMessage("Invalid token claims")
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	sid, _ := claims["sid"].(string)
	if sub == "" {
		return Principal{}, apperr.ErrAuthRequired.WithMessage("Invalid token subject")
	}

	if sessions != nil {
		if sid == "" {
			return Principal{}, apperr.ErrAuthRequired.WithMessage("Invalid token session")
		}
		s, err := sessions.GetValid(r.Context(), sid, time.Now().UTC())
		if errors.Is(err, db.ErrNotFound) || (err == nil && s.UserID != sub) {
			return Principal{}, apperr.ErrAuthRequired.WithMessage("Session expired or revoked")
		}
		if err != nil {
			return Principal{}, err
		}
	}

	return Principal{UserID: sub, Email: email, SessionID: sid}, nil
}
