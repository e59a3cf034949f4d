package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"horoscope/internal/apperr"
	"horoscope/internal/config"
	"horoscope/internal/logger"
)

// Authorizer decides whether a caller holds a capability.
type Authorizer interface {
	Allow(ctx context.Context, p Principal) bool
}

// EmailSuffixAuthorizer admits callers whose email ends with one of the
// suffixes, compared case-insensitively.
type EmailSuffixAuthorizer []string

func (s EmailSuffixAuthorizer) Allow(_ context.Context, p Principal) bool {
	email := strings.ToLower(strings.TrimSpace(p.Email))
	if email == "" {
		return false
	}
	for _, suffix := range s {
		if suffix = strings.ToLower(strings.TrimSpace(suffix)); suffix != "" && strings.HasSuffix(email, suffix) {
			return true
		}
	}
	return false
}

// PolicyAuthorizer grants admin to the user ids and email suffixes of an
// AccessPolicy, and answers role checks from its roles table.
type PolicyAuthorizer struct {
	Policy *config.AccessPolicy
}

func (a PolicyAuthorizer) Allow(ctx context.Context, p Principal) bool {
	if a.Policy == nil {
		return false
	}
	if slices.Contains(a.Policy.Admin.UserIDs, p.UserID) {
		return true
	}
	return EmailSuffixAuthorizer(a.Policy.Admin.EmailSuffixes).Allow(ctx, p)
}

func (a PolicyAuthorizer) HasRole(_ context.Context, p Principal, role string) bool {
	if a.Policy == nil {
		return false
	}
	return slices.Contains(a.Policy.Roles[role], p.UserID)
}

// RoleChecker is the pluggable rule behind RequireRole.
type RoleChecker interface {
	HasRole(ctx context.Context, p Principal, role string) bool
}

// AllowAllRoles is the default RoleChecker; no role rules are enforced.
type AllowAllRoles struct{}

func (AllowAllRoles) HasRole(context.Context, Principal, string) bool { return true }

// RequireCapability is the authorization gate for a route group. Anonymous
// callers get AuthRequired, callers the Authorizer refuses get Forbidden.
func RequireCapability(a Authorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFrom(r.Context())
			if !ok {
				apperr.Write(w, r, apperr.ErrAuthRequired)
				return
			}
			if !a.Allow(r.Context(), p) {
				logger.From(r.Context()).Warn("capability denied", logger.Op(r.Method+" "+r.URL.Path))
				apperr.Write(w, r, apperr.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole gates a route on a named role.
func RequireRole(rc RoleChecker, role string) func(http.Handler) http.Handler {
	if rc == nil {
		rc = AllowAllRoles{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFrom(r.Context())
			if !ok {
				apperr.Write(w, r, apperr.ErrAuthRequired)
				return
			}
			if !rc.HasRole(r.Context(), p, role) {
				apperr.Write(w, r, apperr.ErrForbidden.WithMessage("Role "+role+" required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
