package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"horoscope/internal/apperr"
	"horoscope/internal/db"
	"horoscope/internal/models"
)

// UserLoader resolves the caller's account for onboarding checks.
type UserLoader interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// wantsHTML reports whether the request is a browser navigation rather than
// an API call.
func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func redirectTo(w http.ResponseWriter, r *http.Request, target string) {
	u := target + "?next=" + url.QueryEscape(r.URL.RequestURI())
	http.Redirect(w, r, u, http.StatusSeeOther)
}

// RequireAuthenticated lets only authenticated callers through. Browser
// navigations are redirected to loginPath, API calls get AuthRequired.
func RequireAuthenticated(loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := PrincipalFrom(r.Context()); !ok {
				if wantsHTML(r) {
					redirectTo(w, r, loginPath)
					return
				}
				apperr.Write(w, r, apperr.ErrAuthRequired)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireOnboarding lets through callers who completed onboarding; others
// are sent to onboardingPath or get OnboardingRequired. It expects an
// authentication guard ahead of it.
func RequireOnboarding(users UserLoader, onboardingPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFrom(r.Context())
			if !ok {
				apperr.Write(w, r, apperr.ErrAuthRequired)
				return
			}
			u, err := users.GetByID(r.Context(), p.UserID)
			if errors.Is(err, db.ErrNotFound) {
				apperr.Write(w, r, apperr.ErrAuthRequired)
				return
			}
			if err != nil {
				apperr.Write(w, r, err)
				return
			}
			if !u.IsOnboardingComplete() {
				if wantsHTML(r) {
					redirectTo(w, r, onboardingPath)
					return
				}
				apperr.Write(w, r, apperr.ErrOnboardingRequired)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
