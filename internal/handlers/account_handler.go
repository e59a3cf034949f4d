package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"horoscope/internal/apperr"
	"horoscope/internal/db"
	"horoscope/internal/logger"
	"horoscope/internal/middleware"
	"horoscope/internal/models"
	"horoscope/internal/readingcache"
	"horoscope/internal/repository"
)

// ReadingInvalidator drops cached readings that depend on profile data.
type ReadingInvalidator interface {
	InvalidateUser(ctx context.Context, userID string, dryRun bool) (readingcache.InvalidateResult, error)
}

type AccountHandler struct {
	users       repository.UserRepository
	invalidator ReadingInvalidator
	v           *validator.Validate
}

func NewAccountHandler(users repository.UserRepository, inv ReadingInvalidator, v *validator.Validate) *AccountHandler {
	return &AccountHandler{users: users, invalidator: inv, v: v}
}

type meResponse struct {
	ID                  string     `json:"id"`
	Email               string     `json:"email"`
	Name                string     `json:"name"`
	EmailVerified       *time.Time `json:"email_verified,omitempty"`
	BirthDate           string     `json:"birth_date,omitempty"`
	OnboardingCompleted bool       `json:"onboarding_completed"`
	CreatedAt           time.Time  `json:"created_at"`
}

func toMe(u *models.User) meResponse {
	m := meResponse{
		ID:                  u.ID,
		Email:               u.Email,
		Name:                u.Name,
		EmailVerified:       u.EmailVerified,
		OnboardingCompleted: u.IsOnboardingComplete(),
		CreatedAt:           u.CreatedAt,
	}
	if u.BirthDate != nil {
		m.BirthDate = u.BirthDate.Format(models.DateLayout)
	}
	return m
}

// @Tags Account
// @Summary Current account
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} apperr.AppError
// @Router /api/v1/me [get]
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.currentUser(r)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMe(u))
}

// @Tags Account
// @Summary Complete onboarding
// @Description Stores the birth date readings are computed from. Cached readings of the caller are dropped.
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.OnboardingRequest true "Birth date and name"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} apperr.AppError
// @Failure 401 {object} apperr.AppError
// @Router /api/v1/onboarding [post]
func (h *AccountHandler) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	u, err := h.currentUser(r)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	var req models.OnboardingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apperr.Write(w, r, err)
		return
	}
	if err := h.v.Struct(req); err != nil {
		apperr.Write(w, r, apperr.FromValidation(err))
		return
	}
	birth, err := time.Parse(models.DateLayout, req.BirthDate)
	if err != nil {
		apperr.Write(w, r, apperr.ErrValidationFailed.WithFields(map[string]string{"birth_date": "must be a date in YYYY-MM-DD format"}))
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = u.Name
	}

	if err := h.users.CompleteOnboarding(r.Context(), u.ID, birth, name); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			err = apperr.ErrAuthRequired
		}
		apperr.Write(w, r, err)
		return
	}
	updated, err := h.users.GetByID(r.Context(), u.ID)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	if h.invalidator != nil {
		if _, err := h.invalidator.InvalidateUser(r.Context(), u.ID, false); err != nil {
			logger.From(r.Context()).Warn("drop cached readings after onboarding", logger.Err(err))
		}
	}
	writeJSON(w, http.StatusOK, toMe(updated))
}

func (h *AccountHandler) currentUser(r *http.Request) (*models.User, error) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		return nil, apperr.ErrAuthRequired
	}
	u, err := h.users.GetByID(r.Context(), p.UserID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperr.ErrAuthRequired
	}
	return u, err
}
