package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"horoscope/internal/apperr"
	"horoscope/internal/middleware"
	"horoscope/internal/models"
	"horoscope/internal/readingcache"
)

type ReadingSource interface {
	Get(ctx context.Context, userID, date string) (*models.Reading, error)
}

type ReadingHandler struct {
	readings ReadingSource
	now      func() time.Time
}

func NewReadingHandler(readings ReadingSource) *ReadingHandler {
	return &ReadingHandler{readings: readings, now: func() time.Time { return time.Now().UTC() }}
}

// @Tags Readings
// @Summary Today's reading for the caller
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Reading
// @Failure 401 {object} apperr.AppError
// @Failure 403 {object} apperr.AppError
// @Router /api/v1/readings/today [get]
func (h *ReadingHandler) Today(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.now().Format(models.DateLayout))
}

// @Tags Readings
// @Summary The caller's reading for a date
// @Security BearerAuth
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} models.Reading
// @Failure 400 {object} apperr.AppError
// @Failure 401 {object} apperr.AppError
// @Failure 403 {object} apperr.AppError
// @Router /api/v1/readings/{date} [get]
func (h *ReadingHandler) ByDate(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, chi.URLParam(r, "date"))
}

func (h *ReadingHandler) serve(w http.ResponseWriter, r *http.Request, date string) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		apperr.Write(w, r, apperr.ErrAuthRequired)
		return
	}
	rd, err := h.readings.Get(r.Context(), p.UserID, date)
	switch {
	case errors.Is(err, readingcache.ErrInvalidDate):
		apperr.Write(w, r, apperr.ErrValidationFailed.WithFields(map[string]string{"date": "must be a date in YYYY-MM-DD format"}))
		return
	case errors.Is(err, readingcache.ErrNoBirthData):
		apperr.Write(w, r, apperr.ErrOnboardingRequired)
		return
	case errors.Is(err, readingcache.ErrUserNotFound):
		apperr.Write(w, r, apperr.ErrAuthRequired)
		return
	case err != nil:
		apperr.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rd)
}
