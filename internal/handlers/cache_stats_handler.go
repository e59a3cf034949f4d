package handlers

import (
	"net/http"
	"strconv"

	"horoscope/internal/apperr"
	"horoscope/internal/cacheadmin"
	"horoscope/internal/middleware"
	"horoscope/internal/models"
)

// CacheStatsHandler serves /cache/stats. Routes mount it behind JWTAuth and
// the admin capability gate; the handler itself only needs the caller's id
// for the audit envelope.
type CacheStatsHandler struct {
	admin *cacheadmin.Dispatcher
}

func NewCacheStatsHandler(admin *cacheadmin.Dispatcher) *CacheStatsHandler {
	return &CacheStatsHandler{admin: admin}
}

func actor(r *http.Request) (string, error) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		return "", apperr.ErrAuthRequired
	}
	return p.UserID, nil
}

// @Tags Cache
// @Summary Reading cache statistics
// @Security BearerAuth
// @Produce json
// @Param user_id query string false "User to include debug data for"
// @Param debug query bool false "Include per-user debug data"
// @Success 200 {object} cacheadmin.StatsResponse
// @Failure 401 {object} apperr.AppError
// @Failure 403 {object} apperr.AppError
// @Failure 500 {object} apperr.AppError
// @Router /api/v1/cache/stats [get]
func (h *CacheStatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	if _, err := actor(r); err != nil {
		apperr.Write(w, r, err)
		return
	}
	q := r.URL.Query()
	debug, _ := strconv.ParseBool(q.Get("debug"))

	resp, err := h.admin.Stats(r.Context(), q.Get("user_id"), debug)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// @Tags Cache
// @Summary Run a cache administration action
// @Description action is one of invalidate_user, cleanup_old, warm_cache, refresh_reading, get_user_debug.
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.CacheActionRequest true "Action and parameters"
// @Success 200 {object} cacheadmin.ActionResponse
// @Failure 400 {object} apperr.AppError
// @Failure 401 {object} apperr.AppError
// @Failure 403 {object} apperr.AppError
// @Failure 500 {object} apperr.AppError
// @Router /api/v1/cache/stats [post]
func (h *CacheStatsHandler) PostAction(w http.ResponseWriter, r *http.Request) {
	by, err := actor(r)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	var req models.CacheActionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apperr.Write(w, r, err)
		return
	}
	cmd, err := cacheadmin.ParseCommand(req)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	resp, err := h.admin.Execute(r.Context(), by, cmd)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// @Tags Cache
// @Summary Reset cache statistics
// @Security BearerAuth
// @Produce json
// @Param confirm query bool true "Must be true"
// @Success 200 {object} cacheadmin.ResetResponse
// @Failure 400 {object} apperr.AppError
// @Failure 401 {object} apperr.AppError
// @Failure 403 {object} apperr.AppError
// @Router /api/v1/cache/stats [delete]
func (h *CacheStatsHandler) ResetStats(w http.ResponseWriter, r *http.Request) {
	by, err := actor(r)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	resp, err := h.admin.ResetStats(r.Context(), by, r.URL.Query().Get("confirm") == "true")
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// @Tags Cache
// @Summary Emergency flush of cache keys by pattern
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.EmergencyFlushRequest true "operation must be emergency_flush; confirm must be true"
// @Success 200 {object} cacheadmin.FlushResponse
// @Failure 400 {object} apperr.AppError
// @Failure 401 {object} apperr.AppError
// @Failure 403 {object} apperr.AppError
// @Failure 500 {object} apperr.AppError
// @Router /api/v1/cache/stats [patch]
func (h *CacheStatsHandler) EmergencyFlush(w http.ResponseWriter, r *http.Request) {
	by, err := actor(r)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	var req models.EmergencyFlushRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apperr.Write(w, r, err)
		return
	}
	resp, err := h.admin.EmergencyFlush(r.Context(), by, req)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
