package handlers

import (
	"net/http"

	"horoscope/internal/apperr"
	"horoscope/internal/middleware"
	"horoscope/internal/models"
	"horoscope/internal/services"
)

type AuthHandler struct {
	svc *services.AuthService
}

func NewAuthHandler(svc *services.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// @Tags Auth
// @Summary Create an account
// @Accept json
// @Produce json
// @Param body body models.SignupRequest true "Signup payload"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} apperr.AppError
// @Failure 409 {object} apperr.AppError
// @Router /api/v1/auth/signup [post]
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apperr.Write(w, r, err)
		return
	}
	u, err := h.svc.Signup(r.Context(), req)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": u.ID, "email": u.Email, "created_at": u.CreatedAt})
}

// @Tags Auth
// @Summary Log in
// @Accept json
// @Produce json
// @Param body body models.LoginRequest true "Credentials"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} apperr.AppError
// @Failure 401 {object} apperr.AppError
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apperr.Write(w, r, err)
		return
	}
	resp, err := h.svc.Login(r.Context(), req, services.SessionMeta{
		UserAgent: r.UserAgent(),
		IP:        r.RemoteAddr,
	})
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// @Tags Auth
// @Summary Log out the current session
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} apperr.AppError
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		apperr.Write(w, r, apperr.ErrAuthRequired)
		return
	}
	if err := h.svc.Logout(r.Context(), p.SessionID); err != nil {
		apperr.Write(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// @Tags Auth
// @Summary Request a password reset token
// @Description Always answers 200 so that callers cannot discover which emails are registered.
// @Accept json
// @Produce json
// @Param body body models.ForgotPasswordRequest true "Email"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} apperr.AppError
// @Router /api/v1/auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apperr.Write(w, r, err)
		return
	}
	res, err := h.svc.ForgotPassword(r.Context(), req)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}

	resp := map[string]any{"ok": true}
	if res.Token != "" {
		resp["token"] = res.Token
		resp["expires_in_seconds"] = int64(res.ExpiresIn.Seconds())
	}
	writeJSON(w, http.StatusOK, resp)
}

// @Tags Auth
// @Summary Reset a password with a verification token
// @Description Replaces the password, deletes every token for the account and signs out every session.
// @Accept json
// @Produce json
// @Param body body models.ResetPasswordRequest true "Token and new password"
// @Success 200 {object} models.ResetPasswordResponse
// @Failure 400 {object} apperr.AppError
// @Failure 404 {object} apperr.AppError
// @Failure 500 {object} apperr.AppError
// @Router /api/v1/auth/reset-password [post]
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apperr.Write(w, r, err)
		return
	}
	resp, err := h.svc.ResetPassword(r.Context(), req)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ResetPasswordOptions answers the CORS preflight for reset-password with a
// fixed set of allowed methods and headers.
func (h *AuthHandler) ResetPasswordOptions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.WriteHeader(http.StatusOK)
}
