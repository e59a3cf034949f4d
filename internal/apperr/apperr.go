// Package apperr defines the error kinds surfaced by the HTTP API and the
// single place that turns them into responses.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is an expected failure with a stable machine-readable code.
// Err carries the cause for logs and is never written to the client.
type AppError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Fields     map[string]string `json:"fields,omitempty"`
	HTTPStatus int               `json:"-"`
	Err        error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// Is matches on Code so that errors.Is(err, apperr.ErrTokenInvalid) works on copies.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// WithMessage returns a copy with a different message.
func (e *AppError) WithMessage(msg string) *AppError {
	c := *e
	c.Message = msg
	return &c
}

// WithFields returns a copy carrying field-level details.
func (e *AppError) WithFields(fields map[string]string) *AppError {
	c := *e
	c.Fields = fields
	return &c
}

// WithCause returns a copy wrapping err.
func (e *AppError) WithCause(err error) *AppError {
	c := *e
	c.Err = err
	return &c
}

func newErr(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

var (
	ErrValidationFailed     = newErr(http.StatusBadRequest, "validation_failed", "Validation failed")
	ErrAuthRequired         = newErr(http.StatusUnauthorized, "auth_required", "Authentication required")
	ErrForbidden            = newErr(http.StatusForbidden, "forbidden", "Admin access required")
	ErrTokenInvalid         = newErr(http.StatusBadRequest, "token_invalid", "Invalid or expired reset token")
	ErrUserNotFound         = newErr(http.StatusNotFound, "user_not_found", "User account not found")
	ErrMissingParam         = newErr(http.StatusBadRequest, "missing_param", "Missing required parameter")
	ErrInvalidAction        = newErr(http.StatusBadRequest, "invalid_action", "Invalid action")
	ErrConfirmationRequired = newErr(http.StatusBadRequest, "confirmation_required", "Confirmation required")
	ErrInvalidCredentials   = newErr(http.StatusUnauthorized, "invalid_credentials", "Invalid credentials")
	ErrConflict             = newErr(http.StatusConflict, "conflict", "Resource already exists")
	ErrOnboardingRequired   = newErr(http.StatusForbidden, "onboarding_required", "Onboarding not complete")
	ErrInternal             = newErr(http.StatusInternalServerError, "internal_error", "Internal server error")
)

// MissingParam names the absent field.
func MissingParam(field string) *AppError {
	return ErrMissingParam.
		WithMessage("Missing required parameter: " + field).
		WithFields(map[string]string{field: "required"})
}

// InvalidAction names the rejected action tag.
func InvalidAction(action string) *AppError {
	return ErrInvalidAction.WithMessage(fmt.Sprintf("Invalid action: %q", action))
}

// From converts any error into an AppError. Unknown errors become
// ErrInternal with the original kept as cause.
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternal.WithCause(err)
}
