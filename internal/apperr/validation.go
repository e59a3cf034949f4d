package apperr

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FromValidation maps validator errors to ErrValidationFailed with one entry
// per failing field, keyed by the JSON field name.
func FromValidation(err error) *AppError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ErrValidationFailed.WithCause(err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = describe(fe)
	}
	return ErrValidationFailed.WithFields(fields).WithCause(err)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "password_strength":
		return "must contain an uppercase letter, a lowercase letter and a digit"
	case "datetime":
		return "must be a date formatted as " + fe.Param()
	default:
		return "failed " + strings.ReplaceAll(fe.Tag(), "_", " ") + " check"
	}
}
