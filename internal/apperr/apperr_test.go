package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestFromWrapsUnknownAsInternal(t *testing.T) {
	cause := errors.New("connection reset")
	got := From(cause)
	if got.Code != "internal_error" {
		t.Fatalf("expected internal_error got %s", got.Code)
	}
	if !errors.Is(got, cause) {
		t.Fatalf("expected cause to be preserved")
	}
}

func TestFromKeepsWrappedAppError(t *testing.T) {
	err := fmt.Errorf("reset: %w", ErrTokenInvalid)
	if got := From(err); got.Code != ErrTokenInvalid.Code {
		t.Fatalf("expected token_invalid got %s", got.Code)
	}
}

func TestIsMatchesCopies(t *testing.T) {
	if !errors.Is(MissingParam("userId"), ErrMissingParam) {
		t.Fatalf("expected copy to match sentinel")
	}
	if errors.Is(MissingParam("userId"), ErrInvalidAction) {
		t.Fatalf("expected different codes not to match")
	}
}

func TestWriteHidesInternalCause(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	w := httptest.NewRecorder()
	Write(w, req, errors.New("pq: password authentication failed for user \"root\""))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", w.Code)
	}
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body.Error.Message != "Internal server error" {
		t.Fatalf("expected generic message got %q", body.Error.Message)
	}
}

func TestFromValidationCollectsFields(t *testing.T) {
	type req struct {
		Token string `json:"token" validate:"required"`
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string { return f.Tag.Get("json") })
	err := FromValidation(v.Struct(req{}))
	if err.Fields["token"] != "is required" {
		t.Fatalf("expected token field detail got %v", err.Fields)
	}
}
