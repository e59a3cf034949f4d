package apperr

import (
	"encoding/json"
	"net/http"

	"horoscope/internal/logger"
)

type errorBody struct {
	Error *AppError `json:"error"`
}

// Write renders err as {"error": {...}}. Internal errors are logged with the
// request-scoped logger and reach the client as a generic message.
func Write(w http.ResponseWriter, r *http.Request, err error) {
	appErr := From(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		logger.From(r.Context()).Error("request failed",
			logger.Op(r.Method+" "+r.URL.Path),
			logger.Err(appErr.Err),
		)
		appErr = ErrInternal
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(errorBody{Error: appErr})
}
