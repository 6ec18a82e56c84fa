package handler

// RESPONSE SHAPE:
// Every endpoint answers with the same envelope:
//
//	success: {"message": "...", "data": ...}
//	failure: {"message": "...", "errors": {"field": "why"}}
//
// "errors" appears only on validation failures; everything else is a
// bare message. Handlers never hand-roll status codes for domain
// errors — writeError owns the apperror → HTTP mapping.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/authd/internal/apperror"
)

// envelope is the standard response body.
type envelope struct {
	Message string            `json:"message"`
	Data    any               `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// writeJSON sends a JSON response with the given status code.
// Headers and status must be set before the body — once Encode writes,
// the headers are on the wire.
func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Headers are already sent; all we can do is log.
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeError maps a domain error to HTTP and sends the envelope.
//
// STATUS MAPPING:
//
//	ErrValidation   → 422 + field map
//	ErrConflict     → 422 (the API reuses the validation status for
//	                  conflicts — duplicate email, spent OTP, bad
//	                  sign-in credentials)
//	ErrUnauthorized → 401 (token problems only)
//	ErrNotFound     → 404
//	anything else   → 500 with a generic message; the raw error may
//	                  contain SQL or file paths and never leaves the
//	                  process
//
// The service layer wraps its errors with fmt.Errorf("...: %w"), so
// errors.As/Is walk the chain to find the AppError and its sentinel.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusUnprocessableEntity // 422
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusUnprocessableEntity // 422, deliberately not 409
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized // 401
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound // 404
		}

		writeJSON(w, status, envelope{
			Message: appErr.Message,
			Errors:  appErr.Fields,
		})
		return
	}

	writeJSON(w, http.StatusInternalServerError, envelope{
		Message: "An internal error occurred",
	})
}
