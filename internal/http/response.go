package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"smartbills/internal/auth"
	"smartbills/internal/core"
	"smartbills/internal/storage"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}

// writeDomainError maps service errors onto HTTP statuses. Unknown
// errors become a 500 without leaking detail.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "subscription not found")
	case errors.Is(err, auth.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "unauthenticated")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, auth.ErrAlreadyRegistered):
		writeError(w, http.StatusConflict, "email already registered")
	case isValidationError(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Request failed", "error", err, "url", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func isValidationError(err error) bool {
	return errors.Is(err, core.ErrEmptyName) ||
		errors.Is(err, core.ErrEmptyCategory) ||
		errors.Is(err, core.ErrNegativePrice) ||
		errors.Is(err, core.ErrMissingDueDate) ||
		errors.Is(err, core.ErrInvalidSchedule) ||
		errors.Is(err, core.ErrNameTooLong) ||
		errors.Is(err, core.ErrNotesTooLong)
}
