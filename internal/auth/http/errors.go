package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/stafflane/stafflane/internal/auth/service"
	"github.com/stafflane/stafflane/internal/auth/store"
	"github.com/stafflane/stafflane/pkg/httpx"
)

// writeServiceError maps the service error taxonomy to transport statuses:
// validation and out-of-sequence errors are client mistakes (400),
// authentication failures are unauthorized (401) with their intentionally
// generic message, and unknown subjects behind authentication are 404.
// Anything else is an internal error and the detail stays out of the response.
func writeServiceError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrNotInitialized),
		errors.Is(err, service.ErrUsernameTaken):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())

	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidCode),
		errors.Is(err, service.ErrInvalidPreAuth):
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", err.Error())

	case errors.Is(err, store.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "account not found")

	default:
		log.Error("request failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
	}
}
