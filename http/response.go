package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sagarc03/sptzx"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errCode,
		Message: message,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// HandleError writes appropriate error response based on error type.
// Messages are fixed per class so internal details never reach the client.
func HandleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sptzx.ErrInvalidSignature):
		slog.Warn("request rejected", "error", err)
		WriteError(w, http.StatusForbidden, "invalid_signature", "Invalid signature")
	case errors.Is(err, sptzx.ErrExpired):
		slog.Warn("request rejected", "error", err)
		WriteError(w, http.StatusForbidden, "link_expired", "Link expired")
	case errors.Is(err, sptzx.ErrNotFound):
		slog.Warn("request rejected", "error", err)
		WriteError(w, http.StatusNotFound, "not_found", "Object not found")
	case errors.Is(err, sptzx.ErrPayloadTooLarge):
		slog.Warn("request rejected", "error", err)
		WriteError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "Payload too large")
	case errors.Is(err, sptzx.ErrInvalidInput):
		slog.Warn("request rejected", "error", err)
		WriteError(w, http.StatusBadRequest, "invalid_input", "Invalid request")
	case errors.Is(err, ErrRateLimited):
		WriteError(w, http.StatusTooManyRequests, "rate_limited", "Too many requests")
	case errors.Is(err, sptzx.ErrStorageFull):
		slog.Error("request error", "error", err)
		WriteError(w, http.StatusInsufficientStorage, "storage_full", "Storage full")
	default:
		slog.Error("request error", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
