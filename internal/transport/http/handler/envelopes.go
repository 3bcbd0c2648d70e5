package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-api-checkin/internal/domain"
)

// Envelope is the response wrapper for every endpoint.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// TokenEnvelope is the data of a successful login.
type TokenEnvelope struct {
	Token string `json:"token"`
}

// StreakEnvelope is the data of the check-in count endpoint.
type StreakEnvelope struct {
	Count int `json:"count"`
}

// MessageEnvelope carries a short status message.
type MessageEnvelope struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, Envelope{Error: msg})
}

// writeDomainError maps a service error to its HTTP status. Client mistakes
// are echoed back; infrastructure failures are logged and hidden.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatus(err)
	switch status {
	case http.StatusServiceUnavailable:
		slog.ErrorContext(r.Context(), "backing store unavailable", "path", r.URL.Path, "err", err)
		writeError(w, status, "service temporarily unavailable")
	case http.StatusInternalServerError:
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "err", err)
		writeError(w, status, "internal error")
	default:
		writeError(w, status, err.Error())
	}
}

func httpStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
