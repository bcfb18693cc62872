package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"budgetboard/internal/core"
	"budgetboard/internal/gateway"
)

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps business rejections onto HTTP statuses. Anything not a
// known sentinel is treated as an upstream failure.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, gateway.ErrInvalidCredentials),
		errors.Is(err, gateway.ErrUnknownUser):
		status = http.StatusUnauthorized
	case errors.Is(err, gateway.ErrPasswordMismatch),
		errors.Is(err, gateway.ErrWeakPassword):
		status = http.StatusBadRequest
	case errors.Is(err, gateway.ErrProjectNotFound):
		status = http.StatusNotFound
	case errors.Is(err, gateway.ErrProjectClosed):
		status = http.StatusConflict
	case errors.Is(err, core.ErrInvalidProjectID),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrNegativeBudget),
		errors.Is(err, core.ErrNegativeSpent),
		errors.Is(err, core.ErrInvalidStatus),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyItem),
		errors.Is(err, core.ErrInvalidDate):
		status = http.StatusBadRequest
	}

	if status == http.StatusBadGateway {
		slog.ErrorContext(r.Context(), "Upstream failure", "url", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// decodeJSON reads the request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
