// internal/handlers/response.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/ammerola/stock-ledger/internal/core/domain"
)

const maxBodyBytes = 1 << 20

// retryAfterSeconds is advertised when a write lost to concurrent modification
const retryAfterSeconds = "1"

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func respondJSON(w http.ResponseWriter, logger *slog.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func respondError(w http.ResponseWriter, logger *slog.Logger, status int, code, message string) {
	respondJSON(w, logger, status, ErrorResponse{Error: message, Code: code})
}

// statusOf maps a ledger error onto an HTTP status
func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrConcurrency):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondDomainError writes err with its stable code. Internal failures are
// logged and their details withheld from the client.
func respondDomainError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, op string, err error) {
	status := statusOf(err)
	code := domain.ErrorCode(err)

	if errors.Is(err, context.DeadlineExceeded) {
		logger.WarnContext(r.Context(), op+" timed out", slog.String("error", err.Error()))
		respondError(w, logger, http.StatusGatewayTimeout, "timeout", "request timed out")
		return
	}

	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), op+" failed", slog.String("error", err.Error()))
		respondError(w, logger, status, code, "internal server error")
		return
	}

	logger.DebugContext(r.Context(), op+" rejected",
		slog.String("code", code),
		slog.String("error", err.Error()))
	if errors.Is(err, domain.ErrConcurrency) {
		w.Header().Set("Retry-After", retryAfterSeconds)
	}
	respondError(w, logger, status, code, err.Error())
}

// decodeJSON reads a bounded JSON body, rejecting unknown fields
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domain.NewValidationError("body", fmt.Sprintf("invalid JSON: %v", err))
	}
	return nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, domain.NewValidationError(name, "must be a UUID")
	}
	return id, nil
}

// pageParams reads page and page_size; zero means default
func pageParams(r *http.Request) (int, int, error) {
	q := r.URL.Query()
	page, err := optionalInt(q.Get("page"), "page")
	if err != nil {
		return 0, 0, err
	}
	size, err := optionalInt(q.Get("page_size"), "page_size")
	if err != nil {
		return 0, 0, err
	}
	return page, size, nil
}

func optionalInt(raw, field string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, domain.NewValidationError(field, "must be a non-negative integer")
	}
	return n, nil
}
