package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/iho/achledger/internal/adapter/http/dto"
	"github.com/iho/achledger/internal/domain"
	"github.com/iho/achledger/internal/infrastructure/logger"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrConcurrentModification),
		errors.Is(err, domain.ErrBatchAssemblyFailed):
		return http.StatusConflict
	case errors.Is(err, domain.ErrStorageTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainError maps err and writes it. Server side failures are logged
// and answered without details.
func writeDomainError(w http.ResponseWriter, r *http.Request, log zerolog.Logger, message string, err error) {
	status := mapDomainError(err)
	if status < http.StatusInternalServerError {
		writeError(w, status, message, err.Error())
		return
	}

	logger.FromContext(r.Context(), log).Error().Err(err).Str("path", r.URL.Path).Msg(message)
	if status == http.StatusServiceUnavailable {
		writeError(w, status, message, "storage temporarily unavailable, retry later")
		return
	}
	writeError(w, status, message, "internal error")
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

const maxBodyBytes = 1 << 20
