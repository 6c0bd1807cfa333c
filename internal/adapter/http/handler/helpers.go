package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/unifarm/ledger/internal/adapter/http/dto"
	"github.com/unifarm/ledger/internal/adapter/http/middleware"
	"github.com/unifarm/ledger/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrEntryNotFound),
		errors.Is(err, domain.ErrPositionNotFound),
		errors.Is(err, domain.ErrReferrerNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrUnknownCurrency),
		errors.Is(err, domain.ErrMissingIdempotency),
		errors.Is(err, domain.ErrPositionInactive),
		errors.Is(err, domain.ErrBoostPackageUnknown),
		errors.Is(err, domain.ErrSelfReferral):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAlreadyReferred),
		errors.Is(err, domain.ErrDuplicateOperation):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// userID extracts the authenticated user ID, writing a 401 on absence.
func userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user identity", "")
	}
	return id, ok
}

// parseCurrency parses the currency from a request value, writing a 400
// on failure.
func parseCurrency(w http.ResponseWriter, raw string) (domain.Currency, bool) {
	currency, err := domain.ParseCurrency(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown currency", raw)
		return "", false
	}
	return currency, true
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
