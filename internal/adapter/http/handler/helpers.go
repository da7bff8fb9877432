package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/iho/splitledger/internal/adapter/http/dto"
	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

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

// writeDomainError writes err with the status and label it maps to.
func writeDomainError(w http.ResponseWriter, err error) {
	status := mapDomainError(err)

	details := err.Error()
	if status == http.StatusInternalServerError {
		details = "internal error"
	}

	writeError(w, status, errorCode(err), details)
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrExpiredToken):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrExpenseNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrOverpayment):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrEmptyParticipants),
		errors.Is(err, domain.ErrPayerNotParticipant),
		errors.Is(err, domain.ErrInvalidParticipant),
		errors.Is(err, domain.ErrInvalidPaymentMethod),
		errors.Is(err, domain.ErrSelfSettlement),
		errors.Is(err, domain.ErrNoteTooLong),
		errors.Is(err, domain.ErrInvalidCurrency),
		errors.Is(err, errInvalidBody):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrInconsistentLedger):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// errorCode returns the stable machine-readable label for err.
func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrInvalidToken), errors.Is(err, domain.ErrExpiredToken):
		return "unauthorized"
	case errors.Is(err, domain.ErrExpenseNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrOverpayment):
		return "overpayment"
	case errors.Is(err, domain.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, domain.ErrEmptyParticipants):
		return "empty_participants"
	case errors.Is(err, domain.ErrPayerNotParticipant):
		return "payer_not_participant"
	case errors.Is(err, domain.ErrInvalidParticipant):
		return "invalid_participant"
	case errors.Is(err, domain.ErrInvalidPaymentMethod):
		return "invalid_payment_method"
	case errors.Is(err, domain.ErrSelfSettlement):
		return "self_settlement"
	case errors.Is(err, domain.ErrNoteTooLong):
		return "note_too_long"
	case errors.Is(err, domain.ErrInvalidCurrency):
		return "invalid_currency"
	case errors.Is(err, errInvalidBody):
		return "invalid_request"
	case errors.Is(err, usecase.ErrInconsistentLedger):
		return "inconsistent_ledger"
	case errors.Is(err, domain.ErrPersistence):
		return "persistence_failure"
	default:
		return "internal_error"
	}
}

var errInvalidBody = errors.New("invalid request body")

// decodeJSON decodes the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	return nil
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
