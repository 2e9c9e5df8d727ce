// Package respond holds the JSON plumbing shared by the API handlers.
package respond

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/MrJamesThe3rd/finco/internal/ledger"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Fail writes an error body with the given status.
func Fail(w http.ResponseWriter, status int, msg, reason string) {
	JSON(w, status, errorResponse{Error: msg, Reason: reason})
}

// Decode reads a JSON body into v and runs its validate tags. The returned error is safe to
// show to the client.
func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}

	return Validate(v)
}

func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %q", fe.Field(), fe.Tag()))
	}

	return errors.New(strings.Join(msgs, "; "))
}

// Error maps service errors to a status code. Unknown errors are logged and hidden.
func Error(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		Fail(w, http.StatusNotFound, err.Error(), "not_found")
	case errors.Is(err, ledger.ErrInvalidInput):
		Fail(w, http.StatusBadRequest, err.Error(), "invalid_input")
	case errors.Is(err, ledger.ErrInvalidAmount):
		Fail(w, http.StatusUnprocessableEntity, err.Error(), "invalid_amount")
	case errors.Is(err, ledger.ErrInsufficientFunds):
		Fail(w, http.StatusUnprocessableEntity, err.Error(), "insufficient_funds")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		Fail(w, http.StatusServiceUnavailable, "request cancelled", "cancelled")
	default:
		slog.Error("request failed", "error", err)
		Fail(w, http.StatusInternalServerError, "internal error", "")
	}
}
