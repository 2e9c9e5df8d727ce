package advisor

import (
	"context"
	"errors"
	"fmt"
)

type Reason string

const (
	ReasonUnavailable       Reason = "unavailable"
	ReasonTimeout           Reason = "timeout"
	ReasonMissingCredential Reason = "missing_credential"
	ReasonEmptyResponse     Reason = "empty_response"
)

// ErrMissingCredential is returned by a Model that has no usable API key.
var ErrMissingCredential = errors.New("advisor credential missing or rejected")

// Failure is the only error type the Client returns.
type Failure struct {
	Reason Reason
	Err    error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("advisor %s", f.Reason)
	}

	return fmt.Sprintf("advisor %s: %v", f.Reason, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// NotUnderstood is shown when free text could not be turned into a transaction. It is
// deliberately different from every FallbackMessage.
const NotUnderstood = "Couldn't understand that. Try something like \"Paid 450 to Swiggy via UPI\"."

// FallbackMessage renders err for the user. It returns "" for a nil error.
func FallbackMessage(err error) string {
	if err == nil {
		return ""
	}

	var f *Failure
	if !errors.As(err, &f) {
		f = classify(err)
	}

	switch f.Reason {
	case ReasonTimeout:
		return "FinCo is taking too long to respond. Please try again in a moment."
	case ReasonMissingCredential:
		return "Sorry, I encountered an error while analyzing your finances. Please check your API key and try again."
	case ReasonEmptyResponse:
		return "I couldn't generate an answer at this time. Please try again."
	default:
		return "I'm having trouble connecting right now. Please check your connection."
	}
}

// IsFailure reports whether err carries the given reason.
func IsFailure(err error, reason Reason) bool {
	var f *Failure
	return errors.As(err, &f) && f.Reason == reason
}

func classify(err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &Failure{Reason: ReasonTimeout, Err: err}
	case errors.Is(err, ErrMissingCredential):
		return &Failure{Reason: ReasonMissingCredential, Err: err}
	default:
		return &Failure{Reason: ReasonUnavailable, Err: err}
	}
}
