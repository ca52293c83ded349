package services

import (
	"errors"
	"fmt"
)

// Outcome classes. Every error returned by this package either wraps one
// of these or is an infrastructure failure.
var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrPolicyViolation = errors.New("policy violation")
)

var (
	ErrTimeCapViolated          = fmt.Errorf("%w: slot is inside the booking time cap", ErrPolicyViolation)
	ErrCancellationWindowClosed = fmt.Errorf("%w: cancellation window has closed", ErrPolicyViolation)
	ErrPriceNotConfigured       = fmt.Errorf("%w: no current price configured", ErrPolicyViolation)
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func policyf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPolicyViolation, fmt.Sprintf(format, args...))
}

func conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// IsClientError reports whether err is an expected outcome of the request,
// a lost race included, rather than a fault of the service.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict) || errors.Is(err, ErrPolicyViolation)
}
