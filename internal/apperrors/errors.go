package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrUnbalanced indicates that a journal entry's debit and credit sums are not equal.
var ErrUnbalanced = errors.New("entry debits and credits do not balance")

// ErrInvalidState indicates an operation was attempted from a state that does not permit it,
// e.g. posting an already-posted entry or billing a cancelled milestone.
var ErrInvalidState = errors.New("operation not permitted in current state")

// ErrAlreadyBilled indicates that a cost entry or milestone selected for invoicing
// is already linked to a prior invoice.
var ErrAlreadyBilled = errors.New("item is already linked to an invoice")

// ErrUnknownCurrency indicates a conversion referenced a currency with no rate on file.
var ErrUnknownCurrency = errors.New("no exchange rate on file for currency")

// ErrStaleRate indicates a currency rate is older than the caller's freshness threshold.
var ErrStaleRate = errors.New("exchange rate is stale")

// ErrConcurrentModification indicates a racing mutation lost an exclusive lock
// or optimistic-concurrency check.
var ErrConcurrentModification = errors.New("resource was modified concurrently")

// ErrComputationUndefined indicates a derived metric has a zero denominator
// (e.g. CPI with zero actual cost) and is surfaced instead of returning NaN or Inf.
var ErrComputationUndefined = errors.New("computation undefined for given inputs")

// ErrInsufficientData indicates a statistic cannot be derived from the available
// history; it is never fabricated to fill the gap.
var ErrInsufficientData = errors.New("insufficient historical data")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// AppError wraps an underlying error with a code usable by the HTTP layer.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError wrapping the given cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
