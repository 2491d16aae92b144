package errors

import (
	"errors"
	"fmt"
)

// Domain error type for the credit ledger
var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrAccountAlreadyExists = errors.New("account already exists")
	ErrInvalidAccountID     = errors.New("invalid account ID")
	ErrLimitExceeded        = errors.New("credit limit exceeded")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidDay           = errors.New("invalid day")
	ErrEmptyHistory         = errors.New("no transaction history")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

type TransactionError struct {
	Operation string
	Cause     error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction error during '%s': %v", e.Operation, e.Cause)
}

func (e *TransactionError) Unwrap() error {
	return e.Cause
}

func NewTransactionError(operation string, cause error) error {
	return &TransactionError{
		Operation: operation,
		Cause:     cause,
	}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound)
}

func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAccountAlreadyExists)
}

// IsDeclined reports a charge refused by the credit limit rule.
func IsDeclined(err error) bool {
	return errors.Is(err, ErrLimitExceeded)
}

// IsInvalidInput covers every rejected-input kind: bad amount, bad day,
// bad account ID or a failed field validation.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidDay) ||
		errors.Is(err, ErrInvalidAccountID) ||
		IsValidationError(err)
}

func IsEmptyHistory(err error) bool {
	return errors.Is(err, ErrEmptyHistory)
}

func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}
