package model

import "errors"

// ErrNotFound covers missing records and records owned by someone else. The
// API maps it to 404 in both cases so existence never leaks across owners.
var ErrNotFound = errors.New("record not found")

// ValidationError marks malformed input: missing required fields, bad custom
// frequency configuration, out-of-range values.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NewValidationError builds a ValidationError with the given message.
func NewValidationError(msg string) error { return &ValidationError{Msg: msg} }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// RuleError marks a business-rule violation on otherwise well-formed input:
// executing an inactive obligation, or a second execution for the same day.
type RuleError struct {
	Msg string
}

func (e *RuleError) Error() string { return e.Msg }

// NewRuleError builds a RuleError with the given message.
func NewRuleError(msg string) error { return &RuleError{Msg: msg} }

// IsRule reports whether err is (or wraps) a RuleError.
func IsRule(err error) bool {
	var re *RuleError
	return errors.As(err, &re)
}

// Shared rule and validation failures referenced from tests and handlers.
var (
	ErrDescriptionRequired     = NewValidationError("description is required")
	ErrAccountRequired         = NewValidationError("account is required")
	ErrInvalidAmount           = NewValidationError("amount must be greater than zero")
	ErrInvalidTransactionType  = NewValidationError("type must be income, expense or transfer")
	ErrInvalidFrequency        = NewValidationError("unknown frequency")
	ErrStartDateRequired       = NewValidationError("start date is required")
	ErrCustomFrequencyRequired = NewValidationError("custom frequency requires a configuration")
	ErrNoMatchingDate          = NewValidationError("no date satisfies the frequency restrictions")
	ErrInactiveRecurring       = NewRuleError("recurring transaction is not active")
	ErrDuplicateExecution      = NewRuleError("recurring transaction already executed for this day")
)
