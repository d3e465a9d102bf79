package request

import (
	"errors"
	"fmt"
)

var (
	ErrMissingField       = errors.New("missing required field")
	ErrMissingSeries      = errors.New("no series provided")
	ErrCountMismatch      = errors.New("series name count does not match series count")
	ErrReservedName       = errors.New("series name is reserved for demo mode")
	ErrDuplicateName      = errors.New("duplicate series name")
	ErrEmptyName          = errors.New("empty series name")
	ErrSeriesTooShort     = errors.New("series is shorter than the minimum length")
	ErrNonNumeric         = errors.New("non-numeric value")
	ErrNullValue          = errors.New("null value")
	ErrOutOfRange         = errors.New("value out of range")
	ErrInvalidType        = errors.New("invalid field type")
	ErrInvalidGranularity = errors.New("unknown granularity")
	ErrInvalidBackend     = errors.New("unknown backend")
	ErrInvalidStartTime   = errors.New("unable to parse start time")
)

// ValidationError reports the request field that violated an invariant. It unwraps to one of the
// sentinel errors of this package.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func newValidationError(field string, err error, format string, args ...any) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message == "" {
		return fmt.Sprintf("invalid %s, %v", e.Field, e.Err)
	}
	return fmt.Sprintf("invalid %s, %s: %v", e.Field, e.Message, e.Err)
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
