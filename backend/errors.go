package backend

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable    = errors.New("forecasting backend unavailable")
	ErrUnknownBackend = errors.New("no backend registered under this name")
)

// BackendUnavailableError reports that the chosen backend cannot be constructed or reached. It is
// a configuration error and never triggers a fallback to another backend.
type BackendUnavailableError struct {
	Backend     string
	Remediation string
	Err         error
}

func (e *BackendUnavailableError) Error() string {
	msg := fmt.Sprintf("backend %q is unavailable", e.Backend)
	if e.Err != nil {
		msg = fmt.Sprintf("%s, %v", msg, e.Err)
	}
	if e.Remediation != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Remediation)
	}
	return msg
}

func (e *BackendUnavailableError) Unwrap() error {
	return e.Err
}

// Is matches ErrUnavailable so callers need not know the concrete type
func (e *BackendUnavailableError) Is(target error) bool {
	return target == ErrUnavailable
}
