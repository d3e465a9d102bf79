package history

import (
	"errors"
	"fmt"
)

var (
	ErrNilRequest         = errors.New("nil request")
	ErrNoDemoLoader       = errors.New("no demo dataset loader configured")
	ErrEmptyDataset       = errors.New("dataset has no rows")
	ErrMissingColumn      = errors.New("missing required column")
	ErrEmptySeriesID      = errors.New("empty series id")
	ErrInvalidValue       = errors.New("invalid observation value")
	ErrInvalidTime        = errors.New("invalid timestamp")
	ErrNonMonotonic       = errors.New("timestamps are not strictly increasing")
	ErrUnknownGranularity = errors.New("granularity has no sampling step")
)

// DataShapeError reports demo or file data that does not have the expected long format shape
type DataShapeError struct {
	Source  string
	Message string
	Err     error
}

func (e *DataShapeError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("unexpected dataset shape: %s, %v", e.Message, e.Err)
	}
	return fmt.Sprintf("unexpected shape in %s: %s, %v", e.Source, e.Message, e.Err)
}

func (e *DataShapeError) Unwrap() error {
	return e.Err
}

// NewDataShapeError builds a DataShapeError wrapping err
func NewDataShapeError(source string, err error, format string, args ...any) *DataShapeError {
	return &DataShapeError{
		Source:  source,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}
