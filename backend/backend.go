// Package backend defines the forecasting backend capability shared by the backtest engine and the
// orchestrator, the prediction frame backends return, and the registry that resolves a requested
// backend name into a ready instance.
package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bryanwhiting/weatherman/history"
)

var (
	ErrInvalidHorizon   = errors.New("horizon must be positive")
	ErrInvalidFrequency = errors.New("frequency must be positive")
	ErrInvalidPeriod    = errors.New("seasonal period must be at least 1")
	ErrEmptyHistory     = errors.New("no history to forecast from")
	ErrMalformedFrame   = errors.New("prediction frame values do not match its models")
)

// Spec describes a single forecast call
type Spec struct {
	Horizon        int
	Frequency      time.Duration
	SeasonalPeriod int
}

// Validate checks the spec can produce future timestamps
func (s Spec) Validate() error {
	if s.Horizon < 1 {
		return fmt.Errorf("got %d, %w", s.Horizon, ErrInvalidHorizon)
	}
	if s.Frequency <= 0 {
		return fmt.Errorf("got %s, %w", s.Frequency, ErrInvalidFrequency)
	}
	if s.SeasonalPeriod < 1 {
		return fmt.Errorf("got %d, %w", s.SeasonalPeriod, ErrInvalidPeriod)
	}
	return nil
}

// FrameRow holds the predictions of every model for one series at one future timestamp. Values
// are aligned with Frame.Models.
type FrameRow struct {
	SeriesID  string
	Timestamp time.Time
	Values    []float64
}

// Frame is the output of a backend forecast
type Frame struct {
	Models []string
	Rows   []FrameRow
}

// Validate checks that every row carries one value per model
func (f *Frame) Validate() error {
	if f == nil {
		return ErrMalformedFrame
	}
	for i, row := range f.Rows {
		if len(row.Values) != len(f.Models) {
			return fmt.Errorf("row %d of series %q has %d values for %d models, %w",
				i, row.SeriesID, len(row.Values), len(f.Models), ErrMalformedFrame)
		}
	}
	return nil
}

// Backend produces forecasts for every series in a history table. Rows in the returned frame are
// at last+k*Frequency for k = 1..Horizon per series.
type Backend interface {
	Name() string
	Forecast(ctx context.Context, table history.Table, spec Spec) (*Frame, error)
}
