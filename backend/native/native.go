// Package native is the in-process forecasting backend. It runs a fixed set of univariate models
// over every series of the history and needs no external service.
package native

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bryanwhiting/weatherman/backend"
	"github.com/bryanwhiting/weatherman/history"
	"github.com/bryanwhiting/weatherman/timedataset"
)

const Name = "native"

const (
	ModelSeasonalNaive = "SeasonalNaive"
	ModelHoltWinters   = "HoltWinters"
	ModelFourier       = "Fourier"
)

var (
	ErrUnknownModel       = errors.New("unknown native model")
	ErrNoModels           = errors.New("no models configured")
	ErrInvalidSmoothing   = errors.New("smoothing parameter must be in (0, 1]")
	ErrInvalidOrders      = errors.New("fourier orders must be at least 1")
	ErrNegativeLambda     = errors.New("negative regularization")
	ErrNegativePasses     = errors.New("negative outlier passes")
	ErrInvalidPercentiles = errors.New("outlier percentiles must satisfy 0 <= lower < upper <= 1")
)

// Model forecasts a single series. train holds the observed points in chronological order and
// future the timestamps to predict.
type Model interface {
	Name() string
	Forecast(train *timedataset.TimeDataset, future []time.Time, period int) ([]float64, error)
}

// Backend runs every configured model over every series
type Backend struct {
	opt    *Options
	models []Model
}

// New creates a native backend from the given options, using defaults when nil
func New(opt *Options) (*Backend, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}

	models := make([]Model, 0, len(opt.Models))
	for _, name := range opt.Models {
		m, err := opt.newModel(name)
		if err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	return &Backend{opt: opt, models: models}, nil
}

func (b *Backend) Name() string {
	return Name
}

// Models returns the model names in the order their values appear in frame rows
func (b *Backend) Models() []string {
	names := make([]string, 0, len(b.models))
	for _, m := range b.models {
		names = append(names, m.Name())
	}
	return names
}

// Forecast produces Horizon rows per series, ordered by series then timestamp
func (b *Backend) Forecast(ctx context.Context, table history.Table, spec backend.Spec) (*backend.Frame, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if len(table) == 0 {
		return nil, backend.ErrEmptyHistory
	}

	series := table.Group()
	frame := &backend.Frame{
		Models: b.Models(),
		Rows:   make([]backend.FrameRow, 0, len(series)*spec.Horizon),
	}

	for _, s := range series {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		future := timedataset.TimeSlice(s.T).Extend(spec.Horizon, spec.Frequency)
		preds := make([][]float64, len(b.models))
		for i, m := range b.models {
			yhat, err := m.Forecast(&s.TimeDataset, future, spec.SeasonalPeriod)
			if err != nil {
				return nil, fmt.Errorf("unable to forecast series %q with %s, %w", s.ID, m.Name(), err)
			}
			if len(yhat) != len(future) {
				return nil, fmt.Errorf("%s returned %d points for %d timestamps, %w", m.Name(), len(yhat), len(future), backend.ErrMalformedFrame)
			}
			preds[i] = yhat
		}

		for k, ts := range future {
			values := make([]float64, len(b.models))
			for i := range b.models {
				values[i] = preds[i][k]
			}
			frame.Rows = append(frame.Rows, backend.FrameRow{
				SeriesID:  s.ID,
				Timestamp: ts,
				Values:    values,
			})
		}
	}
	return frame, nil
}
