// Package weatherman turns a canonical forecasting request into a backtested forecast. The
// Forecaster builds the history, resolves a backend, runs a rolling-origin backtest and produces
// one final forecast over the full history.
package weatherman

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bryanwhiting/weatherman/backend"
	"github.com/bryanwhiting/weatherman/backend/native"
	"github.com/bryanwhiting/weatherman/backend/remote"
	"github.com/bryanwhiting/weatherman/backtest"
	"github.com/bryanwhiting/weatherman/history"
	"github.com/bryanwhiting/weatherman/request"
	"github.com/go-echarts/go-echarts/v2/components"
)

var (
	ErrNilRequest = errors.New("no request to run")
	ErrNilResult  = errors.New("no result")

	ErrUnselectableBackend = errors.New("backend name cannot be selected by a request")
)

const (
	MinSeasonalPeriod = request.MinSeasonalPeriod

	remoteRemediation = "set WEATHERMAN_REMOTE_ENDPOINT or remote.endpoint to the forecasting service url"
)

// Forecaster runs forecasting jobs. A Forecaster holds no per job state and may run jobs
// concurrently.
type Forecaster struct {
	opt *Options

	builder  *history.Builder
	registry *backend.Registry
	engine   *backtest.Engine
}

// New creates a forecaster with the native and remote backends registered. If no options are
// provided a default is used.
func New(opt *Options) (*Forecaster, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}

	engine, err := backtest.NewEngine(opt.BacktestOptions)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize backtest engine, %w", err)
	}

	f := &Forecaster{
		opt:      opt,
		builder:  history.NewBuilder(opt.Demo),
		registry: backend.NewRegistry(opt.DefaultBackend),
		engine:   engine,
	}

	nativeOpt := opt.NativeOptions
	f.registry.Register(request.BackendNative, "check the native model options", func(ctx context.Context) (backend.Backend, error) {
		b, err := native.New(nativeOpt)
		if err != nil {
			return nil, err
		}
		return b, nil
	})

	remoteOpt := *opt.RemoteOptions
	f.registry.Register(request.BackendRemote, remoteRemediation, func(ctx context.Context) (backend.Backend, error) {
		o := remoteOpt
		b, err := remote.New(ctx, &o)
		if err != nil {
			return nil, err
		}
		return b, nil
	})
	return f, nil
}

// Register replaces the factory behind one of the concrete backend names a request can select.
// auto is resolved by the registry and unknown names can never be requested, so both are rejected.
func (f *Forecaster) Register(name request.Backend, remediation string, factory backend.Factory) error {
	if _, err := request.ParseBackend(string(name)); err != nil || name == request.BackendAuto {
		return fmt.Errorf("%q, %w", name, ErrUnselectableBackend)
	}
	f.registry.Register(name, remediation, factory)
	return nil
}

// EffectiveSeasonalPeriod starts from the requested period, or the granularity default when none
// was requested, and clamps it to [2, max(2, minLen-1)] so no model sees a period longer than
// its data. Demo data is always daily, so demo requests default to the daily period regardless of
// their granularity.
func EffectiveSeasonalPeriod(req *request.Request, minLen int) int {
	period := req.SeasonalPeriod
	switch {
	case req.HasSeasonalPeriod():
	case req.DemoMode:
		period = request.Granularity1d.DefaultSeasonalPeriod()
	default:
		period = req.Granularity.DefaultSeasonalPeriod()
	}
	upper := max(MinSeasonalPeriod, minLen-1)
	return min(max(period, MinSeasonalPeriod), upper)
}

// Run builds the history for the request, backtests the resolved backend when enabled and
// forecasts Horizon points past the end of every series. It performs no I/O beyond the backend
// and demo dataset calls.
func (f *Forecaster) Run(ctx context.Context, req *request.Request) (*Result, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	h, err := f.builder.Build(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("unable to build history, %w", err)
	}

	minLen := h.Table.MinLen()
	period := EffectiveSeasonalPeriod(req, minLen)
	slog.Debug("resolved seasonal period", "requested", req.SeasonalPeriod, "min_len", minLen, "seasonal_period", period)

	b, err := f.registry.Resolve(ctx, req.Backend)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Request:        req,
		Backend:        b.Name(),
		SeasonalPeriod: period,
		Frequency:      h.Frequency,
		History:        h.Table,
		Forecast:       []ForecastPoint{},
		BacktestScores: []backtest.Score{},
		BacktestPoints: []backtest.Point{},
	}

	if req.BacktestEnabled {
		cfg := backtest.Config{
			Horizon:        req.Horizon,
			WindowCount:    req.BacktestWindowCount,
			SeasonalPeriod: period,
		}
		report, err := f.engine.Evaluate(ctx, h, cfg, b)
		if err != nil {
			return nil, fmt.Errorf("unable to backtest %s backend, %w", b.Name(), err)
		}
		res.BacktestWindows = report.Windows
		res.BacktestScores = append(res.BacktestScores, report.Scores...)
		res.BacktestPoints = append(res.BacktestPoints, report.Points...)
	}

	spec := backend.Spec{
		Horizon:        req.Horizon,
		Frequency:      h.Frequency,
		SeasonalPeriod: period,
	}
	frame, err := b.Forecast(ctx, h.Table, spec)
	if err != nil {
		return nil, fmt.Errorf("unable to forecast with %s backend, %w", b.Name(), err)
	}
	if err := frame.Validate(); err != nil {
		return nil, err
	}
	res.Forecast = forecastPoints(frame)

	slog.Info("forecast complete",
		"backend", res.Backend,
		"series", len(h.Table.SeriesIDs()),
		"forecast_points", len(res.Forecast),
		"backtest_scores", len(res.BacktestScores),
	)
	return res, nil
}

// forecastPoints flattens the frame into one point per row per model, keeping frame order
func forecastPoints(frame *backend.Frame) []ForecastPoint {
	points := make([]ForecastPoint, 0, len(frame.Rows)*len(frame.Models))
	for _, row := range frame.Rows {
		for m, model := range frame.Models {
			points = append(points, ForecastPoint{
				SeriesID:  row.SeriesID,
				Timestamp: row.Timestamp,
				Model:     model,
				Predicted: row.Values[m],
			})
		}
	}
	return points
}

// PlotResult uses the Apache Echarts library to generate an html file showing the history and
// final forecast of every series along with the backtest score of every model
func (f *Forecaster) PlotResult(path string, res *Result) error {
	if res == nil {
		return ErrNilResult
	}

	page := components.NewPage()
	for _, s := range res.History.Group() {
		page.AddCharts(LineForecast(s.ID, s.T, s.Y, res.Forecast))
	}
	if summary := res.Summary(); len(summary) > 0 {
		page.AddCharts(BarSMAPE(summary))
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create report file, %w", err)
	}
	defer file.Close()
	return page.Render(io.MultiWriter(file))
}
