// Package backtest evaluates a forecasting backend with a rolling-origin backtest: training data
// always precedes the holdout it is scored against.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/bryanwhiting/weatherman/backend"
	"github.com/bryanwhiting/weatherman/history"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNoHistory           = errors.New("no history to backtest")
	ErrNoBackend           = errors.New("no backend to backtest")
	ErrNegativeParallelism = errors.New("negative parallelism")
)

// Score is the accuracy of one model on one series in one window
type Score struct {
	SeriesID     string    `json:"unique_id"`
	Window       int       `json:"window"`
	Model        string    `json:"model"`
	SMAPE        float64   `json:"smape"`
	Horizon      int       `json:"horizon"`
	HoldoutStart time.Time `json:"holdout_start"`
	HoldoutEnd   time.Time `json:"holdout_end"`
}

// Point is one prediction paired with the observed value it is scored against
type Point struct {
	SeriesID  string    `json:"unique_id"`
	Window    int       `json:"window"`
	Model     string    `json:"model"`
	Timestamp time.Time `json:"ds"`
	Actual    float64   `json:"y"`
	Predicted float64   `json:"yhat"`
}

// Report holds every planned window and the scores and points in window, series, model order
type Report struct {
	Windows []Window
	Scores  []Score
	Points  []Point
}

// Config describes a backtest run
type Config struct {
	Horizon        int
	WindowCount    int
	SeasonalPeriod int
}

// Options configures the engine
type Options struct {
	// Parallelism is the number of windows evaluated concurrently
	Parallelism int
}

func NewDefaultOptions() *Options {
	return &Options{
		Parallelism: 1,
	}
}

// Validate runs basic validation on engine options
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		o = NewDefaultOptions()
	}
	if o.Parallelism < 0 {
		return nil, ErrNegativeParallelism
	}
	if o.Parallelism == 0 {
		o.Parallelism = 1
	}
	return o, nil
}

// Engine runs rolling-origin backtests
type Engine struct {
	opt *Options
}

// NewEngine creates an engine, using default options when nil
func NewEngine(opt *Options) (*Engine, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &Engine{opt: opt}, nil
}

type windowResult struct {
	scores []Score
	points []Point
}

// Evaluate plans the achievable windows for the history and scores every model of the backend in
// each of them. Too little history for a single window yields an empty report.
func (e *Engine) Evaluate(ctx context.Context, h *history.History, cfg Config, b backend.Backend) (*Report, error) {
	if h == nil {
		return nil, ErrNoHistory
	}
	if b == nil {
		return nil, ErrNoBackend
	}

	report := &Report{}
	minLen := h.Table.MinLen()
	achievable := PlanWindows(minLen, cfg.Horizon, cfg.WindowCount)
	if achievable == 0 {
		slog.Info("not enough history for a backtest window", "min_len", minLen, "horizon", cfg.Horizon)
		return report, nil
	}
	if achievable < cfg.WindowCount {
		slog.Info("reduced backtest windows to fit history", "requested", cfg.WindowCount, "achievable", achievable)
	}

	series := h.Table.Group()
	offsets := Offsets(achievable, cfg.Horizon)
	splits := make([]split, len(offsets))
	for w, offset := range offsets {
		splits[w] = splitWindow(series, w+1, offset, cfg.Horizon)
		report.Windows = append(report.Windows, splits[w].window)
	}

	spec := backend.Spec{
		Horizon:        cfg.Horizon,
		Frequency:      h.Frequency,
		SeasonalPeriod: cfg.SeasonalPeriod,
	}

	results := make([]windowResult, len(splits))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.opt.Parallelism)
	for w := range splits {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			frame, err := b.Forecast(gCtx, splits[w].train, spec)
			if err != nil {
				return fmt.Errorf("unable to forecast backtest window %d, %w", splits[w].window.Index, err)
			}
			if err := frame.Validate(); err != nil {
				return fmt.Errorf("backtest window %d, %w", splits[w].window.Index, err)
			}
			results[w] = score(splits[w], frame, cfg.Horizon)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, res := range results {
		report.Scores = append(report.Scores, res.scores...)
		report.Points = append(report.Points, res.points...)
	}
	return report, nil
}

type joinKey struct {
	seriesID string
	ts       int64
}

// score inner joins the frame to the holdout on series and timestamp and computes one score per
// series and model present in the join. Every model of a series reports the span of the join,
// even when some of its predictions were not finite.
func score(s split, frame *backend.Frame, horizon int) windowResult {
	predicted := make(map[joinKey][]float64, len(frame.Rows))
	for _, row := range frame.Rows {
		predicted[joinKey{row.SeriesID, row.Timestamp.UnixNano()}] = row.Values
	}

	var res windowResult
	for _, hold := range s.holdout {
		var ts []time.Time
		var actual []float64
		var values [][]float64
		for i, t := range hold.T {
			v, exists := predicted[joinKey{hold.ID, t.UnixNano()}]
			if !exists {
				continue
			}
			ts = append(ts, t)
			actual = append(actual, hold.Y[i])
			values = append(values, v)
		}
		if len(ts) == 0 {
			continue
		}

		for m, model := range frame.Models {
			var mTs []time.Time
			var mActual, mPredicted []float64
			for i := range ts {
				yhat := values[i][m]
				if math.IsNaN(yhat) || math.IsInf(yhat, 0) {
					continue
				}
				mTs = append(mTs, ts[i])
				mActual = append(mActual, actual[i])
				mPredicted = append(mPredicted, yhat)
			}
			if len(mTs) == 0 {
				continue
			}

			res.scores = append(res.scores, Score{
				SeriesID:     hold.ID,
				Window:       s.window.Index,
				Model:        model,
				SMAPE:        SMAPE(mActual, mPredicted),
				Horizon:      horizon,
				HoldoutStart: ts[0],
				HoldoutEnd:   ts[len(ts)-1],
			})
			for i := range mTs {
				res.points = append(res.points, Point{
					SeriesID:  hold.ID,
					Window:    s.window.Index,
					Model:     model,
					Timestamp: mTs[i],
					Actual:    mActual[i],
					Predicted: mPredicted[i],
				})
			}
		}
	}

	if len(res.scores) == 0 {
		slog.Info("backtest window has no predictions matching its holdout, skipping", "window", s.window.Index)
	}
	return res
}
