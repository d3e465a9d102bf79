package weatherman

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/bryanwhiting/weatherman/backtest"
	"github.com/bryanwhiting/weatherman/history"
	"github.com/bryanwhiting/weatherman/request"
)

// ForecastPoint is one prediction of the final forecast
type ForecastPoint struct {
	SeriesID  string    `json:"unique_id"`
	Timestamp time.Time `json:"ds"`
	Model     string    `json:"model"`
	Predicted float64   `json:"yhat"`
}

// Result is the output of one forecasting job. Forecast points are ordered by series, timestamp
// then model. Backtest scores and points are ordered by window, series then model.
type Result struct {
	Request        *request.Request `json:"request"`
	Backend        string           `json:"backend"`
	SeasonalPeriod int              `json:"seasonal_period"`
	Frequency      time.Duration    `json:"-"`

	History  history.Table   `json:"history"`
	Forecast []ForecastPoint `json:"forecast"`

	BacktestWindows []backtest.Window `json:"backtest_windows,omitempty"`
	BacktestScores  []backtest.Score  `json:"backtest"`
	BacktestPoints  []backtest.Point  `json:"backtest_points"`
}

// ModelSummary aggregates the backtest scores of one model
type ModelSummary struct {
	Model     string  `json:"model"`
	MeanSMAPE float64 `json:"mean_smape"`
	Windows   int     `json:"windows"`
	Series    int     `json:"series"`
}

// Summary averages the backtest SMAPE of every model across windows and series, best model first.
// Ties are broken by model name.
func (r *Result) Summary() []ModelSummary {
	if r == nil || len(r.BacktestScores) == 0 {
		return nil
	}

	type agg struct {
		sum     float64
		cnt     int
		windows map[int]struct{}
		series  map[string]struct{}
	}
	byModel := make(map[string]*agg)
	for _, s := range r.BacktestScores {
		a, exists := byModel[s.Model]
		if !exists {
			a = &agg{windows: make(map[int]struct{}), series: make(map[string]struct{})}
			byModel[s.Model] = a
		}
		a.sum += s.SMAPE
		a.cnt += 1
		a.windows[s.Window] = struct{}{}
		a.series[s.SeriesID] = struct{}{}
	}

	summary := make([]ModelSummary, 0, len(byModel))
	for model, a := range byModel {
		summary = append(summary, ModelSummary{
			Model:     model,
			MeanSMAPE: backtest.Round(a.sum/float64(a.cnt), backtest.ScorePrecision),
			Windows:   len(a.windows),
			Series:    len(a.series),
		})
	}
	sort.Slice(summary, func(i, j int) bool {
		if summary[i].MeanSMAPE != summary[j].MeanSMAPE {
			return summary[i].MeanSMAPE < summary[j].MeanSMAPE
		}
		return summary[i].Model < summary[j].Model
	})
	return summary
}

// BestModel returns the model with the lowest mean backtest SMAPE. It reports false when no
// backtest scores exist.
func (r *Result) BestModel() (string, bool) {
	summary := r.Summary()
	if len(summary) == 0 {
		return "", false
	}
	return summary[0].Model, true
}

// TablePrint writes a human readable summary of the result
func (r *Result) TablePrint(w io.Writer) error {
	if r == nil {
		return ErrNilResult
	}
	fmt.Fprintf(w, "Backend: %s\n", r.Backend)
	fmt.Fprintf(w, "Seasonal Period: %d\n", r.SeasonalPeriod)
	fmt.Fprintf(w, "Series: %d\n", len(r.History.SeriesIDs()))
	fmt.Fprintf(w, "Forecast Points: %d\n", len(r.Forecast))

	summary := r.Summary()
	if len(summary) == 0 {
		fmt.Fprintf(w, "Backtest: None\n")
		return nil
	}

	fmt.Fprintf(w, "Backtest:\n")
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tbl, "  Model\tMean SMAPE\tWindows\tSeries\t\n")
	for _, s := range summary {
		fmt.Fprintf(tbl, "  %s\t%.4f\t%d\t%d\t\n", s.Model, s.MeanSMAPE, s.Windows, s.Series)
	}
	return tbl.Flush()
}
