// Package request holds the canonical forecasting job description and the normalizer that turns
// loosely typed input, including legacy single-series payloads, into it.
package request

import (
	"time"
)

const (
	// ReservedDemoName is the only series name allowed in demo mode and forbidden otherwise
	ReservedDemoName = "demo_mode_m5"

	// DefaultSeriesName is assigned to a single unnamed series
	DefaultSeriesName = "series_1"

	MinSeriesLength = 10

	MinHorizon     = 1
	MaxHorizon     = 1000
	DefaultHorizon = 24

	MinSeasonalPeriod = 2
	MaxSeasonalPeriod = 366

	MinBacktestWindows     = 1
	MaxBacktestWindows     = 20
	DefaultBacktestWindows = 3

	MinDemoSeriesCount     = 1
	MaxDemoSeriesCount     = 1000
	DefaultDemoSeriesCount = 3
)

// Request is a validated, backend agnostic forecasting job. Instances should only be created
// through Normalize so that every invariant holds.
type Request struct {
	StartTime   time.Time   `json:"start_time"`
	Granularity Granularity `json:"granularity"`

	SeriesNames  []string    `json:"series_names"`
	SeriesValues [][]float64 `json:"series_data"`

	Horizon        int `json:"horizon"`
	SeasonalPeriod int `json:"seasonal_period,omitempty"`

	BacktestEnabled     bool `json:"backtest"`
	BacktestWindowCount int  `json:"backtest_windows"`

	Backend Backend `json:"backend"`

	DemoMode        bool `json:"demo_mode"`
	DemoSeriesCount int  `json:"demo_series_count"`
}

// Series is a named sequence of chronologically ordered observations
type Series struct {
	Name   string
	Values []float64
}

// Series pairs the series names with their values. Demo requests carry no user series and
// return nil.
func (r *Request) Series() []Series {
	if r == nil || r.DemoMode {
		return nil
	}
	series := make([]Series, 0, len(r.SeriesValues))
	for i, values := range r.SeriesValues {
		series = append(series, Series{Name: r.SeriesNames[i], Values: values})
	}
	return series
}

// HasSeasonalPeriod reports whether the caller requested an explicit seasonal period
func (r *Request) HasSeasonalPeriod() bool {
	return r != nil && r.SeasonalPeriod != 0
}

// ToMap returns the canonical raw mapping of the request using only canonical keys. Passing the
// result back through Normalize yields an identical request.
func (r *Request) ToMap() map[string]any {
	if r == nil {
		return nil
	}

	names := make([]any, 0, len(r.SeriesNames))
	for _, name := range r.SeriesNames {
		names = append(names, name)
	}

	data := make([]any, 0, len(r.SeriesValues))
	for _, values := range r.SeriesValues {
		row := make([]any, 0, len(values))
		for _, v := range values {
			row = append(row, v)
		}
		data = append(data, row)
	}

	m := map[string]any{
		KeyGranularity:     string(r.Granularity),
		KeySeriesNames:     names,
		KeySeriesData:      data,
		KeyHorizon:         r.Horizon,
		KeyBacktest:        r.BacktestEnabled,
		KeyBacktestWindows: r.BacktestWindowCount,
		KeyBackend:         string(r.Backend),
		KeyDemoMode:        r.DemoMode,
		KeyDemoSeriesCount: r.DemoSeriesCount,
	}
	if !r.StartTime.IsZero() {
		m[KeyStartTime] = r.StartTime.Format(time.RFC3339Nano)
	}
	if r.SeasonalPeriod != 0 {
		m[KeySeasonalPeriod] = r.SeasonalPeriod
	}
	return m
}
