package request

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func series(n int, val float64) []any {
	out := make([]any, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, val+float64(i))
	}
	return out
}

func seriesFloat(n int, val float64) []float64 {
	out := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, val+float64(i))
	}
	return out
}

func TestNormalize(t *testing.T) {
	start := time.Date(2026, 1, 1, 17, 15, 0, 0, time.UTC)

	testData := map[string]struct {
		raw      map[string]any
		expected *Request
		err      error
	}{
		"legacy single series": {
			raw: map[string]any{
				"start_datetime": "2026-01-01T17:15:00",
				"granularity":    "1h",
				"series":         series(12, 1.0),
				"horizon":        12.0,
			},
			expected: &Request{
				StartTime:           start,
				Granularity:         Granularity1h,
				SeriesNames:         []string{DefaultSeriesName},
				SeriesValues:        [][]float64{seriesFloat(12, 1.0)},
				Horizon:             12,
				BacktestWindowCount: DefaultBacktestWindows,
				Backend:             BackendAuto,
				DemoSeriesCount:     DefaultDemoSeriesCount,
			},
		},
		"legacy series name": {
			raw: map[string]any{
				"start_time":  "2026-01-01T17:15:00Z",
				"granularity": "1d",
				"series":      series(10, 0.0),
				"series_name": "sales",
				"model":       "native",
			},
			expected: &Request{
				StartTime:           start,
				Granularity:         Granularity1d,
				SeriesNames:         []string{"sales"},
				SeriesValues:        [][]float64{seriesFloat(10, 0.0)},
				Horizon:             DefaultHorizon,
				BacktestWindowCount: DefaultBacktestWindows,
				Backend:             BackendNative,
				DemoSeriesCount:     DefaultDemoSeriesCount,
			},
		},
		"canonical multi series": {
			raw: map[string]any{
				"start_time":       "2026-01-01 17:15:00",
				"granularity":      "15m",
				"series_data":      []any{series(40, 1.0), series(50, 2.0)},
				"series_names":     []any{"a", "b"},
				"horizon":          10,
				"seasonal_period":  4,
				"backtest":         true,
				"backtest_windows": 5,
				"backend":          "remote",
				"unknown_field":    "ignored",
			},
			expected: &Request{
				StartTime:           start,
				Granularity:         Granularity15m,
				SeriesNames:         []string{"a", "b"},
				SeriesValues:        [][]float64{seriesFloat(40, 1.0), seriesFloat(50, 2.0)},
				Horizon:             10,
				SeasonalPeriod:      4,
				BacktestEnabled:     true,
				BacktestWindowCount: 5,
				Backend:             BackendRemote,
				DemoSeriesCount:     DefaultDemoSeriesCount,
			},
		},
		"canonical fields take precedence over legacy": {
			raw: map[string]any{
				"start_time":   "2026-01-01T17:15:00",
				"granularity":  "4h",
				"series_data":  []any{series(10, 5.0)},
				"series":       series(3, 1.0),
				"series_names": []any{"kept"},
				"series_name":  "dropped",
			},
			expected: &Request{
				StartTime:           start,
				Granularity:         Granularity4h,
				SeriesNames:         []string{"kept"},
				SeriesValues:        [][]float64{seriesFloat(10, 5.0)},
				Horizon:             DefaultHorizon,
				BacktestWindowCount: DefaultBacktestWindows,
				Backend:             BackendAuto,
				DemoSeriesCount:     DefaultDemoSeriesCount,
			},
		},
		"demo mode ignores user series": {
			raw: map[string]any{
				"use_m5":          true,
				"m5_series_count": 2,
				"series":          []any{"not", "numbers"},
				"series_names":    []any{"x", "y"},
			},
			expected: &Request{
				Granularity:         Granularity1d,
				SeriesNames:         []string{ReservedDemoName},
				Horizon:             DefaultHorizon,
				BacktestWindowCount: DefaultBacktestWindows,
				Backend:             BackendAuto,
				DemoMode:            true,
				DemoSeriesCount:     2,
			},
		},
		"reserved name without demo mode": {
			raw: map[string]any{
				"start_time":   "2026-01-01T17:15:00",
				"granularity":  "1d",
				"series_data":  []any{series(10, 1.0)},
				"series_names": []any{ReservedDemoName},
				"demo_mode":    false,
			},
			err: ErrReservedName,
		},
		"name count mismatch": {
			raw: map[string]any{
				"start_time":   "2026-01-01T17:15:00",
				"granularity":  "1d",
				"series_data":  []any{series(10, 1.0)},
				"series_names": []any{"a", "b"},
			},
			err: ErrCountMismatch,
		},
		"multi series without names": {
			raw: map[string]any{
				"start_time":  "2026-01-01T17:15:00",
				"granularity": "1d",
				"series_data": []any{series(10, 1.0), series(10, 1.0)},
			},
			err: ErrCountMismatch,
		},
		"single series with two names": {
			raw: map[string]any{
				"start_time":   "2026-01-01T17:15:00",
				"granularity":  "1d",
				"series":       series(10, 1.0),
				"series_names": []any{"a", "b"},
			},
			err: ErrCountMismatch,
		},
		"missing series": {
			raw: map[string]any{
				"start_time":  "2026-01-01T17:15:00",
				"granularity": "1d",
			},
			err: ErrMissingSeries,
		},
		"empty series": {
			raw: map[string]any{
				"start_time":  "2026-01-01T17:15:00",
				"granularity": "1d",
				"series_data": []any{},
			},
			err: ErrMissingSeries,
		},
		"short single series": {
			raw: map[string]any{
				"start_time":  "2026-01-01T17:15:00",
				"granularity": "1d",
				"series":      series(9, 1.0),
			},
			err: ErrSeriesTooShort,
		},
		"short inner series": {
			raw: map[string]any{
				"start_time":   "2026-01-01T17:15:00",
				"granularity":  "1d",
				"series_data":  []any{series(10, 1.0), series(9, 1.0)},
				"series_names": []any{"a", "b"},
			},
			err: ErrSeriesTooShort,
		},
		"null value": {
			raw: map[string]any{
				"start_time":  "2026-01-01T17:15:00",
				"granularity": "1d",
				"series":      append(series(10, 1.0), nil),
			},
			err: ErrNullValue,
		},
		"boolean value": {
			raw: map[string]any{
				"start_time":  "2026-01-01T17:15:00",
				"granularity": "1d",
				"series":      append(series(10, 1.0), true),
			},
			err: ErrNonNumeric,
		},
		"string in inner series": {
			raw: map[string]any{
				"start_time":   "2026-01-01T17:15:00",
				"granularity":  "1d",
				"series_data":  []any{append(series(10, 1.0), "1.0")},
				"series_names": []any{"a"},
			},
			err: ErrNonNumeric,
		},
		"scalar mixed with lists": {
			raw: map[string]any{
				"start_time":   "2026-01-01T17:15:00",
				"granularity":  "1d",
				"series_data":  []any{series(10, 1.0), 3.0},
				"series_names": []any{"a", "b"},
			},
			err: ErrNonNumeric,
		},
		"duplicate names": {
			raw: map[string]any{
				"start_time":   "2026-01-01T17:15:00",
				"granularity":  "1d",
				"series_data":  []any{series(10, 1.0), series(10, 1.0)},
				"series_names": []any{"a", "a"},
			},
			err: ErrDuplicateName,
		},
		"horizon out of range": {
			raw: map[string]any{
				"start_time":  "2026-01-01T17:15:00",
				"granularity": "1d",
				"series":      series(10, 1.0),
				"horizon":     1001,
			},
			err: ErrOutOfRange,
		},
		"zero horizon": {
			raw: map[string]any{
				"start_time":  "2026-01-01T17:15:00",
				"granularity": "1d",
				"series":      series(10, 1.0),
				"horizon":     0,
			},
			err: ErrOutOfRange,
		},
		"fractional horizon": {
			raw: map[string]any{
				"start_time":  "2026-01-01T17:15:00",
				"granularity": "1d",
				"series":      series(10, 1.0),
				"horizon":     2.5,
			},
			err: ErrInvalidType,
		},
		"window count out of range": {
			raw: map[string]any{
				"start_time":       "2026-01-01T17:15:00",
				"granularity":      "1d",
				"series":           series(10, 1.0),
				"backtest_windows": 21,
			},
			err: ErrOutOfRange,
		},
		"seasonal period out of range": {
			raw: map[string]any{
				"start_time":      "2026-01-01T17:15:00",
				"granularity":     "1d",
				"series":          series(10, 1.0),
				"seasonal_period": 1,
			},
			err: ErrOutOfRange,
		},
		"unknown granularity": {
			raw: map[string]any{
				"start_time":  "2026-01-01T17:15:00",
				"granularity": "2h",
				"series":      series(10, 1.0),
			},
			err: ErrInvalidGranularity,
		},
		"missing granularity": {
			raw: map[string]any{
				"start_time": "2026-01-01T17:15:00",
				"series":     series(10, 1.0),
			},
			err: ErrMissingField,
		},
		"unknown backend": {
			raw: map[string]any{
				"start_time":  "2026-01-01T17:15:00",
				"granularity": "1d",
				"series":      series(10, 1.0),
				"backend":     "prophet",
			},
			err: ErrInvalidBackend,
		},
		"invalid start time": {
			raw: map[string]any{
				"start_time":  "yesterday",
				"granularity": "1d",
				"series":      series(10, 1.0),
			},
			err: ErrInvalidStartTime,
		},
		"missing start time": {
			raw: map[string]any{
				"granularity": "1d",
				"series":      series(10, 1.0),
			},
			err: ErrMissingField,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			req, err := Normalize(td.raw)
			if td.err != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, td.err)

				var vErr *ValidationError
				require.True(t, errors.As(err, &vErr))
				assert.NotEmpty(t, vErr.Field)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, req)
		})
	}
}

func TestNormalizeInvariants(t *testing.T) {
	testData := map[string]map[string]any{
		"single": {
			"start_time":  "2026-01-01T00:00:00",
			"granularity": "1h",
			"series":      series(12, 1.0),
		},
		"multi": {
			"start_time":   "2026-01-01T00:00:00+02:00",
			"granularity":  "1w",
			"series_data":  []any{series(40, 1.0), series(50, 2.0), series(10, -3.0)},
			"series_names": []any{"c", "a", "b"},
			"backtest":     true,
		},
		"typed payload": {
			"start_time":   "2026-01-01",
			"granularity":  "30m",
			"series_data":  [][]float64{seriesFloat(11, 0.5)},
			"series_names": []string{"typed"},
		},
	}

	for name, raw := range testData {
		t.Run(name, func(t *testing.T) {
			req, err := Normalize(raw)
			require.Nil(t, err)

			assert.Equal(t, len(req.SeriesNames), len(req.SeriesValues))
			for _, s := range req.SeriesValues {
				assert.GreaterOrEqual(t, len(s), MinSeriesLength)
			}

			again, err := Normalize(req.ToMap())
			require.Nil(t, err)
			assert.Equal(t, req, again)
		})
	}
}

func TestNormalizeDemoIdempotent(t *testing.T) {
	req, err := Normalize(map[string]any{
		"demo_mode":         true,
		"demo_series_count": 5,
		"horizon":           28,
		"seasonal_period":   7,
		"series_names":      []any{ReservedDemoName},
	})
	require.Nil(t, err)
	assert.Equal(t, []string{ReservedDemoName}, req.SeriesNames)
	assert.Nil(t, req.Series())
	assert.True(t, req.HasSeasonalPeriod())

	again, err := Normalize(req.ToMap())
	require.Nil(t, err)
	assert.Equal(t, req, again)
}

func TestDecode(t *testing.T) {
	jsonRaw, err := DecodeJSON([]byte(`{
		"start_datetime": "2026-01-01T17:15:00",
		"granularity": "1h",
		"series": [1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12],
		"horizon": 12
	}`))
	require.Nil(t, err)

	yamlRaw, err := DecodeYAML([]byte(`
start_datetime: "2026-01-01T17:15:00"
granularity: 1h
series: [1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12]
horizon: 12
`))
	require.Nil(t, err)

	fromJSON, err := Normalize(jsonRaw)
	require.Nil(t, err)
	fromYAML, err := Normalize(yamlRaw)
	require.Nil(t, err)
	assert.Equal(t, fromJSON, fromYAML)
	assert.Equal(t, 12, fromJSON.Horizon)

	_, err = DecodeJSON([]byte(`{"series": [`))
	assert.Error(t, err)
}

func TestGranularity(t *testing.T) {
	testData := map[string]struct {
		step   time.Duration
		season int
	}{
		"15m": {15 * time.Minute, 96},
		"30m": {30 * time.Minute, 48},
		"1h":  {time.Hour, 24},
		"4h":  {4 * time.Hour, 6},
		"1d":  {24 * time.Hour, 7},
		"1w":  {7 * 24 * time.Hour, 52},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			g, err := ParseGranularity(name)
			require.Nil(t, err)
			assert.Equal(t, td.step, g.Step())
			assert.Equal(t, td.season, g.DefaultSeasonalPeriod())
		})
	}

	_, err := ParseGranularity("1y")
	assert.ErrorIs(t, err, ErrInvalidGranularity)
}
