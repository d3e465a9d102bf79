package weatherman

import (
	"bytes"
	"testing"

	"github.com/bryanwhiting/weatherman/backtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummary(t *testing.T) {
	testData := map[string]struct {
		scores   []backtest.Score
		expected []ModelSummary
		best     string
	}{
		"no scores": {},
		"mean across windows and series": {
			scores: []backtest.Score{
				{SeriesID: "a", Window: 1, Model: "HoltWinters", SMAPE: 10},
				{SeriesID: "a", Window: 1, Model: "SeasonalNaive", SMAPE: 4},
				{SeriesID: "b", Window: 1, Model: "HoltWinters", SMAPE: 20},
				{SeriesID: "b", Window: 1, Model: "SeasonalNaive", SMAPE: 8},
				{SeriesID: "a", Window: 2, Model: "HoltWinters", SMAPE: 0},
			},
			expected: []ModelSummary{
				{Model: "SeasonalNaive", MeanSMAPE: 6, Windows: 1, Series: 2},
				{Model: "HoltWinters", MeanSMAPE: 10, Windows: 2, Series: 2},
			},
			best: "SeasonalNaive",
		},
		"ties broken by name": {
			scores: []backtest.Score{
				{SeriesID: "a", Window: 1, Model: "Zeta", SMAPE: 1.23456},
				{SeriesID: "a", Window: 1, Model: "Alpha", SMAPE: 1.23456},
			},
			expected: []ModelSummary{
				{Model: "Alpha", MeanSMAPE: 1.2346, Windows: 1, Series: 1},
				{Model: "Zeta", MeanSMAPE: 1.2346, Windows: 1, Series: 1},
			},
			best: "Alpha",
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res := &Result{BacktestScores: td.scores}
			assert.Equal(t, td.expected, res.Summary())

			best, ok := res.BestModel()
			assert.Equal(t, td.best != "", ok)
			assert.Equal(t, td.best, best)
		})
	}

	var nilResult *Result
	assert.Nil(t, nilResult.Summary())
}

func TestTablePrint(t *testing.T) {
	res := &Result{
		Backend:        "native",
		SeasonalPeriod: 7,
		Forecast:       make([]ForecastPoint, 6),
		BacktestScores: []backtest.Score{
			{SeriesID: "a", Window: 1, Model: "Fourier", SMAPE: 12.5},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, res.TablePrint(&buf))
	out := buf.String()
	assert.Contains(t, out, "Backend: native\n")
	assert.Contains(t, out, "Seasonal Period: 7\n")
	assert.Contains(t, out, "Forecast Points: 6\n")
	assert.Contains(t, out, "Fourier")
	assert.Contains(t, out, "12.5000")

	buf.Reset()
	res.BacktestScores = nil
	require.NoError(t, res.TablePrint(&buf))
	assert.Contains(t, buf.String(), "Backtest: None\n")

	var nilResult *Result
	assert.ErrorIs(t, nilResult.TablePrint(&buf), ErrNilResult)
}
