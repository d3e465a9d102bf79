package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bryanwhiting/weatherman"
	"github.com/bryanwhiting/weatherman/backtest"
	"github.com/bryanwhiting/weatherman/history"
	"github.com/bryanwhiting/weatherman/request"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStart = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func testResult() *weatherman.Result {
	return &weatherman.Result{
		Request: &request.Request{
			StartTime:    testStart,
			Granularity:  request.Granularity1h,
			SeriesNames:  []string{"sales", "returns"},
			SeriesValues: [][]float64{{1, 2}, {3, 4}},
			Horizon:      2,
			Backend:      request.BackendAuto,
		},
		Backend:        "native",
		SeasonalPeriod: 2,
		History: history.Table{
			{SeriesID: "returns", Timestamp: testStart, Value: 3},
			{SeriesID: "returns", Timestamp: testStart.Add(time.Hour), Value: 4},
			{SeriesID: "sales", Timestamp: testStart, Value: 1},
			{SeriesID: "sales", Timestamp: testStart.Add(time.Hour), Value: 2},
		},
		Forecast: []weatherman.ForecastPoint{
			{SeriesID: "returns", Timestamp: testStart.Add(2 * time.Hour), Model: "SeasonalNaive", Predicted: 3},
			{SeriesID: "sales", Timestamp: testStart.Add(2 * time.Hour), Model: "SeasonalNaive", Predicted: 1},
		},
		BacktestScores: []backtest.Score{
			{SeriesID: "sales", Window: 1, Model: "SeasonalNaive", SMAPE: 12.5, Horizon: 2},
		},
		BacktestPoints: []backtest.Point{},
	}
}

func TestNewProvenance(t *testing.T) {
	p := NewProvenance("acme/weather", "42", "octocat", "abc123")
	assert.Equal(t, "https://github.com/acme/weather/actions/runs/42", p.RunURL)

	p = NewProvenance("", "42", "", "")
	assert.Empty(t, p.RunURL)
}

func TestWriteResult(t *testing.T) {
	res := testResult()
	meta := NewMeta("daily-sales", res, testStart, Provenance{})
	_, err := uuid.Parse(meta.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, meta.HistoryPoints)
	assert.Equal(t, 2, meta.ForecastPoints)
	assert.Equal(t, "SeasonalNaive", meta.BestModel)

	path := filepath.Join(t.TempDir(), "forecasts", "daily-sales.json")
	require.NoError(t, WriteResult(path, res, &meta))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"request", "backend", "seasonal_period", "history", "forecast", "backtest", "backtest_points", "meta"} {
		assert.Contains(t, raw, key)
	}

	doc, err := ReadResult(path)
	require.NoError(t, err)
	assert.Equal(t, res.Backend, doc.Backend)
	assert.Equal(t, res.History, doc.History)
	assert.Equal(t, res.Forecast, doc.Forecast)
	assert.Equal(t, res.BacktestScores, doc.BacktestScores)
	require.NotNil(t, doc.Meta)
	assert.Equal(t, meta.ID, doc.Meta.ID)

	assert.ErrorIs(t, WriteResult(path, nil, nil), ErrNoResult)
}

func TestIndexUpsert(t *testing.T) {
	idx := &Index{Path: filepath.Join(t.TempDir(), "forecast-index.json")}

	entries, err := idx.Load()
	require.NoError(t, err)
	assert.Empty(t, entries)

	res := testResult()
	testData := []struct {
		slug string
		at   time.Time
	}{
		{slug: "old", at: testStart},
		{slug: "new", at: testStart.Add(48 * time.Hour)},
		{slug: "mid", at: testStart.Add(24 * time.Hour)},
		// rerunning a slug replaces its entry
		{slug: "old", at: testStart.Add(72 * time.Hour)},
	}
	for _, td := range testData {
		require.NoError(t, idx.Upsert(NewEntry(NewMeta(td.slug, res, td.at, Provenance{}), res)))
	}

	entries, err = idx.Load()
	require.NoError(t, err)
	require.Len(t, entries, 3)

	var slugs []string
	for _, e := range entries {
		slugs = append(slugs, e.Slug)
	}
	assert.Equal(t, []string{"old", "new", "mid"}, slugs)

	first := entries[0]
	assert.Equal(t, "sales, returns", first.Title)
	assert.Equal(t, "1h", first.Granularity)
	assert.Equal(t, 2, first.Horizon)
	assert.Equal(t, "native", first.Backend)
	assert.Equal(t, "/forecasts/old", first.Path)

	assert.ErrorIs(t, idx.Upsert(Entry{}), ErrNoSlug)
}

func TestIndexLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := (&Index{Path: path}).Load()
	assert.Error(t, err)
}
