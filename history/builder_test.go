package history

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/bryanwhiting/weatherman/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticLoader struct {
	table Table
	err   error
}

func (s staticLoader) Load(ctx context.Context, count int) (Table, error) {
	return s.table, s.err
}

func hourly(id string, n int, start time.Time) Table {
	table := make(Table, 0, n)
	for i := 0; i < n; i++ {
		table = append(table, Row{SeriesID: id, Timestamp: start.Add(time.Duration(i) * time.Hour), Value: float64(i)})
	}
	return table
}

func TestBuildFromRequest(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	req := &request.Request{
		StartTime:    start,
		Granularity:  request.Granularity1h,
		SeriesNames:  []string{"zeta", "alpha"},
		SeriesValues: [][]float64{{1, 2, 3}, {4, 5, 6}},
		Horizon:      1,
	}

	h, err := NewBuilder(nil).Build(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, time.Hour, h.Frequency)
	expected := Table{
		{SeriesID: "alpha", Timestamp: start, Value: 4},
		{SeriesID: "alpha", Timestamp: start.Add(time.Hour), Value: 5},
		{SeriesID: "alpha", Timestamp: start.Add(2 * time.Hour), Value: 6},
		{SeriesID: "zeta", Timestamp: start, Value: 1},
		{SeriesID: "zeta", Timestamp: start.Add(time.Hour), Value: 2},
		{SeriesID: "zeta", Timestamp: start.Add(2 * time.Hour), Value: 3},
	}
	assert.Equal(t, expected, h.Table)
}

func TestBuildRowCounts(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	req := &request.Request{
		StartTime:    start,
		Granularity:  request.Granularity1w,
		SeriesNames:  []string{"a", "b"},
		SeriesValues: [][]float64{make([]float64, 12), make([]float64, 12)},
	}

	h, err := NewBuilder(nil).Build(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 12, "b": 12}, h.Table.Lengths())
	assert.Equal(t, start.Add(11*7*24*time.Hour), h.Table[11].Timestamp)
	assert.Equal(t, 7*24*time.Hour, h.Frequency)
}

func TestBuildDemo(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var loaded Table
	loaded = append(loaded, hourly("m5_c", 12, start)...)
	loaded = append(loaded, hourly("m5_a", 12, start)...)
	loaded = append(loaded, hourly("m5_b", 12, start)...)

	testData := map[string]struct {
		loader    DemoLoader
		count     int
		expected  []string
		frequency time.Duration
		err       error
	}{
		"truncated by first seen order": {
			loader:    staticLoader{table: loaded},
			count:     2,
			expected:  []string{"m5_a", "m5_c"},
			frequency: time.Hour,
		},
		"fewer series than requested": {
			loader:    staticLoader{table: loaded},
			count:     5,
			expected:  []string{"m5_a", "m5_b", "m5_c"},
			frequency: time.Hour,
		},
		"single point uses default frequency": {
			loader:    staticLoader{table: Table{{SeriesID: "x", Timestamp: start, Value: 1}}},
			count:     1,
			expected:  []string{"x"},
			frequency: DefaultDemoFrequency,
		},
		"no loader": {
			count: 1,
			err:   ErrNoDemoLoader,
		},
		"loader failure": {
			loader: staticLoader{err: errors.New("boom")},
			count:  1,
			err:    errors.New("unable to load demo dataset, boom"),
		},
		"empty dataset": {
			loader: staticLoader{},
			count:  1,
			err:    ErrEmptyDataset,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			req := &request.Request{
				Granularity:     request.Granularity1d,
				SeriesNames:     []string{request.ReservedDemoName},
				DemoMode:        true,
				DemoSeriesCount: td.count,
			}
			h, err := NewBuilder(td.loader).Build(context.Background(), req)
			if td.err != nil {
				require.Error(t, err)
				if errors.Is(td.err, ErrNoDemoLoader) || errors.Is(td.err, ErrEmptyDataset) {
					assert.ErrorIs(t, err, td.err)
					return
				}
				assert.EqualError(t, err, td.err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, td.expected, h.Table.SeriesIDs())
			assert.Equal(t, td.frequency, h.Frequency)
		})
	}
}

func TestValidate(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	testData := map[string]struct {
		table Table
		err   error
	}{
		"valid": {
			table: hourly("a", 3, start),
		},
		"empty id": {
			table: Table{{SeriesID: "", Timestamp: start, Value: 1}},
			err:   ErrEmptySeriesID,
		},
		"nan value": {
			table: Table{{SeriesID: "a", Timestamp: start, Value: math.NaN()}},
			err:   ErrInvalidValue,
		},
		"missing timestamp": {
			table: Table{{SeriesID: "a", Value: 1}},
			err:   ErrInvalidTime,
		},
		"duplicate timestamps": {
			table: Table{
				{SeriesID: "a", Timestamp: start, Value: 1},
				{SeriesID: "a", Timestamp: start, Value: 2},
			},
			err: ErrNonMonotonic,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			err := Validate(td.table)
			if td.err != nil {
				var shapeErr *DataShapeError
				require.ErrorAs(t, err, &shapeErr)
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestBuildNilRequest(t *testing.T) {
	_, err := NewBuilder(nil).Build(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilRequest)
}
