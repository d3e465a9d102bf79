package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/bryanwhiting/weatherman/request"
	"github.com/bryanwhiting/weatherman/timedataset"
)

// DefaultDemoFrequency is reported for demo data whose sampling step cannot be inferred
const DefaultDemoFrequency = 24 * time.Hour

// DemoLoader provides the bundled demo dataset in long format. Implementations may return more
// series than requested.
type DemoLoader interface {
	Load(ctx context.Context, count int) (Table, error)
}

// Builder produces the history table for a request
type Builder struct {
	demo DemoLoader
}

// NewBuilder creates a builder backed by the given demo loader. The loader may be nil when demo
// requests are never served.
func NewBuilder(demo DemoLoader) *Builder {
	return &Builder{demo: demo}
}

// Build returns the history for the request sorted by series id then timestamp
func (b *Builder) Build(ctx context.Context, req *request.Request) (*History, error) {
	if req == nil {
		return nil, ErrNilRequest
	}
	if req.DemoMode {
		return b.buildDemo(ctx, req.DemoSeriesCount)
	}
	return buildFromRequest(req)
}

func buildFromRequest(req *request.Request) (*History, error) {
	step := req.Granularity.Step()
	if step <= 0 {
		return nil, fmt.Errorf("granularity %q, %w", req.Granularity, ErrUnknownGranularity)
	}

	var size int
	for _, values := range req.SeriesValues {
		size += len(values)
	}

	table := make(Table, 0, size)
	for _, s := range req.Series() {
		t := timedataset.GenerateT(len(s.Values), step, req.StartTime)
		for i, v := range s.Values {
			table = append(table, Row{SeriesID: s.Name, Timestamp: t[i], Value: v})
		}
	}
	table.Sort()

	return &History{Table: table, Frequency: step}, nil
}

func (b *Builder) buildDemo(ctx context.Context, count int) (*History, error) {
	if b == nil || b.demo == nil {
		return nil, ErrNoDemoLoader
	}
	if count < 1 {
		count = request.DefaultDemoSeriesCount
	}

	loaded, err := b.demo.Load(ctx, count)
	if err != nil {
		return nil, fmt.Errorf("unable to load demo dataset, %w", err)
	}

	table := loaded.Keep(count)
	if len(table) == 0 {
		return nil, NewDataShapeError("demo", ErrEmptyDataset, "loader returned no rows")
	}
	table.Sort()

	if err := Validate(table); err != nil {
		return nil, err
	}

	series := table.Group()
	if n := len(table.SeriesIDs()); n < count {
		slog.Info("demo dataset has fewer series than requested", "requested", count, "available", n)
	}

	freq, err := timedataset.TimeSlice(series[0].T).EstimateFreq()
	if err != nil {
		if !errors.Is(err, timedataset.ErrCannotInferFreq) {
			return nil, fmt.Errorf("unable to infer demo frequency, %w", err)
		}
		freq = DefaultDemoFrequency
	}

	return &History{Table: table, Frequency: freq}, nil
}

// Validate checks that a sorted table has non-empty series ids, finite values, and strictly
// increasing timestamps within each series.
func Validate(table Table) error {
	for i, row := range table {
		if row.SeriesID == "" {
			return NewDataShapeError("", ErrEmptySeriesID, "row %d", i)
		}
		if math.IsNaN(row.Value) || math.IsInf(row.Value, 0) {
			return NewDataShapeError("", ErrInvalidValue, "row %d of series %q has value %v", i, row.SeriesID, row.Value)
		}
		if row.Timestamp.IsZero() {
			return NewDataShapeError("", ErrInvalidTime, "row %d of series %q has no timestamp", i, row.SeriesID)
		}
	}

	for _, s := range table.Group() {
		if _, err := timedataset.NewUnivariateDataset(s.T, s.Y); err != nil {
			return NewDataShapeError("", errors.Join(ErrNonMonotonic, err), "series %q", s.ID)
		}
	}
	return nil
}
