// Package dataset provides the demo dataset loaders used when a request runs in demo mode.
package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bryanwhiting/weatherman/history"
	"github.com/spf13/cast"
)

const (
	ColumnSeriesID  = "unique_id"
	ColumnTimestamp = "ds"
	ColumnValue     = "y"
)

var ErrNoPath = errors.New("no dataset path configured")

// M5CSV loads a long format csv export of the M5 sales data with a header containing at least the
// unique_id, ds and y columns.
type M5CSV struct {
	Path string
}

// Load reads the file and returns the rows of the first count series in file order
func (m *M5CSV) Load(ctx context.Context, count int) (history.Table, error) {
	if m == nil || m.Path == "" {
		return nil, ErrNoPath
	}
	f, err := os.Open(m.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to open demo dataset, %w", err)
	}
	defer f.Close()

	table, err := ReadLongFormat(ctx, f, m.Path)
	if err != nil {
		return nil, err
	}
	return table.Keep(count), nil
}

// ReadLongFormat parses csv rows of unique_id, ds, y in any column order. Timestamps without a zone
// are read as UTC.
func ReadLongFormat(ctx context.Context, r io.Reader, source string) (history.Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, history.NewDataShapeError(source, history.ErrEmptyDataset, "no header")
		}
		return nil, fmt.Errorf("unable to read header, %w", err)
	}

	cols := make(map[string]int)
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	var missing []string
	for _, name := range []string{ColumnSeriesID, ColumnTimestamp, ColumnValue} {
		if _, exists := cols[name]; !exists {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, history.NewDataShapeError(source, history.ErrMissingColumn, "expected columns %s", strings.Join(missing, ", "))
	}
	idCol, dsCol, yCol := cols[ColumnSeriesID], cols[ColumnTimestamp], cols[ColumnValue]

	var table history.Table
	for line := 2; ; line++ {
		if line%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, history.NewDataShapeError(source, err, "line %d", line)
		}

		ts, err := cast.ToTimeInDefaultLocationE(record[dsCol], time.UTC)
		if err != nil {
			return nil, history.NewDataShapeError(source, history.ErrInvalidTime, "line %d: %v", line, err)
		}
		y, err := cast.ToFloat64E(strings.TrimSpace(record[yCol]))
		if err != nil {
			return nil, history.NewDataShapeError(source, history.ErrInvalidValue, "line %d: %v", line, err)
		}

		table = append(table, history.Row{
			SeriesID:  strings.TrimSpace(record[idCol]),
			Timestamp: ts,
			Value:     y,
		})
	}
	return table, nil
}
