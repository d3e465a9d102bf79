// Package history turns a canonical request into the long format table of observations that every
// forecasting backend and the backtest engine consume.
package history

import (
	"math"
	"sort"
	"time"

	"github.com/bryanwhiting/weatherman/timedataset"
)

// Row is a single observation of a single series
type Row struct {
	SeriesID  string    `json:"unique_id"`
	Timestamp time.Time `json:"ds"`
	Value     float64   `json:"y"`
}

// Table is a long format collection of rows, sorted by series id then timestamp once built
type Table []Row

// History is the built table together with the sampling step of the data
type History struct {
	Table     Table
	Frequency time.Duration
}

// Series is the rows of one series split into time and value slices
type Series struct {
	ID string
	timedataset.TimeDataset
}

// Sort orders the table in place by series id then timestamp. Rows with equal keys keep their
// relative order.
func (t Table) Sort() {
	sort.SliceStable(t, func(i, j int) bool {
		if t[i].SeriesID != t[j].SeriesID {
			return t[i].SeriesID < t[j].SeriesID
		}
		return t[i].Timestamp.Before(t[j].Timestamp)
	})
}

// SeriesIDs returns the distinct series ids in first seen order
func (t Table) SeriesIDs() []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, row := range t {
		if _, exists := seen[row.SeriesID]; exists {
			continue
		}
		seen[row.SeriesID] = struct{}{}
		ids = append(ids, row.SeriesID)
	}
	return ids
}

// Lengths returns the number of rows per series
func (t Table) Lengths() map[string]int {
	lengths := make(map[string]int)
	for _, row := range t {
		lengths[row.SeriesID] += 1
	}
	return lengths
}

// MinLen returns the length of the shortest series, or 0 for an empty table
func (t Table) MinLen() int {
	lengths := t.Lengths()
	if len(lengths) == 0 {
		return 0
	}
	minLen := math.MaxInt
	for _, l := range lengths {
		if l < minLen {
			minLen = l
		}
	}
	return minLen
}

// Keep returns the rows belonging to the first n series in first seen order
func (t Table) Keep(n int) Table {
	ids := t.SeriesIDs()
	if n >= len(ids) {
		out := make(Table, len(t))
		copy(out, t)
		return out
	}
	keep := make(map[string]struct{}, n)
	for _, id := range ids[:n] {
		keep[id] = struct{}{}
	}
	out := make(Table, 0, len(t))
	for _, row := range t {
		if _, exists := keep[row.SeriesID]; exists {
			out = append(out, row)
		}
	}
	return out
}

// Group splits the table into per series time and value slices in first seen order. Rows keep
// their table order within a series.
func (t Table) Group() []Series {
	index := make(map[string]int)
	var series []Series
	for _, row := range t {
		i, exists := index[row.SeriesID]
		if !exists {
			i = len(series)
			index[row.SeriesID] = i
			series = append(series, Series{ID: row.SeriesID})
		}
		series[i].T = append(series[i].T, row.Timestamp)
		series[i].Y = append(series[i].Y, row.Value)
	}
	return series
}
