// Package event marks calendar holidays on a time axis so regression models can learn a
// separate level for them.
package event

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

var (
	ErrStartAfterEnd = errors.New("event start time is after end time")
	ErrUnsetTime     = errors.New("unset event start or end time")
	ErrNoEventName   = errors.New("no event name")
)

const day = 24 * time.Hour

// Span is a named half open interval [Start, End)
type Span struct {
	Name  string
	Start time.Time
	End   time.Time
}

func (s Span) Validate() error {
	switch {
	case s.Start.IsZero(), s.End.IsZero():
		return ErrUnsetTime
	case s.Start.After(s.End):
		return ErrStartAfterEnd
	case s.Name == "":
		return ErrNoEventName
	}
	return nil
}

func (s Span) Contains(t time.Time) bool {
	return !t.Before(s.Start) && t.Before(s.End)
}

// Calendar is a set of holidays, each widened by Before and After
type Calendar struct {
	Holidays []*cal.Holiday
	Before   time.Duration
	After    time.Duration
}

// NewUSCalendar covers the US federal holidays
func NewUSCalendar() *Calendar {
	return &Calendar{Holidays: us.Holidays}
}

// Spans returns the observed days of every holiday that overlap [start, end], in the location of
// start and sorted by start time
func (c *Calendar) Spans(start, end time.Time) []Span {
	if c == nil {
		return nil
	}
	spans := []Span{}
	for _, hol := range c.Holidays {
		spans = append(spans, c.observed(hol, start, end)...)
	}
	sort.SliceStable(spans, func(i, j int) bool {
		return spans[i].Start.Before(spans[j].Start)
	})
	return spans
}

func (c *Calendar) observed(hol *cal.Holiday, start, end time.Time) []Span {
	var spans []Span
	loc := start.Location()
	for year := start.Year() - 1; year <= end.Year()+1; year++ {
		_, obs := hol.Calc(year)
		if obs.IsZero() {
			continue
		}
		// the holiday is a calendar date wherever the series lives
		date := time.Date(obs.Year(), obs.Month(), obs.Day(), 0, 0, 0, 0, loc)
		s := Span{
			Name:  spanName(hol.Name, year),
			Start: date.Add(-c.Before),
			End:   date.Add(day + c.After),
		}
		if s.End.After(start) && !s.Start.After(end) {
			spans = append(spans, s)
		}
	}
	return spans
}

func spanName(holiday string, year int) string {
	name := strings.ToLower(strings.Join(strings.Fields(holiday), "_"))
	return fmt.Sprintf("%s_%d", name, year)
}

// Indicator returns 1.0 for every time inside one of the calendar's spans and 0.0 otherwise
func (c *Calendar) Indicator(t []time.Time) []float64 {
	mask := make([]float64, len(t))
	if len(t) == 0 {
		return mask
	}
	spans := c.Spans(t[0], t[len(t)-1])
	for i, ts := range t {
		for _, s := range spans {
			if s.Contains(ts) {
				mask[i] = 1.0
				break
			}
		}
	}
	return mask
}
