package request

import (
	"fmt"
	"time"
)

// Granularity is the sampling interval of every series in a request
type Granularity string

const (
	Granularity15m Granularity = "15m"
	Granularity30m Granularity = "30m"
	Granularity1h  Granularity = "1h"
	Granularity4h  Granularity = "4h"
	Granularity1d  Granularity = "1d"
	Granularity1w  Granularity = "1w"
)

var granularitySteps = map[Granularity]time.Duration{
	Granularity15m: 15 * time.Minute,
	Granularity30m: 30 * time.Minute,
	Granularity1h:  time.Hour,
	Granularity4h:  4 * time.Hour,
	Granularity1d:  24 * time.Hour,
	Granularity1w:  7 * 24 * time.Hour,
}

// daily data is assumed to carry weekly seasonality, everything intraday a daily cycle
var granularitySeasons = map[Granularity]int{
	Granularity15m: 96,
	Granularity30m: 48,
	Granularity1h:  24,
	Granularity4h:  6,
	Granularity1d:  7,
	Granularity1w:  52,
}

// ParseGranularity validates the input string against the supported granularities
func ParseGranularity(s string) (Granularity, error) {
	g := Granularity(s)
	if _, exists := granularitySteps[g]; !exists {
		return "", fmt.Errorf("%q, %w", s, ErrInvalidGranularity)
	}
	return g, nil
}

// Step returns the time between two consecutive observations. Unknown granularities return 0.
func (g Granularity) Step() time.Duration {
	return granularitySteps[g]
}

// DefaultSeasonalPeriod returns the number of observations in one expected cycle
func (g Granularity) DefaultSeasonalPeriod() int {
	if p, exists := granularitySeasons[g]; exists {
		return p
	}
	return 7
}

func (g Granularity) String() string {
	return string(g)
}

// Backend selects the forecasting backend used for backtests and the final forecast
type Backend string

const (
	BackendAuto   Backend = "auto"
	BackendNative Backend = "native"
	BackendRemote Backend = "remote"
)

// ParseBackend validates the input string against the known backend names
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(s); b {
	case BackendAuto, BackendNative, BackendRemote:
		return b, nil
	}
	return "", fmt.Errorf("%q, %w", s, ErrInvalidBackend)
}

func (b Backend) String() string {
	return string(b)
}
