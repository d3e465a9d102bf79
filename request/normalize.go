package request

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// canonical input keys
const (
	KeyStartTime       = "start_time"
	KeyGranularity     = "granularity"
	KeySeriesData      = "series_data"
	KeySeriesNames     = "series_names"
	KeyHorizon         = "horizon"
	KeySeasonalPeriod  = "seasonal_period"
	KeyBacktest        = "backtest"
	KeyBacktestWindows = "backtest_windows"
	KeyBackend         = "backend"
	KeyDemoMode        = "demo_mode"
	KeyDemoSeriesCount = "demo_series_count"
)

// legacyKeys maps a canonical key to the older field name it replaced
var legacyKeys = map[string]string{
	KeyStartTime:       "start_datetime",
	KeySeriesData:      "series",
	KeySeriesNames:     "series_name",
	KeyBackend:         "model",
	KeyDemoMode:        "use_m5",
	KeyDemoSeriesCount: "m5_series_count",
}

var startTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// seriesPayload is the resolved shape of the series field. It is inspected once during
// normalization and never again downstream.
type seriesPayload interface {
	validate(names []string) ([]string, error)
	values() [][]float64
}

type singleSeries []float64

func (s singleSeries) validate(names []string) ([]string, error) {
	if len(names) == 0 {
		names = []string{DefaultSeriesName}
	}
	if len(names) != 1 {
		return nil, newValidationError(KeySeriesNames, ErrCountMismatch,
			"single series payload requires exactly 1 name, got %d", len(names))
	}
	if len(s) < MinSeriesLength {
		return nil, newValidationError(KeySeriesData, ErrSeriesTooShort,
			"series %q has %d points, need at least %d", names[0], len(s), MinSeriesLength)
	}
	return names, nil
}

func (s singleSeries) values() [][]float64 {
	return [][]float64{s}
}

type multiSeries [][]float64

func (m multiSeries) validate(names []string) ([]string, error) {
	if len(names) != len(m) {
		return nil, newValidationError(KeySeriesNames, ErrCountMismatch,
			"got %d names for %d series", len(names), len(m))
	}
	for i, s := range m {
		if len(s) < MinSeriesLength {
			return nil, newValidationError(KeySeriesData, ErrSeriesTooShort,
				"series %q has %d points, need at least %d", names[i], len(s), MinSeriesLength)
		}
	}
	return names, nil
}

func (m multiSeries) values() [][]float64 {
	return m
}

// Normalize reconciles a raw request mapping into a canonical Request. Legacy single series
// fields are adopted when the canonical multi series fields are empty, demo mode replaces any
// user supplied series with the reserved demo name, and every invariant violation is reported
// as a *ValidationError. Unknown keys are ignored. Normalizing the output of Request.ToMap is a
// no-op.
func Normalize(raw map[string]any) (*Request, error) {
	r := &Request{
		Horizon:             DefaultHorizon,
		BacktestWindowCount: DefaultBacktestWindows,
		Backend:             BackendAuto,
		DemoSeriesCount:     DefaultDemoSeriesCount,
	}

	var err error
	if v, ok := lookup(raw, KeyDemoMode); ok {
		if r.DemoMode, err = parseBool(KeyDemoMode, v); err != nil {
			return nil, err
		}
	}

	if err := r.normalizeScalars(raw); err != nil {
		return nil, err
	}

	if r.DemoMode {
		// series content comes from the demo dataset when history is built
		r.SeriesNames = []string{ReservedDemoName}
		r.SeriesValues = nil
		return r, nil
	}

	var names []string
	if v, ok := lookup(raw, KeySeriesNames); ok {
		if names, err = parseNames(v); err != nil {
			return nil, err
		}
	}

	for _, name := range names {
		if name == ReservedDemoName {
			return nil, newValidationError(KeySeriesNames, ErrReservedName,
				"%q can only be used with %s enabled", ReservedDemoName, KeyDemoMode)
		}
	}

	v, ok := lookup(raw, KeySeriesData)
	if !ok {
		return nil, newValidationError(KeySeriesData, ErrMissingSeries, "at least one series is required")
	}
	payload, err := parsePayload(v)
	if err != nil {
		return nil, err
	}
	if names, err = payload.validate(names); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name == "" {
			return nil, newValidationError(KeySeriesNames, ErrEmptyName, "")
		}
		if _, exists := seen[name]; exists {
			return nil, newValidationError(KeySeriesNames, ErrDuplicateName, "%q", name)
		}
		seen[name] = struct{}{}
	}

	r.SeriesNames = names
	r.SeriesValues = payload.values()
	return r, nil
}

func (r *Request) normalizeScalars(raw map[string]any) error {
	var err error

	if v, ok := lookup(raw, KeyGranularity); ok {
		s, err := parseString(KeyGranularity, v)
		if err != nil {
			return err
		}
		if r.Granularity, err = ParseGranularity(s); err != nil {
			return newValidationError(KeyGranularity, ErrInvalidGranularity, "%q is not one of 15m, 30m, 1h, 4h, 1d, 1w", s)
		}
	} else if r.DemoMode {
		r.Granularity = Granularity1d
	} else {
		return newValidationError(KeyGranularity, ErrMissingField, "")
	}

	if v, ok := lookup(raw, KeyStartTime); ok {
		if r.StartTime, err = parseStartTime(v); err != nil {
			return err
		}
	} else if !r.DemoMode {
		return newValidationError(KeyStartTime, ErrMissingField, "")
	}

	if v, ok := lookup(raw, KeyHorizon); ok {
		if r.Horizon, err = parseIntRange(KeyHorizon, v, MinHorizon, MaxHorizon); err != nil {
			return err
		}
	}

	if v, ok := lookup(raw, KeySeasonalPeriod); ok {
		if r.SeasonalPeriod, err = parseIntRange(KeySeasonalPeriod, v, MinSeasonalPeriod, MaxSeasonalPeriod); err != nil {
			return err
		}
	}

	if v, ok := lookup(raw, KeyBacktest); ok {
		if r.BacktestEnabled, err = parseBool(KeyBacktest, v); err != nil {
			return err
		}
	}

	if v, ok := lookup(raw, KeyBacktestWindows); ok {
		if r.BacktestWindowCount, err = parseIntRange(KeyBacktestWindows, v, MinBacktestWindows, MaxBacktestWindows); err != nil {
			return err
		}
	}

	if v, ok := lookup(raw, KeyBackend); ok {
		s, err := parseString(KeyBackend, v)
		if err != nil {
			return err
		}
		if r.Backend, err = ParseBackend(s); err != nil {
			return newValidationError(KeyBackend, ErrInvalidBackend, "%q is not one of auto, native, remote", s)
		}
	}

	if v, ok := lookup(raw, KeyDemoSeriesCount); ok {
		if r.DemoSeriesCount, err = parseIntRange(KeyDemoSeriesCount, v, MinDemoSeriesCount, MaxDemoSeriesCount); err != nil {
			return err
		}
	}
	return nil
}

// lookup returns the canonical value if set and non-empty, otherwise the legacy alias value
func lookup(raw map[string]any, key string) (any, bool) {
	if v, exists := raw[key]; exists && !isEmpty(v) {
		return v, true
	}
	legacy, hasLegacy := legacyKeys[key]
	if !hasLegacy {
		return nil, false
	}
	if v, exists := raw[legacy]; exists && !isEmpty(v) {
		return v, true
	}
	return nil, false
}

func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case []any:
		return len(val) == 0
	case []string:
		return len(val) == 0
	case []float64:
		return len(val) == 0
	case [][]float64:
		return len(val) == 0
	}
	return false
}

func parseString(field string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", newValidationError(field, ErrInvalidType, "expected string, got %T", v)
	}
	return strings.TrimSpace(s), nil
}

func parseBool(field string, v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, newValidationError(field, ErrInvalidType, "expected boolean, got %T", v)
	}
	return b, nil
}

func parseIntRange(field string, v any, lower, upper int) (int, error) {
	f, ok := toFloat(v)
	if !ok {
		return 0, newValidationError(field, ErrInvalidType, "expected integer, got %T", v)
	}
	if f != math.Trunc(f) {
		return 0, newValidationError(field, ErrInvalidType, "expected integer, got %v", f)
	}
	if f < float64(lower) || f > float64(upper) {
		return 0, newValidationError(field, ErrOutOfRange, "%v not in [%d, %d]", f, lower, upper)
	}
	return int(f), nil
}

func parseStartTime(v any) (time.Time, error) {
	switch val := v.(type) {
	case time.Time:
		return val, nil
	case string:
		s := strings.TrimSpace(val)
		for _, layout := range startTimeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, newValidationError(KeyStartTime, ErrInvalidStartTime, "%q is not an ISO 8601 datetime", s)
	}
	return time.Time{}, newValidationError(KeyStartTime, ErrInvalidType, "expected string, got %T", v)
}

func parseNames(v any) ([]string, error) {
	switch val := v.(type) {
	case string:
		return []string{val}, nil
	case []string:
		names := make([]string, len(val))
		copy(names, val)
		return names, nil
	case []any:
		names := make([]string, 0, len(val))
		for i, n := range val {
			s, ok := n.(string)
			if !ok {
				return nil, newValidationError(KeySeriesNames, ErrInvalidType, "name at index %d is %T, expected string", i, n)
			}
			names = append(names, s)
		}
		return names, nil
	}
	return nil, newValidationError(KeySeriesNames, ErrInvalidType, "expected string or list of strings, got %T", v)
}

// parsePayload resolves the series payload into a single or multi series variant, rejecting
// nulls and non-numeric entries at any depth
func parsePayload(v any) (seriesPayload, error) {
	switch val := v.(type) {
	case []float64:
		s, err := parseValues(-1, toAnySlice(val))
		if err != nil {
			return nil, err
		}
		return singleSeries(s), nil
	case [][]float64:
		m := make(multiSeries, 0, len(val))
		for i, inner := range val {
			s, err := parseValues(i, toAnySlice(inner))
			if err != nil {
				return nil, err
			}
			m = append(m, s)
		}
		return m, nil
	case []any:
		if len(val) == 0 {
			return nil, newValidationError(KeySeriesData, ErrMissingSeries, "at least one series is required")
		}
		if !isList(val[0]) {
			s, err := parseValues(-1, val)
			if err != nil {
				return nil, err
			}
			return singleSeries(s), nil
		}

		m := make(multiSeries, 0, len(val))
		for i, inner := range val {
			innerList, ok := asList(inner)
			if !ok {
				if inner == nil {
					return nil, newValidationError(KeySeriesData, ErrNullValue, "series %d is null", i)
				}
				return nil, newValidationError(KeySeriesData, ErrNonNumeric,
					"series %d is %T, expected a list of numbers", i, inner)
			}
			s, err := parseValues(i, innerList)
			if err != nil {
				return nil, err
			}
			m = append(m, s)
		}
		return m, nil
	}
	return nil, newValidationError(KeySeriesData, ErrInvalidType, "expected list of numbers or list of lists, got %T", v)
}

func parseValues(seriesIdx int, vals []any) ([]float64, error) {
	out := make([]float64, 0, len(vals))
	for i, v := range vals {
		if v == nil {
			return nil, newValidationError(KeySeriesData, ErrNullValue, "%s", position(seriesIdx, i))
		}
		f, ok := toFloat(v)
		if !ok {
			return nil, newValidationError(KeySeriesData, ErrNonNumeric, "%s is %T", position(seriesIdx, i), v)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, newValidationError(KeySeriesData, ErrNonNumeric, "%s is %v", position(seriesIdx, i), f)
		}
		out = append(out, f)
	}
	return out, nil
}

func position(seriesIdx, i int) string {
	if seriesIdx < 0 {
		return fmt.Sprintf("value at index %d", i)
	}
	return fmt.Sprintf("series %d value at index %d", seriesIdx, i)
}

func isList(v any) bool {
	_, ok := asList(v)
	return ok
}

func asList(v any) ([]any, bool) {
	switch val := v.(type) {
	case []any:
		return val, true
	case []float64:
		return toAnySlice(val), true
	}
	return nil, false
}

func toAnySlice(vals []float64) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return out
}

// toFloat converts any of the numeric types produced by the JSON and YAML decoders. Booleans
// and strings are not numbers.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
