package native

import (
	"time"

	"github.com/bryanwhiting/weatherman/backend"
	"github.com/bryanwhiting/weatherman/timedataset"
	"gonum.org/v1/gonum/stat"
)

// HoltWinters is additive triple exponential smoothing. With fewer than two full seasons it
// degrades to Holt's linear trend method.
type HoltWinters struct {
	Alpha float64
	Beta  float64
	Gamma float64
}

func (hw *HoltWinters) Name() string {
	return ModelHoltWinters
}

func (hw *HoltWinters) Forecast(train *timedataset.TimeDataset, future []time.Time, period int) ([]float64, error) {
	n := train.Len()
	if n == 0 {
		return nil, backend.ErrEmptyHistory
	}
	y := train.Y
	if period < 2 || n < 2*period {
		return hw.linear(y, len(future)), nil
	}

	// level from the first season, trend from the change between the first two seasons
	level := stat.Mean(y[:period], nil)
	trend := (stat.Mean(y[period:2*period], nil) - level) / float64(period)

	seasonal := make([]float64, n)
	for i := 0; i < period; i++ {
		seasonal[i] = y[i] - level
	}

	for i := period; i < n; i++ {
		prevSeasonal := seasonal[i-period]
		prevLevel := level
		level = hw.Alpha*(y[i]-prevSeasonal) + (1-hw.Alpha)*(prevLevel+trend)
		trend = hw.Beta*(level-prevLevel) + (1-hw.Beta)*trend
		seasonal[i] = hw.Gamma*(y[i]-level) + (1-hw.Gamma)*prevSeasonal
	}

	yhat := make([]float64, len(future))
	for h := range future {
		yhat[h] = level + float64(h+1)*trend + seasonal[n-period+h%period]
	}
	return yhat, nil
}

func (hw *HoltWinters) linear(y []float64, horizon int) []float64 {
	level := y[0]
	var trend float64
	if len(y) > 1 {
		trend = y[1] - y[0]
	}
	for i := 1; i < len(y); i++ {
		prevLevel := level
		level = hw.Alpha*y[i] + (1-hw.Alpha)*(prevLevel+trend)
		trend = hw.Beta*(level-prevLevel) + (1-hw.Beta)*trend
	}

	yhat := make([]float64, horizon)
	for h := range yhat {
		yhat[h] = level + float64(h+1)*trend
	}
	return yhat
}
