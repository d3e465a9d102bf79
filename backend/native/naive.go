package native

import (
	"time"

	"github.com/bryanwhiting/weatherman/backend"
	"github.com/bryanwhiting/weatherman/timedataset"
)

// SeasonalNaive repeats the last observed season
type SeasonalNaive struct{}

func (SeasonalNaive) Name() string {
	return ModelSeasonalNaive
}

func (SeasonalNaive) Forecast(train *timedataset.TimeDataset, future []time.Time, period int) ([]float64, error) {
	n := train.Len()
	if n == 0 {
		return nil, backend.ErrEmptyHistory
	}
	p := min(max(period, 1), n)

	yhat := make([]float64, len(future))
	for h := range future {
		yhat[h] = train.Y[n-p+h%p]
	}
	return yhat, nil
}
