package native

import (
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/bryanwhiting/weatherman/backend"
	"github.com/bryanwhiting/weatherman/linearmodel"
	"github.com/bryanwhiting/weatherman/stats"
	"github.com/bryanwhiting/weatherman/timedataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var ErrNonFiniteFit = errors.New("regression produced non-finite coefficients")

// Fourier regresses the series on a linear trend and Fourier terms of the seasonal period,
// optionally with a holiday indicator, and extrapolates the fit.
type Fourier struct {
	MaxOrders      int
	Regularization float64
	Holidays       bool

	OutlierPasses      int
	OutlierLowerPerc   float64
	OutlierUpperPerc   float64
	OutlierTukeyFactor float64
}

func (f *Fourier) Name() string {
	return ModelFourier
}

func (f *Fourier) Forecast(train *timedataset.TimeDataset, future []time.Time, period int) ([]float64, error) {
	n := train.Len()
	if n == 0 {
		return nil, backend.ErrEmptyHistory
	}

	orders := 0
	if period >= 2 {
		orders = min(f.MaxOrders, period/2)
	}
	candidates := designColumns(train.T, future, max(period, 1), orders, f.Holidays)

	// keep at least one more point than features, intercept included
	var cols []column
	for _, c := range candidates {
		if len(cols)+2 >= n {
			slog.Debug("dropping fourier feature for short series", "feature", c.label, "points", n)
			continue
		}
		if isZero(c.data[:n]) {
			continue
		}
		cols = append(cols, c)
	}

	if len(cols) == 0 {
		mean := stat.Mean(train.Y, nil)
		yhat := make([]float64, len(future))
		floats.AddConst(mean, yhat)
		return yhat, nil
	}

	trainCols := make([][]float64, len(cols))
	futureCols := make([][]float64, len(cols))
	for i, c := range cols {
		trainCols[i] = c.data[:n]
		futureCols[i] = c.data[n:]
	}

	x, err := linearmodel.NewDenseFromColumns(trainCols)
	if err != nil {
		return nil, err
	}
	y := linearmodel.NewTarget(train.Y)

	model, err := f.fit(x, y)
	if err != nil {
		return nil, err
	}

	for pass := 0; pass < f.OutlierPasses; pass++ {
		pred, err := model.Predict(x)
		if err != nil {
			return nil, err
		}
		outliers := stats.DetectOutliers(stats.Residuals(mat.Col(nil, 0, y), pred), f.OutlierLowerPerc, f.OutlierUpperPerc, f.OutlierTukeyFactor)
		m, nFeat := x.Dims()
		if len(outliers) == 0 || m-len(outliers) <= nFeat+1 {
			break
		}
		x, y = dropRows(x, y, outliers)
		if model, err = f.fit(x, y); err != nil {
			return nil, err
		}
	}

	if len(future) == 0 {
		return []float64{}, nil
	}
	xFuture, err := linearmodel.NewDenseFromColumns(futureCols)
	if err != nil {
		return nil, err
	}
	return model.Predict(xFuture)
}

// fit solves least squares and falls back to lasso coordinate descent when the design is singular
func (f *Fourier) fit(x, y *mat.Dense) (linearmodel.Model, error) {
	ols, err := linearmodel.NewOLSRegression(linearmodel.NewDefaultOLSOptions())
	if err != nil {
		return nil, err
	}
	err = ols.Fit(x, y)
	if err == nil && finite(ols.Intercept(), ols.Coef()) {
		return ols, nil
	}
	slog.Debug("falling back to lasso for fourier fit", "error", err)

	lassoOpt := linearmodel.NewDefaultLassoOptions()
	lassoOpt.Lambda = f.Regularization
	lasso, err := linearmodel.NewLassoRegression(lassoOpt)
	if err != nil {
		return nil, err
	}
	if err := lasso.Fit(x, y); err != nil {
		return nil, err
	}
	if !finite(lasso.Intercept(), lasso.Coef()) {
		return nil, ErrNonFiniteFit
	}
	return lasso, nil
}

func finite(intercept float64, coef []float64) bool {
	if math.IsNaN(intercept) || math.IsInf(intercept, 0) {
		return false
	}
	return !floats.HasNaN(coef) && !hasInf(coef)
}

func hasInf(s []float64) bool {
	for _, v := range s {
		if math.IsInf(v, 0) {
			return true
		}
	}
	return false
}

func dropRows(x, y *mat.Dense, drop []int) (*mat.Dense, *mat.Dense) {
	skip := make(map[int]struct{}, len(drop))
	for _, i := range drop {
		skip[i] = struct{}{}
	}

	m, n := x.Dims()
	xOut := mat.NewDense(m-len(skip), n, nil)
	yOut := mat.NewDense(m-len(skip), 1, nil)
	r := 0
	for i := 0; i < m; i++ {
		if _, exists := skip[i]; exists {
			continue
		}
		xOut.SetRow(r, x.RawRowView(i))
		yOut.Set(r, 0, y.At(i, 0))
		r++
	}
	return xOut, yOut
}
