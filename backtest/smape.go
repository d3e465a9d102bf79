package backtest

import (
	"math"

	"github.com/shopspring/decimal"
)

// ScorePrecision is the number of decimal places scores are rounded to
const ScorePrecision = 4

// SMAPE returns the symmetric mean absolute percentage error in [0, 200] over the points whose
// denominator |actual|+|predicted| is nonzero. It is 0.0 when every denominator is zero.
func SMAPE(actual, predicted []float64) float64 {
	n := min(len(actual), len(predicted))

	var sum float64
	var cnt int
	for i := 0; i < n; i++ {
		denom := math.Abs(actual[i]) + math.Abs(predicted[i])
		if denom == 0 {
			continue
		}
		sum += math.Abs(actual[i]-predicted[i]) / denom
		cnt++
	}
	if cnt == 0 {
		return 0.0
	}
	return Round(200.0*sum/float64(cnt), ScorePrecision)
}

// Round rounds half away from zero to the given number of decimal places
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
