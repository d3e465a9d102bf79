// Package stats holds the robust statistics used to clean training data before fitting.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// DetectOutliers returns the indexes of values outside the inner percentile range widened by
// tukeyFactor times its width on both sides. Values on the fence count as outliers.
func DetectOutliers(y []float64, lowerPerc, upperPerc, tukeyFactor float64) []int {
	if len(y) == 0 {
		return nil
	}
	lowerPerc = math.Max(lowerPerc, 0.0)
	upperPerc = math.Min(upperPerc, 1.0)
	tukeyFactor = math.Max(tukeyFactor, 0.0)

	yCopy := make([]float64, len(y))
	copy(yCopy, y)
	sort.Float64s(yCopy)
	lowerIdx := int(math.Floor(float64(len(yCopy)) * lowerPerc))
	upperIdx := int(math.Ceil(float64(len(yCopy))*upperPerc)) - 1
	upperIdx = max(min(upperIdx, len(yCopy)-1), lowerIdx)

	lower := yCopy[lowerIdx]
	upper := yCopy[upperIdx]
	innerRange := upper - lower

	// nothing to measure against on a flat inner range
	if innerRange == 0 {
		return nil
	}
	lower -= innerRange * tukeyFactor
	upper += innerRange * tukeyFactor

	var outlierIdx []int
	for i := 0; i < len(y); i++ {
		if y[i] >= upper || y[i] <= lower {
			outlierIdx = append(outlierIdx, i)
		}
	}
	return outlierIdx
}

// Residuals returns actual minus predicted over the common prefix of both slices
func Residuals(actual, predicted []float64) []float64 {
	n := min(len(actual), len(predicted))
	res := make([]float64, n)
	floats.SubTo(res, actual[:n], predicted[:n])
	return res
}
