package native

import (
	"fmt"
	"math"
	"time"

	"github.com/bryanwhiting/weatherman/event"
)

type fourierComp string

const (
	fourierCompSin fourierComp = "sin"
	fourierCompCos fourierComp = "cos"
)

// column is a named design matrix feature covering the training points followed by the future
// points
type column struct {
	label string
	data  []float64
}

func seasonalityLabel(order int, comp fourierComp) string {
	return fmt.Sprintf("seas_%02d_%s", order, comp)
}

// generateFourierComponent evaluates order k of a period over positional time indexes
func generateFourierComponent(index []float64, order int, period float64) ([]float64, []float64) {
	omega := 2.0 * math.Pi * float64(order) / period
	sinFeat := make([]float64, len(index))
	cosFeat := make([]float64, len(index))
	for i, tFeat := range index {
		rad := omega * tFeat
		sinFeat[i] = math.Sin(rad)
		cosFeat[i] = math.Cos(rad)
	}
	return sinFeat, cosFeat
}

// designColumns builds candidate features in priority order: trend, Fourier pairs by ascending
// order, then the holiday indicator. nTrain points are followed by len(future) points.
func designColumns(t []time.Time, future []time.Time, period, orders int, holidays bool) []column {
	nTrain := len(t)
	total := nTrain + len(future)

	index := make([]float64, total)
	trend := make([]float64, total)
	for i := range index {
		index[i] = float64(i)
		trend[i] = float64(i) / float64(nTrain)
	}

	cols := []column{{label: "trend", data: trend}}
	for k := 1; k <= orders; k++ {
		sinFeat, cosFeat := generateFourierComponent(index, k, float64(period))
		cols = append(cols, column{label: seasonalityLabel(k, fourierCompCos), data: cosFeat})

		// sin of the Nyquist order is zero at every integer index
		if 2*k != period {
			cols = append(cols, column{label: seasonalityLabel(k, fourierCompSin), data: sinFeat})
		}
	}

	if holidays && nTrain > 0 {
		all := make([]time.Time, 0, total)
		all = append(all, t...)
		all = append(all, future...)
		cols = append(cols, column{label: "holiday", data: event.NewUSCalendar().Indicator(all)})
	}
	return cols
}

// isZero reports whether the training span of a column carries no signal
func isZero(data []float64) bool {
	for _, v := range data {
		if v != 0 {
			return false
		}
	}
	return true
}
