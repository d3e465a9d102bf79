package backtest

import (
	"time"

	"github.com/bryanwhiting/weatherman/history"
)

// Span is the first and last timestamp of a holdout
type Span struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Window is one rolling-origin split. Offset trailing points of every series are withheld from
// training and the first Horizon of them form the holdout.
type Window struct {
	Index   int             `json:"window"`
	Offset  int             `json:"offset"`
	Holdout map[string]Span `json:"holdout"`
}

// PlanWindows returns how many windows a history whose shortest series has minLen points supports
// for the horizon, capped by the requested count. Every planned window has a full holdout in every
// series and leaves at least one horizon of training data.
func PlanWindows(minLen, horizon, requested int) int {
	if minLen < 1 || horizon <= 0 {
		return 0
	}
	maxPossible := max(0, minLen/horizon-1)
	if maxPossible == 0 {
		return 0
	}
	return min(max(requested, 1), maxPossible)
}

// Offsets returns the trailing point count withheld by each window, oldest window first
func Offsets(achievable, horizon int) []int {
	offsets := make([]int, 0, achievable)
	for w := 0; w < achievable; w++ {
		offsets = append(offsets, horizon*(achievable-w))
	}
	return offsets
}

// split is the training table and per series holdout of one window
type split struct {
	window  Window
	train   history.Table
	holdout []history.Series
}

// splitWindow takes the chronological prefix of every series as training data and the following
// horizon points as holdout. series must each hold at least offset points.
func splitWindow(series []history.Series, index, offset, horizon int) split {
	s := split{
		window: Window{
			Index:   index,
			Offset:  offset,
			Holdout: make(map[string]Span, len(series)),
		},
		holdout: make([]history.Series, 0, len(series)),
	}

	for _, ser := range series {
		n := len(ser.T)
		cut := n - offset
		end := min(cut+horizon, n)

		for i := 0; i < cut; i++ {
			s.train = append(s.train, history.Row{SeriesID: ser.ID, Timestamp: ser.T[i], Value: ser.Y[i]})
		}

		var hold history.Series
		hold.ID = ser.ID
		hold.T = ser.T[cut:end]
		hold.Y = ser.Y[cut:end]
		s.holdout = append(s.holdout, hold)
		if end > cut {
			s.window.Holdout[ser.ID] = Span{Start: hold.T[0], End: hold.T[len(hold.T)-1]}
		}
	}
	return s
}
