package timedataset

import (
	"time"
)

// TimeSlice is a chronologically ordered set of time points
type TimeSlice []time.Time

// EstimateFreq returns the sampling step of the slice as the most frequent gap between neighbours.
// When two gaps are equally frequent the finer one wins.
func (t TimeSlice) EstimateFreq() (time.Duration, error) {
	if len(t) < 2 {
		return 0, ErrCannotInferFreq
	}

	counts := make(map[time.Duration]int, 1)
	var best time.Duration
	for i := 1; i < len(t); i++ {
		gap := t[i].Sub(t[i-1])
		counts[gap] += 1

		c, bc := counts[gap], counts[best]
		if i == 1 || c > bc || (c == bc && gap < best) {
			best = gap
		}
	}
	return best, nil
}

// Extend returns the n time points that follow the slice at the given step. An empty slice is
// extended from the zero time.
func (t TimeSlice) Extend(n int, step time.Duration) TimeSlice {
	if n <= 0 {
		return nil
	}
	var last time.Time
	if len(t) > 0 {
		last = t[len(t)-1]
	}

	future := make(TimeSlice, n)
	for i := range future {
		last = last.Add(step)
		future[i] = last
	}
	return future
}
