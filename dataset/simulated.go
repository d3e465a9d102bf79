package dataset

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/bryanwhiting/weatherman/history"
	"github.com/bryanwhiting/weatherman/timedataset"
)

const (
	DefaultSimulatedLength = 365
	simulatedStep          = 24 * time.Hour
	week                   = 7 * 24 * 60 * 60
)

// DefaultSimulatedStart matches the first day of the M5 evaluation period
var DefaultSimulatedStart = time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)

// Simulated generates daily unit sales like series with weekly seasonality. The same seed always
// produces the same rows.
type Simulated struct {
	Seed   uint64
	Length int
	Start  time.Time
}

// Load generates count series named m5_sim_001, m5_sim_002, ...
func (s *Simulated) Load(ctx context.Context, count int) (history.Table, error) {
	length := DefaultSimulatedLength
	start := DefaultSimulatedStart
	var seed uint64
	if s != nil {
		if s.Length > 0 {
			length = s.Length
		}
		if !s.Start.IsZero() {
			start = s.Start
		}
		seed = s.Seed
	}

	t := timedataset.GenerateT(length, simulatedStep, start)
	table := make(history.Table, 0, count*length)
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rng := rand.New(rand.NewPCG(seed, uint64(i)))
		level := 5.0 + 3.0*float64(i%7)
		y := timedataset.GenerateConstY(length, level).
			Add(timedataset.GenerateWaveY(t, 1.0+float64(i%3), week, 1.0, 0)).
			Add(timedataset.GenerateConstY(length, 0.3*level).MaskWithWeekend(t)).
			Add(timedataset.GenerateNoise(rng, t, 1.0, 0, week, 1.0, 0))

		// every third series gets a lasting demand shift two thirds of the way in
		if i%3 == 2 {
			y.Add(timedataset.GenerateChange(t, t[length*2/3], 0.5*level, 0))
		}
		y.Floor(0).Round()

		id := fmt.Sprintf("m5_sim_%03d", i+1)
		for j := range t {
			table = append(table, history.Row{SeriesID: id, Timestamp: t[j], Value: y[j]})
		}
	}
	return table, nil
}
