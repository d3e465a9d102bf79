package timedataset

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateT(t *testing.T) {
	numPnts := 7
	res := GenerateT(numPnts, 24*time.Hour, time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Len(t, res, numPnts)

	assert.Equal(t, res[0], time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, res[numPnts-1], time.Date(1970, 1, 7, 0, 0, 0, 0, time.UTC))
}

func TestSeries(t *testing.T) {
	numPnts := 7
	s := Series(GenerateConstY(numPnts, 1))

	res := s.Add(GenerateConstY(numPnts, 2))
	require.Equal(t, Series([]float64{3, 3, 3, 3, 3, 3, 3}), res)

	// 1970-01-01 is a Thursday
	tSeries := GenerateT(numPnts, 24*time.Hour, time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC))
	s.MaskWithWeekend(tSeries)
	assert.Equal(t, Series([]float64{0, 0, 3, 3, 0, 0, 0}), s)

	s = Series([]float64{-1.2, 0.4, 2.6, 3.5})
	s.Floor(0).Round()
	assert.Equal(t, Series([]float64{0, 0, 3, 4}), s)
}

func TestGenerateChange(t *testing.T) {
	tSeries := GenerateT(4, time.Hour, time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC))
	res := GenerateChange(tSeries, time.Date(1970, 1, 1, 2, 0, 0, 0, time.UTC), 1, 2)
	assert.Equal(t, Series([]float64{0, 0, 1, 3}), res)
}

func TestGenerateNoise(t *testing.T) {
	tSeries := GenerateT(50, time.Hour, time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC))

	a := GenerateNoise(rand.New(rand.NewPCG(7, 7)), tSeries, 3, 0, 86400, 1, 0)
	b := GenerateNoise(rand.New(rand.NewPCG(7, 7)), tSeries, 3, 0, 86400, 1, 0)
	assert.Equal(t, a, b)

	c := GenerateNoise(rand.New(rand.NewPCG(8, 8)), tSeries, 3, 0, 86400, 1, 0)
	assert.NotEqual(t, a, c)
}
