package weatherman

import (
	"math"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// chartTimeLayout formats the category x axis of every chart
const chartTimeLayout = "2006-01-02 15:04"

// missing marks a gap that echarts leaves undrawn
const missing = "-"

// LineTSeries generates an echart multi-line chart for some arbitrary time/value combination. Every
// slice in y must have the same length as t. NaN values are drawn as gaps.
func LineTSeries(title string, seriesName []string, t []time.Time, y [][]float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)

	x := make([]string, 0, len(t))
	for _, ts := range t {
		x = append(x, ts.Format(chartTimeLayout))
	}
	line = line.SetXAxis(x)

	for i, name := range seriesName {
		lineData := make([]opts.LineData, 0, len(y[i]))
		for _, v := range y[i] {
			if math.IsNaN(v) {
				lineData = append(lineData, opts.LineData{Value: missing})
				continue
			}
			lineData = append(lineData, opts.LineData{Value: v})
		}
		line = line.AddSeries(name, lineData)
	}
	return line
}

// LineForecast charts the observed history of one series followed by the final forecast of every
// model
func LineForecast(seriesID string, t []time.Time, y []float64, points []ForecastPoint) *charts.Line {
	var models []string
	future := make(map[string][]ForecastPoint)
	var futureT []time.Time
	seenT := make(map[int64]struct{})
	for _, p := range points {
		if p.SeriesID != seriesID {
			continue
		}
		if _, exists := future[p.Model]; !exists {
			models = append(models, p.Model)
		}
		future[p.Model] = append(future[p.Model], p)
		if _, exists := seenT[p.Timestamp.UnixNano()]; !exists {
			seenT[p.Timestamp.UnixNano()] = struct{}{}
			futureT = append(futureT, p.Timestamp)
		}
	}

	n := len(t) + len(futureT)
	allT := make([]time.Time, 0, n)
	allT = append(allT, t...)
	allT = append(allT, futureT...)

	index := make(map[int64]int, len(futureT))
	for i, ts := range futureT {
		index[ts.UnixNano()] = len(t) + i
	}

	names := append([]string{"Actual"}, models...)
	series := make([][]float64, len(names))
	series[0] = nanPad(n)
	copy(series[0], y)
	for m, model := range models {
		vals := nanPad(n)
		for _, p := range future[model] {
			vals[index[p.Timestamp.UnixNano()]] = p.Predicted
		}
		series[m+1] = vals
	}
	return LineTSeries("Forecast "+seriesID, names, allT, series)
}

// BarSMAPE charts the mean backtest SMAPE per model
func BarSMAPE(summary []ModelSummary) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title:    "Backtest SMAPE",
				Subtitle: "mean over windows and series, lower is better",
			},
		),
	)

	models := make([]string, 0, len(summary))
	barData := make([]opts.BarData, 0, len(summary))
	for _, s := range summary {
		models = append(models, s.Model)
		barData = append(barData, opts.BarData{Value: s.MeanSMAPE})
	}
	bar.SetXAxis(models).AddSeries("SMAPE", barData)
	return bar
}

func nanPad(n int) []float64 {
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = math.NaN()
	}
	return vals
}
