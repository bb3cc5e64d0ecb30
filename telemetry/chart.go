package telemetry

import (
	"errors"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/pthm-cable/petri/culture"
)

// ErrSeriesTooShort is returned when a series has fewer than two samples,
// which is not enough to draw a line.
var ErrSeriesTooShort = errors.New("series needs at least two samples to chart")

// RenderGrowthChart renders total and viable counts over time as a PNG
// growth curve.
func RenderGrowthChart(series culture.Series, w io.Writer) error {
	if len(series) < 2 {
		return ErrSeriesTooShort
	}

	times := make([]float64, len(series))
	totals := make([]float64, len(series))
	viables := make([]float64, len(series))
	for i, s := range series {
		times[i] = s.Time
		totals[i] = float64(s.Total)
		viables[i] = float64(s.Viable)
	}

	graph := chart.Chart{
		Width:  800,
		Height: 400,
		XAxis: chart.XAxis{
			Name:  "Time (h)",
			Style: chart.Style{FontSize: 10},
		},
		YAxis: chart.YAxis{
			Name:  "Cells",
			Style: chart.Style{FontSize: 10},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Total",
				XValues: times,
				YValues: totals,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 2.0,
				},
			},
			chart.ContinuousSeries{
				Name:    "Viable",
				XValues: times,
				YValues: viables,
				Style: chart.Style{
					StrokeColor: drawing.Color{R: 46, G: 139, B: 87, A: 255},
					StrokeWidth: 2.0,
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return graph.Render(chart.PNG, w)
}
