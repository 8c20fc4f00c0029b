package chart

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/diagnosis/pkg/errors"
)

// BarChart is a bar chart description. With Horizontal set, Labels[0] is
// drawn at the top.
type BarChart struct {
	Title      string
	XLabel     string
	YLabel     string
	Labels     []string
	Values     []float64
	Horizontal bool
	// Color of the bars; nil means the default blue.
	Color color.Color
}

var _ Chart = (*BarChart)(nil)

// ChartTitle implements Chart.
func (b *BarChart) ChartTitle() string { return b.Title }

// Plot implements Chart.
func (b *BarChart) Plot() (*plot.Plot, error) {
	if len(b.Values) == 0 {
		return nil, errors.NewValueError("BarChart.Plot", "no values to plot")
	}
	if len(b.Labels) != len(b.Values) {
		return nil, errors.NewDimensionError("BarChart.Plot", len(b.Values), len(b.Labels), 0)
	}

	p := newPlot(b.Title, b.XLabel, b.YLabel)
	labels, values := b.Labels, b.Values
	if b.Horizontal {
		labels, values = reversed(labels), reversed(values)
	}

	bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(14))
	if err != nil {
		return nil, errors.Wrap(err, "BarChart.Plot")
	}
	bars.Horizontal = b.Horizontal
	bars.Color = barColor
	if b.Color != nil {
		bars.Color = b.Color
	}
	bars.LineStyle.Width = 0

	p.Add(bars)
	if b.Horizontal {
		p.Add(plotter.NewGrid())
		p.NominalY(labels...)
	} else {
		p.NominalX(labels...)
	}
	return p, nil
}
