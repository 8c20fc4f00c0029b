package chart

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/diagnosis/pkg/errors"
)

// Waterfall is a single-instance attribution description. Bars start at
// BaseValue at the bottom and accumulate upwards, so Labels[0] (the top bar)
// ends at BaseValue + sum(Contributions).
type Waterfall struct {
	Title         string
	BaseValue     float64
	Labels        []string
	Contributions []float64
}

var _ Chart = (*Waterfall)(nil)

// ChartTitle implements Chart.
func (w *Waterfall) ChartTitle() string { return w.Title }

// Output returns BaseValue plus every contribution.
func (w *Waterfall) Output() float64 {
	out := w.BaseValue
	for _, c := range w.Contributions {
		out += c
	}
	return out
}

// Plot implements Chart.
func (w *Waterfall) Plot() (*plot.Plot, error) {
	if len(w.Contributions) == 0 {
		return nil, errors.NewValueError("Waterfall.Plot", "no contributions to plot")
	}
	if len(w.Labels) != len(w.Contributions) {
		return nil, errors.NewDimensionError("Waterfall.Plot", len(w.Contributions), len(w.Labels), 0)
	}

	// gonum の行0は下端なので、下から順に積み上げる
	labels := reversed(w.Labels)
	contribs := reversed(w.Contributions)
	n := len(contribs)

	starts := make(plotter.Values, n)
	pos := make(plotter.Values, n)
	neg := make(plotter.Values, n)
	acc := w.BaseValue
	for i, c := range contribs {
		starts[i] = acc
		if c >= 0 {
			pos[i] = c
		} else {
			neg[i] = c
		}
		acc += c
	}

	const barWidth = 12
	base, err := plotter.NewBarChart(starts, vg.Points(barWidth))
	if err != nil {
		return nil, errors.Wrap(err, "Waterfall.Plot")
	}
	base.Horizontal = true
	base.Color = color.Transparent
	base.LineStyle.Width = 0

	p := newPlot(w.Title, fmt.Sprintf("E[f(X)] = %.3f, f(x) = %.3f", w.BaseValue, acc), "")
	p.Add(plotter.NewGrid())
	for _, part := range []struct {
		values plotter.Values
		color  color.Color
	}{{pos, positiveColor}, {neg, negativeColor}} {
		bars, err := plotter.NewBarChart(part.values, vg.Points(barWidth))
		if err != nil {
			return nil, errors.Wrap(err, "Waterfall.Plot")
		}
		bars.Horizontal = true
		bars.Color = part.color
		bars.LineStyle.Width = 0
		bars.StackOn(base)
		p.Add(bars)
	}
	p.Add(base)

	for _, x := range []float64{w.BaseValue, acc} {
		line, err := plotter.NewLine(plotter.XYs{{X: x, Y: -0.5}, {X: x, Y: float64(n) - 0.5}})
		if err != nil {
			return nil, errors.Wrap(err, "Waterfall.Plot")
		}
		line.LineStyle.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
		line.LineStyle.Color = missingColor
		p.Add(line)
	}

	p.NominalY(labels...)
	return p, nil
}
