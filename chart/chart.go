// Package chart separates chart descriptions from rendering.
//
// A description (BarChart, Heatmap, Beeswarm, Waterfall) is a plain value
// holding the series, labels and title. It can be built and inspected
// without a display. Plot converts it into a gonum plot; Save renders that
// plot to a file and Show saves and hands the chart to a Displayer.
package chart

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
)

// Chart is a renderable chart description.
type Chart interface {
	// ChartTitle returns the chart's title.
	ChartTitle() string

	// Plot builds a gonum plot from the description.
	Plot() (*plot.Plot, error)
}

// Default canvas size and resolution for raster formats.
const (
	DefaultWidth  = 6.4 * vg.Inch
	DefaultHeight = 4.8 * vg.Inch
	DefaultDPI    = 100
)

var (
	// 正の寄与・負の寄与の色
	positiveColor = color.RGBA{R: 0xff, G: 0x00, B: 0x51, A: 0xff}
	negativeColor = color.RGBA{R: 0x00, G: 0x8b, B: 0xe5, A: 0xff}
	barColor      = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	missingColor  = color.Gray{Y: 0x99}
)

// newPlot creates a plot with a title and axis labels.
func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	return p
}

// reversed returns a reversed copy, used to put the first entry at the top
// of a nominal Y axis.
func reversed[T any](s []T) []T {
	out := make([]T, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}
	return out
}
