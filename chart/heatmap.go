package chart

import (
	"image/color"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg/draw"

	"github.com/YuminosukeSato/diagnosis/pkg/errors"
)

// Heatmap is a grid of values with row labels on the Y axis and column
// labels on the X axis. Values[0] is the top row.
type Heatmap struct {
	Title  string
	XLabel string
	YLabel string
	XTicks []string
	YTicks []string
	Values [][]float64

	// Annotate writes each cell's value in the cell.
	Annotate bool
}

var _ Chart = (*Heatmap)(nil)

// ChartTitle implements Chart.
func (h *Heatmap) ChartTitle() string { return h.Title }

// Dims returns the number of rows and columns.
func (h *Heatmap) Dims() (rows, cols int) {
	if len(h.Values) == 0 {
		return 0, 0
	}
	return len(h.Values), len(h.Values[0])
}

// heatGrid adapts a Heatmap to plotter.GridXYZ. gonum draws row 0 at the
// bottom, so rows are flipped.
type heatGrid struct{ h *Heatmap }

func (g heatGrid) Dims() (c, r int) {
	r, c = g.h.Dims()
	return c, r
}

func (g heatGrid) Z(c, r int) float64 {
	rows, _ := g.h.Dims()
	return g.h.Values[rows-1-r][c]
}

func (g heatGrid) X(c int) float64 { return float64(c) }
func (g heatGrid) Y(r int) float64 { return float64(r) }

// Plot implements Chart.
func (h *Heatmap) Plot() (*plot.Plot, error) {
	rows, cols := h.Dims()
	if rows == 0 || cols == 0 {
		return nil, errors.NewValueError("Heatmap.Plot", "no values to plot")
	}
	for _, row := range h.Values {
		if len(row) != cols {
			return nil, errors.NewDimensionError("Heatmap.Plot", cols, len(row), 1)
		}
	}
	if len(h.XTicks) != cols {
		return nil, errors.NewDimensionError("Heatmap.Plot", cols, len(h.XTicks), 1)
	}
	if len(h.YTicks) != rows {
		return nil, errors.NewDimensionError("Heatmap.Plot", rows, len(h.YTicks), 0)
	}

	cmap, err := blues()
	if err != nil {
		return nil, err
	}
	p := newPlot(h.Title, h.XLabel, h.YLabel)
	heat := plotter.NewHeatMap(heatGrid{h}, cmap.Palette(256))
	heat.NaN = missingColor
	p.Add(heat)

	if h.Annotate {
		labels, err := h.annotations(heat.Min, heat.Max)
		if err != nil {
			return nil, err
		}
		p.Add(labels)
	}

	p.NominalX(h.XTicks...)
	p.NominalY(reversed(h.YTicks)...)
	return p, nil
}

// annotations writes each value at its cell center, white on dark cells.
func (h *Heatmap) annotations(lo, hi float64) (*plotter.Labels, error) {
	rows, cols := h.Dims()
	xyl := plotter.XYLabels{
		XYs:    make(plotter.XYs, 0, rows*cols),
		Labels: make([]string, 0, rows*cols),
	}
	dark := make([]bool, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := h.Values[r][c]
			xyl.XYs = append(xyl.XYs, plotter.XY{X: float64(c), Y: float64(rows - 1 - r)})
			xyl.Labels = append(xyl.Labels, strconv.FormatFloat(v, 'f', -1, 64))
			dark = append(dark, hi > lo && (v-lo)/(hi-lo) > 0.5)
		}
	}

	labels, err := plotter.NewLabels(xyl)
	if err != nil {
		return nil, errors.Wrap(err, "Heatmap.Plot")
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = draw.XCenter
		labels.TextStyle[i].YAlign = draw.YCenter
		if dark[i] {
			labels.TextStyle[i].Color = color.White
		}
	}
	return labels, nil
}

// blues is a white to dark blue sequential color map.
func blues() (palette.ColorMap, error) {
	cmap, err := moreland.NewLuminance([]color.Color{
		color.RGBA{R: 0x08, G: 0x30, B: 0x6b, A: 0xff},
		color.RGBA{R: 0x42, G: 0x92, B: 0xc6, A: 0xff},
		color.RGBA{R: 0xf7, G: 0xfb, B: 0xff, A: 0xff},
	})
	if err != nil {
		return nil, errors.Wrap(err, "build color map")
	}
	cmap.SetMin(0)
	cmap.SetMax(1)
	return palette.Reverse(cmap), nil
}
