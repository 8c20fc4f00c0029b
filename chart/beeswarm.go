package chart

import (
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/YuminosukeSato/diagnosis/pkg/errors"
)

// 1行あたりの点の広がり（Y方向、片側）
const beeswarmSpread = 0.4

// Beeswarm is a SHAP summary description: one row per feature, one point
// per sample at x = attribution, colored by the sample's feature value
// (low blue, high red). Features[0] is drawn at the top.
type Beeswarm struct {
	Title    string
	XLabel   string
	Features []string
	// Values[f][i] is the attribution of feature f for sample i.
	Values [][]float64
	// FeatureValues[f][i] is the raw value of feature f for sample i; nil
	// draws every point in one color.
	FeatureValues [][]float64
}

var _ Chart = (*Beeswarm)(nil)

// ChartTitle implements Chart.
func (b *Beeswarm) ChartTitle() string { return b.Title }

// Plot implements Chart.
func (b *Beeswarm) Plot() (*plot.Plot, error) {
	if len(b.Features) == 0 {
		return nil, errors.NewValueError("Beeswarm.Plot", "no features to plot")
	}
	if len(b.Values) != len(b.Features) {
		return nil, errors.NewDimensionError("Beeswarm.Plot", len(b.Features), len(b.Values), 0)
	}
	if b.FeatureValues != nil && len(b.FeatureValues) != len(b.Features) {
		return nil, errors.NewDimensionError("Beeswarm.Plot", len(b.Features), len(b.FeatureValues), 0)
	}

	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(0)
	cmap.SetMax(1)

	p := newPlot(b.Title, b.XLabel, "")
	p.Add(plotter.NewGrid())

	n := len(b.Features)
	for f := range b.Features {
		values := b.Values[f]
		if len(values) == 0 {
			continue
		}
		if b.FeatureValues != nil && len(b.FeatureValues[f]) != len(values) {
			return nil, errors.NewDimensionError("Beeswarm.Plot", len(values), len(b.FeatureValues[f]), 1)
		}

		row := float64(n - 1 - f)
		offsets := swarmOffsets(values)
		xys := make(plotter.XYs, len(values))
		for i, v := range values {
			xys[i] = plotter.XY{X: v, Y: row + offsets[i]}
		}

		scatter, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, errors.Wrap(err, "Beeswarm.Plot")
		}
		colors := pointColors(cmap, b.featureValues(f), len(values))
		scatter.GlyphStyleFunc = func(i int) draw.GlyphStyle {
			return draw.GlyphStyle{Color: colors[i], Radius: vg.Points(2), Shape: draw.CircleGlyph{}}
		}
		p.Add(scatter)
	}

	p.NominalY(reversed(b.Features)...)
	return p, nil
}

func (b *Beeswarm) featureValues(f int) []float64 {
	if b.FeatureValues == nil {
		return nil
	}
	return b.FeatureValues[f]
}

// swarmOffsets spreads points that share an x bin vertically, alternating
// above and below the row, so dense regions appear wider.
func swarmOffsets(values []float64) []float64 {
	const bins = 100

	offsets := make([]float64, len(values))
	lo, hi := floats.Min(values), floats.Max(values)
	width := (hi - lo) / bins
	if width == 0 || math.IsNaN(width) {
		width = 1
	}

	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return values[order[a]] < values[order[b]] })

	count := make(map[int]int)
	maxCount := 1
	for _, i := range order {
		bin := int((values[i] - lo) / width)
		count[bin]++
		maxCount = max(maxCount, count[bin])
	}
	step := beeswarmSpread / float64(maxCount)

	seen := make(map[int]int)
	for _, i := range order {
		bin := int((values[i] - lo) / width)
		k := seen[bin]
		seen[bin]++
		// 0, +1, -1, +2, -2, ...
		level := float64((k + 1) / 2)
		if k%2 == 1 {
			level = -level
		}
		offsets[i] = level * step * 2
	}
	return offsets
}

// pointColors maps feature values to colors after min-max normalisation.
// Without feature values all n points get the default color.
func pointColors(cmap palette.ColorMap, values []float64, n int) []color.Color {
	colors := make([]color.Color, n)
	if values == nil {
		for i := range colors {
			colors[i] = barColor
		}
		return colors
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	for i, v := range values {
		if math.IsNaN(v) {
			colors[i] = missingColor
			continue
		}
		t := 0.5
		if hi > lo {
			t = (v - lo) / (hi - lo)
		}
		c, err := cmap.At(t)
		if err != nil {
			c = missingColor
		}
		colors[i] = c
	}
	return colors
}
