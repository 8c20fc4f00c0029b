// Package interpret explains trained classifiers: ranked linear coefficients
// and Shapley value attributions with their summary and waterfall charts.
package interpret

import (
	"context"
	"math"
	"slices"

	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/diagnosis/chart"
	"github.com/YuminosukeSato/diagnosis/core/model"
	"github.com/YuminosukeSato/diagnosis/pkg/errors"
)

const (
	// DefaultTopN is the number of coefficients shown by default.
	DefaultTopN = 10

	// CoefficientsTitle is the title of the coefficient chart.
	CoefficientsTitle = "Top Feature Coefficients in Logistic Regression"
)

// RankedCoefficient is one feature with its coefficient.
type RankedCoefficient struct {
	Feature     string
	Coefficient float64
}

// RankCoefficients orders the first coefficient row of m by absolute value,
// largest first, and keeps at most topN entries. Ties keep feature order.
func RankCoefficients(m model.LinearExplainable, featureNames []string, topN int) ([]RankedCoefficient, error) {
	const op = "RankCoefficients"

	if topN < 1 {
		return nil, errors.NewValidationError("top_n", "must be at least 1", topN)
	}
	coef := m.Coef()
	if len(coef) == 0 || len(coef[0]) == 0 {
		return nil, errors.NewModelError(op, "model exposes no coefficients", nil)
	}
	if len(featureNames) != len(coef[0]) {
		return nil, errors.NewDimensionError(op, len(coef[0]), len(featureNames), 1)
	}

	ranked := make([]RankedCoefficient, len(coef[0]))
	for j, c := range coef[0] {
		ranked[j] = RankedCoefficient{Feature: featureNames[j], Coefficient: c}
	}
	slices.SortStableFunc(ranked, func(a, b RankedCoefficient) int {
		// 絶対値の降順
		return cmpFloat(math.Abs(b.Coefficient), math.Abs(a.Coefficient))
	})
	return ranked[:min(topN, len(ranked))], nil
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// CoefficientsChart describes the horizontal bar chart of the top coefficients.
// The largest coefficient is the first (top) bar.
func CoefficientsChart(m model.LinearExplainable, featureNames []string, topN int) (*chart.BarChart, error) {
	ranked, err := RankCoefficients(m, featureNames, topN)
	if err != nil {
		return nil, err
	}
	c := &chart.BarChart{
		Title:      CoefficientsTitle,
		XLabel:     "Coefficient Value",
		Horizontal: true,
	}
	for _, r := range ranked {
		c.Labels = append(c.Labels, r.Feature)
		c.Values = append(c.Values, r.Coefficient)
	}
	return c, nil
}

// PlotLogisticCoefficients は係数チャートを 10×6 インチで描画し、保存・表示します。
// opts の chart.WithSize で大きさを変更できます。
func PlotLogisticCoefficients(ctx context.Context, m model.LinearExplainable, featureNames []string, topN int, opts ...chart.Option) (*chart.BarChart, error) {
	c, err := CoefficientsChart(m, featureNames, topN)
	if err != nil {
		return nil, err
	}
	opts = append([]chart.Option{chart.WithSize(10*vg.Inch, 6*vg.Inch)}, opts...)
	if err := chart.Show(ctx, c, opts...); err != nil {
		return nil, err
	}
	return c, nil
}
