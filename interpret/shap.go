package interpret

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diagnosis/chart"
	"github.com/YuminosukeSato/diagnosis/core/model"
	"github.com/YuminosukeSato/diagnosis/pkg/errors"
	"github.com/YuminosukeSato/diagnosis/pkg/log"
)

const (
	// SHAPDPI is the resolution SHAP charts are saved at.
	SHAPDPI = 300

	// SummaryMaxDisplay is the number of features in the summary chart.
	SummaryMaxDisplay = 20
	// WaterfallMaxDisplay is the number of bars in the waterfall chart,
	// including the bar that collapses the remaining features.
	WaterfallMaxDisplay = 10

	SummaryTitle   = "SHAP Summary"
	WaterfallTitle = "SHAP Waterfall"
)

// SummaryChart describes a beeswarm of expl, features ordered by mean
// absolute attribution with at most maxDisplay features. featureNames
// overrides expl.FeatureNames when non-nil.
func SummaryChart(expl *Explanation, featureNames []string, maxDisplay int) (*chart.Beeswarm, error) {
	const op = "SummaryChart"

	rows, features := expl.Dims()
	if rows == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, op)
	}
	names, err := resolveNames(op, expl, featureNames)
	if err != nil {
		return nil, err
	}
	if maxDisplay < 1 {
		return nil, errors.NewValidationError("max_display", "must be at least 1", maxDisplay)
	}

	meanAbs := expl.MeanAbs()
	order := make([]int, features)
	for j := range order {
		order[j] = j
	}
	slices.SortStableFunc(order, func(a, b int) int { return cmpFloat(meanAbs[b], meanAbs[a]) })
	order = order[:min(maxDisplay, features)]

	c := &chart.Beeswarm{
		Title:  SummaryTitle,
		XLabel: "SHAP value (impact on model output)",
	}
	for _, j := range order {
		c.Features = append(c.Features, names[j])
		c.Values = append(c.Values, mat.Col(nil, j, expl.Values))
		c.FeatureValues = append(c.FeatureValues, mat.Col(nil, j, expl.Data))
	}
	return c, nil
}

// PlotSHAPSummary はテストデータの SHAP 値を一度だけ計算し、サマリー（ビースウォーム）
// チャートを描画して Explanation を返します。保存時の既定解像度は 300 DPI です。
func PlotSHAPSummary(ctx context.Context, m model.Predictor, background, test mat.Matrix, featureNames []string, opts ...chart.Option) (*Explanation, error) {
	explainer, err := NewExplainer(m, background)
	if err != nil {
		return nil, err
	}
	expl, err := explainer.Explain(ctx, test)
	if err != nil {
		return nil, err
	}
	if featureNames != nil {
		if _, err := resolveNames("PlotSHAPSummary", expl, featureNames); err != nil {
			return nil, err
		}
		expl.FeatureNames = slices.Clone(featureNames)
	}

	c, err := SummaryChart(expl, nil, SummaryMaxDisplay)
	if err != nil {
		return nil, err
	}
	opts = append([]chart.Option{chart.WithDPI(SHAPDPI)}, opts...)
	if err := chart.Show(ctx, c, opts...); err != nil {
		return nil, err
	}

	rows, _ := expl.Dims()
	log.GetLoggerWithName("interpret").Info("SHAP summary plotted",
		log.PhaseKey, log.PhaseInterpretation,
		log.SamplesKey, rows,
	)
	return expl, nil
}

// WaterfallChart describes the attribution of row index. The largest
// |attribution| is the top bar; beyond maxDisplay-1 features the rest are
// collapsed into one "N other features" bar. test supplies the displayed
// feature values and may be nil to use expl.Data.
func WaterfallChart(expl *Explanation, test mat.Matrix, featureNames []string, index, maxDisplay int) (*chart.Waterfall, error) {
	const op = "WaterfallChart"

	rows, features := expl.Dims()
	if index < 0 || index >= rows {
		return nil, errors.NewValueErrorf(op, "instance index %d out of range for %d explained rows", index, rows)
	}
	if maxDisplay < 1 {
		return nil, errors.NewValidationError("max_display", "must be at least 1", maxDisplay)
	}
	names, err := resolveNames(op, expl, featureNames)
	if err != nil {
		return nil, err
	}
	inst, err := expl.Row(index)
	if err != nil {
		return nil, err
	}
	data := inst.Data
	if test != nil {
		tr, tc := test.Dims()
		if index >= tr {
			return nil, errors.NewValueErrorf(op, "instance index %d out of range for %d test rows", index, tr)
		}
		if tc != features {
			return nil, errors.NewDimensionError(op, features, tc, 1)
		}
		data = mat.Row(nil, index, test)
	}

	order := make([]int, features)
	for j := range order {
		order[j] = j
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmpFloat(math.Abs(inst.Values[b]), math.Abs(inst.Values[a]))
	})

	shown := order
	var rest []int
	if features > maxDisplay {
		shown, rest = order[:maxDisplay-1], order[maxDisplay-1:]
	}

	w := &chart.Waterfall{
		Title:     WaterfallTitle,
		BaseValue: inst.BaseValue,
	}
	for _, j := range shown {
		w.Labels = append(w.Labels, fmt.Sprintf("%s = %s", names[j], strconv.FormatFloat(data[j], 'g', 4, 64)))
		w.Contributions = append(w.Contributions, inst.Values[j])
	}
	if len(rest) > 0 {
		sum := 0.0
		for _, j := range rest {
			sum += inst.Values[j]
		}
		w.Labels = append(w.Labels, fmt.Sprintf("%d other features", len(rest)))
		w.Contributions = append(w.Contributions, sum)
	}
	return w, nil
}

// PlotSHAPWaterfall は index 行目のウォーターフォールチャートを描画します。
// index が範囲外の場合は *errors.ValueError を返します。
func PlotSHAPWaterfall(ctx context.Context, expl *Explanation, test mat.Matrix, featureNames []string, index int, opts ...chart.Option) (*chart.Waterfall, error) {
	if expl == nil {
		return nil, errors.NewValueError("PlotSHAPWaterfall", "explanation is nil")
	}
	w, err := WaterfallChart(expl, test, featureNames, index, WaterfallMaxDisplay)
	if err != nil {
		return nil, err
	}
	opts = append([]chart.Option{chart.WithDPI(SHAPDPI)}, opts...)
	if err := chart.Show(ctx, w, opts...); err != nil {
		return nil, err
	}
	return w, nil
}

// resolveNames returns featureNames, or expl.FeatureNames when nil.
func resolveNames(op string, expl *Explanation, featureNames []string) ([]string, error) {
	_, features := expl.Dims()
	names := featureNames
	if names == nil {
		names = expl.FeatureNames
	}
	if len(names) != features {
		return nil, errors.NewDimensionError(op, features, len(names), 1)
	}
	return names, nil
}
