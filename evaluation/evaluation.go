// Package evaluation evaluates a trained classifier on held-out data: the
// misclassified rows, the confusion matrix chart and the text classification
// report. The model is borrowed and only its Predict method is called.
package evaluation

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diagnosis/chart"
	"github.com/YuminosukeSato/diagnosis/core/model"
	"github.com/YuminosukeSato/diagnosis/dataset"
	"github.com/YuminosukeSato/diagnosis/metrics"
	"github.com/YuminosukeSato/diagnosis/pkg/errors"
	"github.com/YuminosukeSato/diagnosis/pkg/log"
)

const (
	// TrueLabelColumn holds the observed label in a misclassification report.
	TrueLabelColumn = "true_label"
	// PredictedLabelColumn holds the model's prediction in a misclassification report.
	PredictedLabelColumn = "predicted_label"

	// ConfusionMatrixTitle is the title of the confusion matrix chart.
	ConfusionMatrixTitle = "Confusion Matrix"
	// ReportHeader precedes the classification report text.
	ReportHeader = "Classification Report:"
)

// predict は Predict を一度だけ呼び、結果を yTest と同じ長さのベクトルに変換する
func predict(ctx context.Context, op string, m model.Predictor, XTest mat.Matrix, yTest *mat.VecDense) (*mat.VecDense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, _ := XTest.Dims()
	if yTest.Len() != r {
		return nil, errors.NewDimensionError(op, r, yTest.Len(), 0)
	}

	raw, err := m.Predict(XTest)
	if err != nil {
		return nil, errors.NewModelError(op, "prediction failed", err)
	}
	yPred, err := dataset.ToVector(op, raw)
	if err != nil {
		return nil, err
	}
	if yPred.Len() != r {
		return nil, errors.NewDimensionError(op, r, yPred.Len(), 0)
	}
	return yPred, nil
}

// GetMisclassifiedSamples は XTest に true_label と predicted_label 列を追加し、
// 両者が異なる行だけを返します。行インデックスは元のまま保持されます。
// 入力は変更されません。
func GetMisclassifiedSamples(ctx context.Context, m model.Predictor, XTest *dataset.Dataset, yTest *mat.VecDense) (*dataset.Dataset, error) {
	const op = "GetMisclassifiedSamples"

	yPred, err := predict(ctx, op, m, XTest, yTest)
	if err != nil {
		return nil, err
	}

	n := yTest.Len()
	trueLabels := make([]float64, n)
	predLabels := make([]float64, n)
	for i := 0; i < n; i++ {
		trueLabels[i] = yTest.AtVec(i)
		predLabels[i] = yPred.AtVec(i)
	}

	results, err := XTest.WithColumns([]string{TrueLabelColumn, PredictedLabelColumn}, trueLabels, predLabels)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	misclassified, err := results.Filter(func(i int) bool {
		return trueLabels[i] != predLabels[i]
	})
	if err != nil {
		return nil, err
	}

	count, _ := misclassified.Dims()
	log.GetLoggerWithName("evaluation").Info("Collected misclassified samples",
		log.PhaseKey, log.PhaseEvaluation,
		log.SamplesKey, n,
		log.MisclassifiedKey, count,
	)
	return misclassified, nil
}

// ConfusionMatrixChart は予測から混同行列（生のカウント）の図を作成します。
// ラベル集合は yTest と予測に現れたラベルの和集合です。
func ConfusionMatrixChart(ctx context.Context, m model.Predictor, XTest mat.Matrix, yTest *mat.VecDense) (*chart.Heatmap, error) {
	const op = "ConfusionMatrixChart"

	yPred, err := predict(ctx, op, m, XTest, yTest)
	if err != nil {
		return nil, err
	}
	cm, err := metrics.ConfusionMatrix(yTest, yPred)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	ticks := make([]string, len(cm.Labels))
	for i, l := range cm.Labels {
		ticks[i] = strconv.Itoa(l)
	}
	values := make([][]float64, len(cm.Labels))
	for i := range values {
		values[i] = mat.Row(nil, i, cm.Counts)
	}
	return &chart.Heatmap{
		Title:    ConfusionMatrixTitle,
		XLabel:   "Predicted label",
		YLabel:   "True label",
		XTicks:   ticks,
		YTicks:   ticks,
		Values:   values,
		Annotate: true,
	}, nil
}

// PlotConfusionMatrix は混同行列を描画し、chart.WithSavePath があれば保存してから表示します。
func PlotConfusionMatrix(ctx context.Context, m model.Predictor, XTest mat.Matrix, yTest *mat.VecDense, opts ...chart.Option) (*chart.Heatmap, error) {
	c, err := ConfusionMatrixChart(ctx, m, XTest, yTest)
	if err != nil {
		return nil, err
	}
	if err := chart.Show(ctx, c, opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// PrintClassificationReport は "Classification Report:" に続けて
// scikit-learn 形式のレポートを w に書き出します。
func PrintClassificationReport(ctx context.Context, w io.Writer, m model.Predictor, XTest mat.Matrix, yTest *mat.VecDense, opts ...metrics.ReportOption) error {
	const op = "PrintClassificationReport"

	yPred, err := predict(ctx, op, m, XTest, yTest)
	if err != nil {
		return err
	}
	report, err := metrics.ClassificationReport(yTest, yPred, opts...)
	if err != nil {
		return errors.Wrap(err, op)
	}

	log.GetLoggerWithName("evaluation").Info("Classification report",
		log.PhaseKey, log.PhaseEvaluation,
		log.AccuracyKey, report.Accuracy,
	)
	if _, err := fmt.Fprintf(w, "%s\n%s\n", ReportHeader, report); err != nil {
		return errors.Wrap(err, op)
	}
	return nil
}
