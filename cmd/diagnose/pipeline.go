package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/YuminosukeSato/diagnosis/chart"
	"github.com/YuminosukeSato/diagnosis/config"
	"github.com/YuminosukeSato/diagnosis/dataset"
	"github.com/YuminosukeSato/diagnosis/evaluation"
	"github.com/YuminosukeSato/diagnosis/imbalance"
	"github.com/YuminosukeSato/diagnosis/interpret"
	"github.com/YuminosukeSato/diagnosis/model_selection"
	"github.com/YuminosukeSato/diagnosis/pkg/errors"
	"github.com/YuminosukeSato/diagnosis/pkg/log"
	"github.com/YuminosukeSato/diagnosis/preprocessing"
	"github.com/YuminosukeSato/diagnosis/sklearn/linear_model"
)

// maxTableFeatures is the number of feature columns shown in the
// misclassified table besides the labels.
const maxTableFeatures = 3

// runPipeline executes every step and writes the text output to out.
func runPipeline(ctx context.Context, cfg *config.Config, out io.Writer) error {
	logger := log.GetLoggerWithName("diagnose")

	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return errors.Wrap(err, "create output directory")
	}

	ds, err := dataset.LoadData(cfg.Data.Path)
	if err != nil {
		return err
	}
	split, err := model_selection.SplitData(ds,
		model_selection.WithTestSize(cfg.Split.TestSize),
		model_selection.WithRandomState(cfg.Split.RandomState),
	)
	if err != nil {
		return err
	}

	XBalanced, yBalanced, err := imbalance.BalanceClasses(split.XTrain, split.YTrain,
		cfg.Preprocessing.Sampling, cfg.Split.RandomState,
		imbalance.WithKNeighbors(cfg.Preprocessing.KNeighbors),
	)
	if err != nil {
		return err
	}
	XTrain, XTestScaled, err := preprocessing.ScaleFeatures(XBalanced, split.XTest, cfg.Preprocessing.Scaling)
	if err != nil {
		return err
	}
	XTest, ok := XTestScaled.(*dataset.Dataset)
	if !ok {
		return errors.NewValueError("runPipeline", "scaled test set lost its column names")
	}

	clf := linear_model.NewLogisticRegression(
		linear_model.WithLRC(cfg.Model.C),
		linear_model.WithLRMaxIter(cfg.Model.MaxIter),
		linear_model.WithLRRandomState(cfg.Split.RandomState),
	)
	if err := clf.Fit(XTrain, yBalanced); err != nil {
		return err
	}

	if err := evaluation.PrintClassificationReport(ctx, out, clf, XTest, split.YTest); err != nil {
		return err
	}
	if err := evaluation.PrintProbabilityScores(ctx, out, clf, XTest, split.YTest); err != nil {
		return err
	}

	chartOpts := func(name string) []chart.Option {
		return []chart.Option{chart.WithSavePath(cfg.ChartPath(name)), chart.WithDPI(cfg.Output.DPI)}
	}
	if _, err := evaluation.PlotConfusionMatrix(ctx, clf, XTest, split.YTest, chartOpts("confusion_matrix")...); err != nil {
		return err
	}

	misclassified, err := evaluation.GetMisclassifiedSamples(ctx, clf, XTest, split.YTest)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, misclassifiedTable(misclassified))

	features := XTest.Columns()
	if _, err := interpret.PlotLogisticCoefficients(ctx, clf, features, cfg.Interpret.TopN, chartOpts("coefficients")...); err != nil {
		return err
	}

	// SHAP チャートは既定の 300 DPI で保存する
	expl, err := interpret.PlotSHAPSummary(ctx, clf, XTrain, XTest, features,
		chart.WithSavePath(cfg.ChartPath("shap_summary")))
	if err != nil {
		return err
	}
	if _, err := interpret.PlotSHAPWaterfall(ctx, expl, XTest, features, cfg.Interpret.WaterfallIndex,
		chart.WithSavePath(cfg.ChartPath("shap_waterfall"))); err != nil {
		return err
	}

	logger.Info("Pipeline finished", log.PathKey, cfg.Output.Dir)
	return nil
}

// misclassifiedTable renders the misclassified rows with their index,
// labels and the first few feature values.
func misclassifiedTable(ds *dataset.Dataset) string {
	columns := ds.Columns()
	nFeatures := min(len(columns)-2, maxTableFeatures)
	trueCol, _ := ds.ColumnIndex(evaluation.TrueLabelColumn)
	predCol, _ := ds.ColumnIndex(evaluation.PredictedLabelColumn)

	t := table.NewWriter()
	header := table.Row{"Index", "True", "Predicted"}
	for _, c := range columns[:nFeatures] {
		header = append(header, c)
	}
	t.AppendHeader(header)

	rows, _ := ds.Dims()
	index := ds.Index()
	for i := 0; i < rows; i++ {
		row := table.Row{index[i], int(ds.At(i, trueCol)), int(ds.At(i, predCol))}
		for j := 0; j < nFeatures; j++ {
			row = append(row, strconv.FormatFloat(ds.At(i, j), 'f', 3, 64))
		}
		t.AppendRow(row)
	}
	t.SetCaption("%d misclassified samples", rows)
	t.SetStyle(table.StyleLight)
	return t.Render()
}
