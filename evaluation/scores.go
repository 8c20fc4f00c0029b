package evaluation

import (
	"context"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diagnosis/core/model"
	"github.com/YuminosukeSato/diagnosis/metrics"
	"github.com/YuminosukeSato/diagnosis/pkg/errors"
	"github.com/YuminosukeSato/diagnosis/pkg/log"
)

// ProbabilityScores are the held-out scores of a binary probabilistic
// classifier that the text report does not show.
type ProbabilityScores struct {
	ErrorRate float64
	ROCAUC    float64
	LogLoss   float64
}

// ScoreProbabilities は Predict と PredictProba を一度ずつ呼び、誤分類率、
// 正クラス確率 (PredictProba の 2 列目) に対する ROC AUC と log loss を計算します。
// 2 クラス以外のモデルは ValueError になります。
func ScoreProbabilities(ctx context.Context, m model.ProbabilisticPredictor, XTest mat.Matrix, yTest *mat.VecDense) (*ProbabilityScores, error) {
	const op = "ScoreProbabilities"

	yPred, err := predict(ctx, op, m, XTest, yTest)
	if err != nil {
		return nil, err
	}
	proba, err := m.PredictProba(XTest)
	if err != nil {
		return nil, errors.NewModelError(op, "probability prediction failed", err)
	}
	r, c := proba.Dims()
	if r != yTest.Len() {
		return nil, errors.NewDimensionError(op, yTest.Len(), r, 0)
	}
	if c != 2 {
		return nil, errors.NewValueError(op, fmt.Sprintf("expected 2 probability columns, got %d", c))
	}
	positive := mat.NewVecDense(r, mat.Col(nil, 1, proba))

	var s ProbabilityScores
	if s.ErrorRate, err = metrics.ClassificationError(yTest, yPred); err != nil {
		return nil, errors.Wrap(err, op)
	}
	if s.ROCAUC, err = metrics.AUCMatrix(yTest, positive); err != nil {
		return nil, errors.Wrap(err, op)
	}
	if s.LogLoss, err = metrics.BinaryLogLoss(yTest, positive); err != nil {
		return nil, errors.Wrap(err, op)
	}

	log.GetLoggerWithName("evaluation").Info("Probability scores",
		log.PhaseKey, log.PhaseEvaluation,
		log.ROCAUCKey, s.ROCAUC,
		log.LogLossKey, s.LogLoss,
	)
	return &s, nil
}

// PrintProbabilityScores writes the scores as a two-column table.
func PrintProbabilityScores(ctx context.Context, w io.Writer, m model.ProbabilisticPredictor, XTest mat.Matrix, yTest *mat.VecDense) error {
	s, err := ScoreProbabilities(ctx, m, XTest, yTest)
	if err != nil {
		return err
	}
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRows([]table.Row{
		{"error rate", fmt.Sprintf("%.4f", s.ErrorRate)},
		{"ROC AUC", fmt.Sprintf("%.4f", s.ROCAUC)},
		{"log loss", fmt.Sprintf("%.4f", s.LogLoss)},
	})
	t.SetStyle(table.StyleLight)
	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return errors.Wrap(err, "PrintProbabilityScores")
	}
	return nil
}
