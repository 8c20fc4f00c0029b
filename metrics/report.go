package metrics

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diagnosis/pkg/errors"
)

// weightedAvgHeading is the longest row heading of the report.
const weightedAvgHeading = "weighted avg"

// ClassScores は1クラス分の評価指標
type ClassScores struct {
	Label     int
	Name      string
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// AverageScores は平均化された評価指標
type AverageScores struct {
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Report は classification_report の結果です。String で scikit-learn と同じテキストを生成します。
type Report struct {
	Classes     []ClassScores
	Accuracy    float64
	MacroAvg    AverageScores
	WeightedAvg AverageScores
	Digits      int
}

type reportConfig struct {
	digits      int
	targetNames []string
}

// ReportOption configures ClassificationReport.
type ReportOption func(*reportConfig)

// WithDigits sets the number of digits used to format floating point values
// (default 2).
func WithDigits(digits int) ReportOption {
	return func(c *reportConfig) {
		c.digits = digits
	}
}

// WithTargetNames sets display names for the labels, in ascending label order.
func WithTargetNames(names ...string) ReportOption {
	return func(c *reportConfig) {
		c.targetNames = names
	}
}

// PrecisionRecallFScoreSupport はラベルごとの適合率・再現率・F1・サポートを計算する。
//
// 予測が一つもないラベルの適合率、正解が一つもないラベルの再現率は 0.0 とし、
// UndefinedMetricWarning を発行する。
func PrecisionRecallFScoreSupport(yTrue, yPred *mat.VecDense) ([]ClassScores, error) {
	cm, err := ConfusionMatrix(yTrue, yPred)
	if err != nil {
		return nil, errors.Wrap(err, "PrecisionRecallFScoreSupport")
	}

	k := len(cm.Labels)
	scores := make([]ClassScores, k)
	var noPred, noTrue []string
	for c := 0; c < k; c++ {
		tp := cm.Counts.At(c, c)
		predicted := mat.Sum(cm.Counts.ColView(c))
		actual := mat.Sum(cm.Counts.RowView(c))

		s := ClassScores{
			Label:   cm.Labels[c],
			Name:    strconv.Itoa(cm.Labels[c]),
			Support: int(actual),
		}
		if predicted == 0 {
			noPred = append(noPred, s.Name)
		}
		if actual == 0 {
			noTrue = append(noTrue, s.Name)
		}
		s.Precision = errors.SafeDivide(tp, predicted)
		s.Recall = errors.SafeDivide(tp, actual)
		s.F1 = errors.SafeDivide(2*s.Precision*s.Recall, s.Precision+s.Recall)
		scores[c] = s
	}

	if len(noPred) > 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("Precision",
			"no predicted samples in labels ["+strings.Join(noPred, ", ")+"]", 0.0))
	}
	if len(noTrue) > 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("Recall",
			"no true samples in labels ["+strings.Join(noTrue, ", ")+"]", 0.0))
	}
	return scores, nil
}

// ClassificationReport はクラスごとの指標と正解率・マクロ平均・加重平均をまとめる。
func ClassificationReport(yTrue, yPred *mat.VecDense, opts ...ReportOption) (*Report, error) {
	cfg := &reportConfig{digits: 2}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.digits < 0 {
		return nil, errors.NewValidationError("digits", "must be non-negative", cfg.digits)
	}

	scores, err := PrecisionRecallFScoreSupport(yTrue, yPred)
	if err != nil {
		return nil, err
	}
	if cfg.targetNames != nil {
		if len(cfg.targetNames) != len(scores) {
			return nil, errors.NewValueErrorf("ClassificationReport",
				"number of classes, %d, does not match size of target_names, %d", len(scores), len(cfg.targetNames))
		}
		for i := range scores {
			scores[i].Name = cfg.targetNames[i]
		}
	}

	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		return nil, err
	}

	total := lo.SumBy(scores, func(s ClassScores) int { return s.Support })
	report := &Report{
		Classes:  scores,
		Accuracy: acc,
		Digits:   cfg.digits,
	}
	k := float64(len(scores))
	for _, s := range scores {
		report.MacroAvg.Precision += s.Precision / k
		report.MacroAvg.Recall += s.Recall / k
		report.MacroAvg.F1 += s.F1 / k

		w := float64(s.Support) / float64(total)
		report.WeightedAvg.Precision += s.Precision * w
		report.WeightedAvg.Recall += s.Recall * w
		report.WeightedAvg.F1 += s.F1 * w
	}
	report.MacroAvg.Support = total
	report.WeightedAvg.Support = total
	return report, nil
}

// String renders the report in scikit-learn's classification_report layout.
func (r *Report) String() string {
	width := len(weightedAvgHeading)
	for _, s := range r.Classes {
		width = max(width, len(s.Name))
	}
	width = max(width, r.Digits)

	var b strings.Builder
	fmt.Fprintf(&b, "%*s ", width, "")
	for _, h := range []string{"precision", "recall", "f1-score", "support"} {
		fmt.Fprintf(&b, " %9s", h)
	}
	b.WriteString("\n\n")

	row := func(name string, p, rc, f float64, support int) {
		fmt.Fprintf(&b, "%*s  %9.*f %9.*f %9.*f %9d\n", width, name, r.Digits, p, r.Digits, rc, r.Digits, f, support)
	}
	for _, s := range r.Classes {
		row(s.Name, s.Precision, s.Recall, s.F1, s.Support)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "%*s  %9s %9s %9.*f %9d\n", width, "accuracy", "", "", r.Digits, r.Accuracy, r.MacroAvg.Support)
	row("macro avg", r.MacroAvg.Precision, r.MacroAvg.Recall, r.MacroAvg.F1, r.MacroAvg.Support)
	row(weightedAvgHeading, r.WeightedAvg.Precision, r.WeightedAvg.Recall, r.WeightedAvg.F1, r.WeightedAvg.Support)
	return b.String()
}
