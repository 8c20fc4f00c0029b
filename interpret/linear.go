package interpret

import (
	"context"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/diagnosis/core/model"
	"github.com/YuminosukeSato/diagnosis/pkg/errors"
	"github.com/YuminosukeSato/diagnosis/pkg/log"
)

// LinearExplainer computes exact interventional attributions of a linear
// model in its margin (log-odds) space:
//
//	phi_j = w_j · (x_j − E[x_j]),  base = b + w · E[x]
type LinearExplainer struct {
	coef      []float64
	mean      []float64
	baseValue float64
}

var _ Explainer = (*LinearExplainer)(nil)

// NewLinearExplainer uses the first coefficient row of m and the column
// means of background.
func NewLinearExplainer(m model.LinearExplainable, background mat.Matrix) (*LinearExplainer, error) {
	const op = "NewLinearExplainer"

	coef := m.Coef()
	intercepts := m.InterceptValues()
	if len(coef) == 0 || len(coef[0]) == 0 || len(intercepts) == 0 {
		return nil, errors.NewModelError(op, "model exposes no coefficients", nil)
	}
	r, c := background.Dims()
	if r == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, op)
	}
	if c != len(coef[0]) {
		return nil, errors.NewDimensionError(op, len(coef[0]), c, 1)
	}

	mean := make([]float64, c)
	for j := range mean {
		mean[j] = stat.Mean(mat.Col(nil, j, background), nil)
	}
	return &LinearExplainer{
		coef:      coef[0],
		mean:      mean,
		baseValue: intercepts[0] + floats.Dot(coef[0], mean),
	}, nil
}

// BaseValue returns the expected margin over the background data.
func (e *LinearExplainer) BaseValue() float64 { return e.baseValue }

// Explain implements Explainer.
func (e *LinearExplainer) Explain(ctx context.Context, X mat.Matrix) (*Explanation, error) {
	const op = "LinearExplainer.Explain"

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	if r == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, op)
	}
	if c != len(e.coef) {
		return nil, errors.NewDimensionError(op, len(e.coef), c, 1)
	}

	data := mat.DenseCopyOf(X)
	values := mat.NewDense(r, c, nil)
	base := make([]float64, r)
	for i := 0; i < r; i++ {
		row := values.RawRowView(i)
		floats.SubTo(row, data.RawRowView(i), e.mean)
		floats.Mul(row, e.coef)
		base[i] = e.baseValue
	}

	log.GetLoggerWithName("interpret").Debug("Linear attributions computed",
		log.OperationKey, log.OperationExplain,
		log.SamplesKey, r,
		log.FeaturesKey, c,
	)
	return &Explanation{
		Values:       values,
		BaseValues:   base,
		Data:         data,
		FeatureNames: featureNames(X),
	}, nil
}
