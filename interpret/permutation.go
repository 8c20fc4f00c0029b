package interpret

import (
	"context"
	"math/rand"
	"slices"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/diagnosis/core/model"
	"github.com/YuminosukeSato/diagnosis/core/parallel"
	"github.com/YuminosukeSato/diagnosis/pkg/errors"
	"github.com/YuminosukeSato/diagnosis/pkg/log"
)

// PermutationExplainer is a model-agnostic Shapley value estimator. For each
// sampled feature ordering (and its reverse) the features of x are switched
// in one at a time over the background rows; each feature is credited with
// the change in the mean model output. Every ordering telescopes to
// f(x) − E[f(background)], so the attributions are exactly additive.
//
// The explained output is the positive-class probability when the model is a
// model.ProbabilisticPredictor and the raw prediction otherwise.
type PermutationExplainer struct {
	output     func(X mat.Matrix) ([]float64, error)
	background *mat.Dense
	cfg        explainerConfig
}

var _ Explainer = (*PermutationExplainer)(nil)

// NewPermutationExplainer builds a PermutationExplainer for any model.
func NewPermutationExplainer(m model.Predictor, background mat.Matrix, opts ...ExplainerOption) (*PermutationExplainer, error) {
	cfg, err := newExplainerConfig(opts)
	if err != nil {
		return nil, err
	}
	if r, _ := background.Dims(); r == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "NewPermutationExplainer")
	}
	rng := rand.New(rand.NewSource(cfg.randomState))
	return &PermutationExplainer{
		output:     outputFunc(m),
		background: sampleRows(background, cfg.maxBackground, rng),
		cfg:        *cfg,
	}, nil
}

// outputFunc は説明対象となるモデル出力（1行につき1値）を返す関数を作る
func outputFunc(m model.Predictor) func(X mat.Matrix) ([]float64, error) {
	const op = "PermutationExplainer.output"

	pp, probabilistic := m.(model.ProbabilisticPredictor)
	return func(X mat.Matrix) ([]float64, error) {
		var (
			out mat.Matrix
			err error
		)
		if probabilistic {
			out, err = pp.PredictProba(X)
		} else {
			out, err = m.Predict(X)
		}
		if err != nil {
			return nil, errors.NewModelError(op, "prediction failed", err)
		}
		r, c := out.Dims()
		if xr, _ := X.Dims(); r != xr {
			return nil, errors.NewDimensionError(op, xr, r, 0)
		}
		col := 0
		if probabilistic && c > 1 {
			col = 1
		}
		values := mat.Col(nil, col, out)
		if err := errors.CheckNumericalStability(op, values, -1); err != nil {
			return nil, err
		}
		return values, nil
	}
}

// permutations returns the number of antithetic permutation pairs per row.
func (e *PermutationExplainer) permutations(nFeatures int) int {
	n := e.cfg.maxEvals / (2 * (nFeatures + 1))
	return max(n, 1)
}

// Explain implements Explainer. Rows are explained in parallel; the context
// is checked before every row.
func (e *PermutationExplainer) Explain(ctx context.Context, X mat.Matrix) (*Explanation, error) {
	const op = "PermutationExplainer.Explain"

	r, c := X.Dims()
	if r == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, op)
	}
	if _, bc := e.background.Dims(); bc != c {
		return nil, errors.NewDimensionError(op, bc, c, 1)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	bgOut, err := e.output(e.background)
	if err != nil {
		return nil, err
	}
	baseValue := stat.Mean(bgOut, nil)

	data := mat.DenseCopyOf(X)
	values := mat.NewDense(r, c, nil)
	err = parallel.ParallelizeContext(ctx, r, e.cfg.workers, func(ctx context.Context, lo, hi int) error {
		for i := lo; i < hi; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(e.cfg.randomState + int64(i)))
			if err := e.explainRow(data.RawRowView(i), values.RawRowView(i), rng); err != nil {
				return errors.Wrapf(err, "row %d", i)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	base := make([]float64, r)
	for i := range base {
		base[i] = baseValue
	}

	log.GetLoggerWithName("interpret").Info("Permutation attributions computed",
		log.OperationKey, log.OperationExplain,
		log.PhaseKey, log.PhaseInterpretation,
		log.SamplesKey, r,
		log.FeaturesKey, c,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return &Explanation{
		Values:       values,
		BaseValues:   base,
		Data:         data,
		FeatureNames: featureNames(X),
	}, nil
}

// explainRow writes the attributions of x into phi.
func (e *PermutationExplainer) explainRow(x, phi []float64, rng *rand.Rand) error {
	nFeatures := len(x)
	nBg, _ := e.background.Dims()
	nPairs := e.permutations(nFeatures)

	masked := mat.NewDense((nFeatures+1)*nBg, nFeatures, nil)
	means := make([]float64, nFeatures+1)

	for p := 0; p < nPairs; p++ {
		perm := rng.Perm(nFeatures)
		reverse := slices.Clone(perm)
		slices.Reverse(reverse)

		for _, order := range [][]int{perm, reverse} {
			// ブロック s は order[:s] の特徴量を x の値に置き換えた背景データ
			for s := 0; s <= nFeatures; s++ {
				for b := 0; b < nBg; b++ {
					row := masked.RawRowView(s*nBg + b)
					copy(row, e.background.RawRowView(b))
					for _, j := range order[:s] {
						row[j] = x[j]
					}
				}
			}
			out, err := e.output(masked)
			if err != nil {
				return err
			}
			for s := range means {
				means[s] = stat.Mean(out[s*nBg:(s+1)*nBg], nil)
			}
			for k, j := range order {
				phi[j] += means[k+1] - means[k]
			}
		}
	}
	floats.Scale(1/float64(2*nPairs), phi)
	return nil
}
