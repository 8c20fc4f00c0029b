package interpret

import (
	"context"
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diagnosis/core/model"
	"github.com/YuminosukeSato/diagnosis/dataset"
	"github.com/YuminosukeSato/diagnosis/pkg/errors"
)

const (
	// DefaultMaxEvals is the model evaluation budget per explained row.
	DefaultMaxEvals = 500
	// DefaultMaxBackground caps the background rows used for masking.
	DefaultMaxBackground = 100
	// DefaultExplainerRandomState seeds permutation sampling.
	DefaultExplainerRandomState int64 = 0
)

// Explainer computes attributions for the rows of X.
type Explainer interface {
	Explain(ctx context.Context, X mat.Matrix) (*Explanation, error)
}

type explainerConfig struct {
	maxEvals      int
	maxBackground int
	randomState   int64
	workers       int
}

// ExplainerOption configures NewExplainer.
type ExplainerOption func(*explainerConfig)

// WithMaxEvals sets the model evaluation budget per row of the permutation
// explainer. Each antithetic permutation pair costs 2·(n_features+1) evaluations.
func WithMaxEvals(n int) ExplainerOption {
	return func(c *explainerConfig) {
		c.maxEvals = n
	}
}

// WithMaxBackground caps the number of background rows, sampled without
// replacement when the background is larger.
func WithMaxBackground(n int) ExplainerOption {
	return func(c *explainerConfig) {
		c.maxBackground = n
	}
}

// WithExplainerRandomState seeds background subsampling and permutations.
func WithExplainerRandomState(seed int64) ExplainerOption {
	return func(c *explainerConfig) {
		c.randomState = seed
	}
}

// WithWorkers sets the number of goroutines explaining rows; 0 means one per CPU.
func WithWorkers(n int) ExplainerOption {
	return func(c *explainerConfig) {
		c.workers = n
	}
}

// NewExplainer picks an attribution method for m.
//
// 係数を一行だけ公開する線形モデルには LinearExplainer（対数オッズ空間の厳密解）を、
// それ以外には PermutationExplainer を使います。
// background は期待値の基準となるデータ（通常は訓練データ）です。
func NewExplainer(m model.Predictor, background mat.Matrix, opts ...ExplainerOption) (Explainer, error) {
	const op = "NewExplainer"

	if _, err := newExplainerConfig(opts); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.NewValueError(op, "model is nil")
	}
	if background == nil {
		return nil, errors.Wrap(errors.ErrEmptyData, op)
	}
	if r, c := background.Dims(); r == 0 || c == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, op)
	}

	if lin, ok := m.(model.LinearExplainable); ok && len(lin.Coef()) == 1 {
		e, err := NewLinearExplainer(lin, background)
		if err != nil {
			return nil, err
		}
		return e, nil
	}
	e, err := NewPermutationExplainer(m, background, opts...)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func newExplainerConfig(opts []ExplainerOption) (*explainerConfig, error) {
	cfg := &explainerConfig{
		maxEvals:      DefaultMaxEvals,
		maxBackground: DefaultMaxBackground,
		randomState:   DefaultExplainerRandomState,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	switch {
	case cfg.maxEvals < 1:
		return nil, errors.NewValidationError("max_evals", "must be at least 1", cfg.maxEvals)
	case cfg.maxBackground < 1:
		return nil, errors.NewValidationError("max_background", "must be at least 1", cfg.maxBackground)
	case cfg.workers < 0:
		return nil, errors.NewValidationError("workers", "must not be negative", cfg.workers)
	}
	return cfg, nil
}

// featureNames returns the column names of X when it carries them.
func featureNames(X mat.Matrix) []string {
	if ds, ok := X.(*dataset.Dataset); ok {
		return ds.Columns()
	}
	_, c := X.Dims()
	names := make([]string, c)
	for j := range names {
		names[j] = fmt.Sprintf("Feature %d", j)
	}
	return names
}

// sampleRows returns at most n rows of X, chosen without replacement.
func sampleRows(X mat.Matrix, n int, rng *rand.Rand) *mat.Dense {
	r, c := X.Dims()
	if r <= n {
		return mat.DenseCopyOf(X)
	}
	picked := rng.Perm(r)[:n]
	out := mat.NewDense(n, c, nil)
	for k, i := range picked {
		for j := 0; j < c; j++ {
			out.Set(k, j, X.At(i, j))
		}
	}
	return out
}
