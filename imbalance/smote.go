package imbalance

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diagnosis/core/model"
	"github.com/YuminosukeSato/diagnosis/dataset"
	"github.com/YuminosukeSato/diagnosis/pkg/errors"
)

// SMOTE (Synthetic Minority Over-sampling Technique) は少数クラスのサンプルと
// その k 近傍の間を線形補間して合成サンプルを生成します。
//
// 合成サンプル: x_new = x + u * (x_nn - x), u ~ U[0, 1)
type SMOTE struct {
	cfg samplerConfig
}

var _ model.Resampler = (*SMOTE)(nil)

// NewSMOTE creates a SMOTE sampler (k = 5, random state 1 by default).
func NewSMOTE(opts ...SamplerOption) *SMOTE {
	cfg := defaultSamplerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &SMOTE{cfg: cfg}
}

// FitResample oversamples every non-majority class up to the majority count.
// Each such class needs at least k+1 rows.
func (s *SMOTE) FitResample(X mat.Matrix, y *mat.VecDense) (mat.Matrix, *mat.VecDense, error) {
	const op = "SMOTE.FitResample"

	p, err := prepare(op, X, y, s.cfg.kNeighbors)
	if err != nil {
		return nil, nil, err
	}
	k := s.cfg.kNeighbors
	rng := rand.New(rand.NewSource(s.cfg.randomState))
	_, c := p.X.Dims()

	var (
		synthX [][]float64
		synthY []float64
	)
	for _, class := range p.classes {
		nSamples := p.majority - p.counts[class]
		if nSamples == 0 {
			continue
		}

		rows := p.classRows(class)
		if len(rows) <= k {
			return nil, nil, errors.NewValueErrorf(op,
				"class %d has %d samples, but k_neighbors=%d requires at least %d", class, len(rows), k, k+1)
		}
		XClass := subset(p.X, rows)
		nns, err := nearestNeighbors(XClass, k)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "%s: class %d", op, class)
		}

		for n := 0; n < nSamples; n++ {
			pick := rng.Intn(len(rows) * k)
			i, j := pick/k, pick%k
			step := rng.Float64()

			x := XClass.RawRowView(i)
			nn := XClass.RawRowView(nns[i][j])
			row := make([]float64, c)
			for f := range row {
				row[f] = x[f] + step*(nn[f]-x[f])
			}
			synthX = append(synthX, row)
			synthY = append(synthY, float64(class))
		}
	}

	XRes, yRes := stack(X, p, synthX, synthY)
	r, _ := XRes.Dims()
	labels, err := dataset.Labels(op, yRes)
	if err != nil {
		return nil, nil, err
	}
	logResampled("smote", p.counts, dataset.ClassCounts(labels), r, c)
	return XRes, yRes, nil
}

// subset copies the given rows of X.
func subset(X *mat.Dense, rows []int) *mat.Dense {
	_, c := X.Dims()
	out := mat.NewDense(len(rows), c, nil)
	for k, i := range rows {
		out.SetRow(k, X.RawRowView(i))
	}
	return out
}
