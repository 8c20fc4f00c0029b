package imbalance

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diagnosis/core/model"
	"github.com/YuminosukeSato/diagnosis/dataset"
	"github.com/YuminosukeSato/diagnosis/pkg/errors"
)

// ADASYN (Adaptive Synthetic Sampling) は SMOTE と同じ補間を行いますが、
// k 近傍に他クラスが多いサンプル（分類が難しいサンプル）ほど多くの合成サンプルを生成します。
//
// 各少数クラスの生成数は多数クラスとの差ですが、サンプルごとの配分を四捨五入するため
// 最終的なクラス数は厳密に一致しないことがあります。
type ADASYN struct {
	cfg samplerConfig
}

var _ model.Resampler = (*ADASYN)(nil)

// NewADASYN creates an ADASYN sampler (k = 5, random state 1 by default).
func NewADASYN(opts ...SamplerOption) *ADASYN {
	cfg := defaultSamplerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &ADASYN{cfg: cfg}
}

// FitResample oversamples every non-majority class towards the majority count,
// weighting generation by the share of other-class rows among each sample's
// neighbours.
func (a *ADASYN) FitResample(X mat.Matrix, y *mat.VecDense) (mat.Matrix, *mat.VecDense, error) {
	const op = "ADASYN.FitResample"

	p, err := prepare(op, X, y, a.cfg.kNeighbors)
	if err != nil {
		return nil, nil, err
	}
	k := a.cfg.kNeighbors
	rng := rand.New(rand.NewSource(a.cfg.randomState))
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

		// 全データ上の近傍から難しさを求める
		nnAll, err := neighborsOf(p.X, rows, k)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "%s: class %d", op, class)
		}
		ratio := make([]float64, len(rows))
		total := 0.0
		for q, nn := range nnAll {
			other := 0
			for _, j := range nn {
				if p.labels[j] != class {
					other++
				}
			}
			ratio[q] = float64(other) / float64(k)
			total += ratio[q]
		}
		if total == 0 {
			return nil, nil, errors.NewValueErrorf(op,
				"no neighbours of class %d belong to another class; ADASYN cannot generate samples", class)
		}

		generate := make([]int, len(rows))
		planned := 0
		for q := range ratio {
			generate[q] = int(math.RoundToEven(ratio[q] / total * float64(nSamples)))
			planned += generate[q]
		}
		if planned == 0 {
			return nil, nil, errors.NewValueErrorf(op, "no samples will be generated for class %d with the provided ratio settings", class)
		}

		if len(rows) <= k {
			return nil, nil, errors.NewValueErrorf(op,
				"class %d has %d samples, but k_neighbors=%d requires at least %d", class, len(rows), k, k+1)
		}
		XClass := subset(p.X, rows)
		nns, err := nearestNeighbors(XClass, k)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "%s: class %d", op, class)
		}

		for i, count := range generate {
			x := XClass.RawRowView(i)
			for n := 0; n < count; n++ {
				nn := XClass.RawRowView(nns[i][rng.Intn(k)])
				step := rng.Float64()
				row := make([]float64, c)
				for f := range row {
					row[f] = x[f] + step*(nn[f]-x[f])
				}
				synthX = append(synthX, row)
				synthY = append(synthY, float64(class))
			}
		}
	}

	XRes, yRes := stack(X, p, synthX, synthY)
	r, _ := XRes.Dims()
	labels, err := dataset.Labels(op, yRes)
	if err != nil {
		return nil, nil, err
	}
	logResampled("adasyn", p.counts, dataset.ClassCounts(labels), r, c)
	return XRes, yRes, nil
}
