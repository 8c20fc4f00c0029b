// Package imbalance rebalances the class distribution of a training set by
// synthetic oversampling (SMOTE, ADASYN), compatible with imbalanced-learn's
// default "auto" strategy: every class except the majority is oversampled up
// to the majority count.
//
// Samplers must only be given the training partition.
package imbalance

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diagnosis/core/model"
	"github.com/YuminosukeSato/diagnosis/dataset"
	"github.com/YuminosukeSato/diagnosis/pkg/errors"
	"github.com/YuminosukeSato/diagnosis/pkg/log"
)

const (
	// DefaultKNeighbors is the neighbourhood size used for interpolation.
	DefaultKNeighbors = 5
	// DefaultRandomState is the seed used when none is given.
	DefaultRandomState int64 = 1
)

// SamplingMethod はクラス不均衡への対処手法の列挙型です。
type SamplingMethod int

const (
	// SamplingNone は入力をそのまま返す
	SamplingNone SamplingMethod = iota
	// SamplingSMOTE は少数クラスのサンプル間を線形補間して合成する
	SamplingSMOTE
	// SamplingADASYN は分類が難しい領域ほど多く合成する
	SamplingADASYN
)

// String returns the method name accepted by ParseSamplingMethod.
func (m SamplingMethod) String() string {
	switch m {
	case SamplingNone:
		return "none"
	case SamplingSMOTE:
		return "smote"
	case SamplingADASYN:
		return "adasyn"
	default:
		return fmt.Sprintf("SamplingMethod(%d)", int(m))
	}
}

// ParseSamplingMethod は手法名 ("smote", "adasyn", "none") を列挙値に変換します。
func ParseSamplingMethod(name string) (SamplingMethod, error) {
	switch name {
	case "none":
		return SamplingNone, nil
	case "smote":
		return SamplingSMOTE, nil
	case "adasyn":
		return SamplingADASYN, nil
	default:
		return 0, errors.NewValueErrorf("ParseSamplingMethod",
			"invalid sampling method %q. Choose 'smote', 'adasyn', or 'none'", name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m SamplingMethod) MarshalText() ([]byte, error) {
	if m < SamplingNone || m > SamplingADASYN {
		return nil, errors.NewValueErrorf("SamplingMethod.MarshalText", "unknown sampling method %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *SamplingMethod) UnmarshalText(text []byte) error {
	parsed, err := ParseSamplingMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

type samplerConfig struct {
	kNeighbors  int
	randomState int64
}

func defaultSamplerConfig() samplerConfig {
	return samplerConfig{kNeighbors: DefaultKNeighbors, randomState: DefaultRandomState}
}

// SamplerOption configures SMOTE and ADASYN.
type SamplerOption func(*samplerConfig)

// WithKNeighbors sets the number of nearest neighbours used to construct
// synthetic samples.
func WithKNeighbors(k int) SamplerOption {
	return func(c *samplerConfig) {
		c.kNeighbors = k
	}
}

// WithSamplingRandomState sets the seed of the sampler.
func WithSamplingRandomState(seed int64) SamplerOption {
	return func(c *samplerConfig) {
		c.randomState = seed
	}
}

// NewResampler は手法に対応する Resampler を返します。SamplingNone の場合は nil です。
func NewResampler(method SamplingMethod, opts ...SamplerOption) (model.Resampler, error) {
	switch method {
	case SamplingNone:
		return nil, nil
	case SamplingSMOTE:
		return NewSMOTE(opts...), nil
	case SamplingADASYN:
		return NewADASYN(opts...), nil
	default:
		return nil, errors.NewValueErrorf("NewResampler", "invalid sampling method %s", method)
	}
}

// BalanceClasses は訓練データのクラス分布を指定手法で調整します。
//
// SamplingNone は入力をコピーせずにそのまま返します。SMOTE/ADASYN の結果は
// 元の行の後に合成行が続き、入力が Dataset の場合は列名が保持されます。
// 不正な手法は再サンプリングを行う前に ValueError になります。
func BalanceClasses(X mat.Matrix, y *mat.VecDense, method SamplingMethod, randomState int64, opts ...SamplerOption) (mat.Matrix, *mat.VecDense, error) {
	opts = append([]SamplerOption{WithSamplingRandomState(randomState)}, opts...)
	sampler, err := NewResampler(method, opts...)
	if err != nil {
		return nil, nil, err
	}
	if sampler == nil {
		return X, y, nil
	}

	XRes, yRes, err := sampler.FitResample(X, y)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "balance classes (%s)", method)
	}
	return XRes, yRes, nil
}

// prepared is the validated input shared by the samplers.
type prepared struct {
	X       *mat.Dense
	labels  []int
	classes []int
	counts  map[int]int
	// majority は最多クラスのサンプル数
	majority int
}

func prepare(op string, X mat.Matrix, y *mat.VecDense, k int) (*prepared, error) {
	if k < 1 {
		return nil, errors.NewValidationError("k_neighbors", "must be a positive integer", k)
	}
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, op)
	}
	if y.Len() != r {
		return nil, errors.NewDimensionError(op, r, y.Len(), 0)
	}
	labels, err := dataset.Labels(op, y)
	if err != nil {
		return nil, err
	}
	classes := dataset.SortedClasses(labels)
	if len(classes) < 2 {
		return nil, errors.NewValueErrorf(op, "the target needs at least 2 classes, got %d", len(classes))
	}

	p := &prepared{
		X:       mat.DenseCopyOf(X),
		labels:  labels,
		classes: classes,
		counts:  dataset.ClassCounts(labels),
	}
	for _, n := range p.counts {
		p.majority = max(p.majority, n)
	}
	return p, nil
}

// classRows returns the positions of the rows labelled class.
func (p *prepared) classRows(class int) []int {
	var rows []int
	for i, l := range p.labels {
		if l == class {
			rows = append(rows, i)
		}
	}
	return rows
}

// stack appends the synthetic rows and labels to the originals.
func stack(ref mat.Matrix, p *prepared, synthX [][]float64, synthY []float64) (mat.Matrix, *mat.VecDense) {
	r, c := p.X.Dims()
	n := r + len(synthX)

	out := mat.NewDense(n, c, nil)
	out.Slice(0, r, 0, c).(*mat.Dense).Copy(p.X)
	for k, row := range synthX {
		out.SetRow(r+k, row)
	}

	labels := make([]float64, n)
	for i, l := range p.labels {
		labels[i] = float64(l)
	}
	copy(labels[r:], synthY)

	return dataset.WrapLike(ref, out), mat.NewVecDense(n, labels)
}

func logResampled(name string, before, after map[int]int, samples, features int) {
	log.GetLoggerWithName("imbalance").Info("Resampled training set",
		log.OperationKey, log.OperationFitResample,
		log.MethodKey, name,
		log.SamplesKey, samples,
		log.FeaturesKey, features,
		log.ClassCountsKey, fmt.Sprintf("%v -> %v", before, after),
	)
}
