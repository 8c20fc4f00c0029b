// Package model_selection provides the stratified train/test split of the
// diagnosis workflow, compatible with scikit-learn's train_test_split(stratify=y).
package model_selection

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diagnosis/dataset"
	"github.com/YuminosukeSato/diagnosis/pkg/errors"
	"github.com/YuminosukeSato/diagnosis/pkg/log"
)

const (
	// DefaultTestSize is the held-out fraction used by SplitData.
	DefaultTestSize = 0.2
	// DefaultRandomState is the seed used by SplitData.
	DefaultRandomState int64 = 1
)

// Split holds the four partitions of a train/test split.
type Split struct {
	XTrain *dataset.Dataset
	XTest  *dataset.Dataset
	YTrain *mat.VecDense
	YTest  *mat.VecDense
}

type splitConfig struct {
	testSize    float64
	randomState int64
}

// SplitOption configures SplitData and StratifiedTrainTestSplit.
type SplitOption func(*splitConfig)

// WithTestSize sets the held-out fraction, in (0, 1).
func WithTestSize(size float64) SplitOption {
	return func(c *splitConfig) {
		c.testSize = size
	}
}

// WithRandomState sets the seed of the shuffles.
func WithRandomState(seed int64) SplitOption {
	return func(c *splitConfig) {
		c.randomState = seed
	}
}

// SplitData は id 列と diagnosis 列を除いた特徴量と diagnosis ラベルを
// 層化分割します。どちらかの列が存在しない場合はエラーを返します。
func SplitData(ds *dataset.Dataset, opts ...SplitOption) (*Split, error) {
	for _, col := range []string{dataset.IDColumn, dataset.TargetColumn} {
		if !ds.HasColumn(col) {
			return nil, errors.Wrapf(errors.ErrMissingColumn, "split data: column %q not found", col)
		}
	}

	X, err := ds.Drop(dataset.IDColumn, dataset.TargetColumn)
	if err != nil {
		return nil, err
	}
	y, err := ds.Column(dataset.TargetColumn)
	if err != nil {
		return nil, err
	}
	return StratifiedTrainTestSplit(X, y, opts...)
}

// StratifiedTrainTestSplit partitions X and y so that every class keeps its
// proportion in both parts.
//
// The test part has ceil(testSize*n) rows. Per-class counts are allocated by
// flooring the proportional share and handing the remaining rows to the
// classes with the largest fractional remainder. The result depends only on
// the inputs and the random state.
func StratifiedTrainTestSplit(X *dataset.Dataset, y *mat.VecDense, opts ...SplitOption) (*Split, error) {
	const op = "StratifiedTrainTestSplit"

	cfg := &splitConfig{testSize: DefaultTestSize, randomState: DefaultRandomState}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.testSize <= 0 || cfg.testSize >= 1 || math.IsNaN(cfg.testSize) {
		return nil, errors.NewValidationError("test_size", "must be in the open interval (0, 1)", cfg.testSize)
	}

	n, _ := X.Dims()
	if y.Len() != n {
		return nil, errors.NewDimensionError(op, n, y.Len(), 0)
	}
	if n == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, op)
	}
	labels, err := dataset.Labels(op, y)
	if err != nil {
		return nil, err
	}

	nTest := int(math.Ceil(cfg.testSize * float64(n)))
	nTrain := n - nTest
	classes := dataset.SortedClasses(labels)
	counts := dataset.ClassCounts(labels)

	for _, c := range classes {
		if counts[c] < 2 {
			return nil, errors.NewValueErrorf(op,
				"the least populated class in y has only 1 member, which is too few (class %d)", c)
		}
	}
	if nTrain < len(classes) {
		return nil, errors.NewValueErrorf(op, "the train size %d should be greater or equal to the number of classes %d", nTrain, len(classes))
	}
	if nTest < len(classes) {
		return nil, errors.NewValueErrorf(op, "the test size %d should be greater or equal to the number of classes %d", nTest, len(classes))
	}

	rng := rand.New(rand.NewSource(cfg.randomState))

	classCounts := make([]int, len(classes))
	for k, c := range classes {
		classCounts[k] = counts[c]
	}
	trainPerClass := approximateMode(classCounts, nTrain, rng)
	rest := make([]int, len(classes))
	for k := range classCounts {
		rest[k] = classCounts[k] - trainPerClass[k]
	}
	testPerClass := approximateMode(rest, nTest, rng)

	members := make(map[int][]int, len(classes))
	for i, l := range labels {
		members[l] = append(members[l], i)
	}

	trainIdx := make([]int, 0, nTrain)
	testIdx := make([]int, 0, nTest)
	for k, c := range classes {
		rows := members[c]
		perm := rng.Perm(len(rows))
		for p := 0; p < trainPerClass[k]; p++ {
			trainIdx = append(trainIdx, rows[perm[p]])
		}
		for p := trainPerClass[k]; p < trainPerClass[k]+testPerClass[k]; p++ {
			testIdx = append(testIdx, rows[perm[p]])
		}
	}
	rng.Shuffle(len(trainIdx), func(i, j int) { trainIdx[i], trainIdx[j] = trainIdx[j], trainIdx[i] })
	rng.Shuffle(len(testIdx), func(i, j int) { testIdx[i], testIdx[j] = testIdx[j], testIdx[i] })

	split := &Split{}
	if split.XTrain, err = X.Rows(trainIdx); err != nil {
		return nil, err
	}
	if split.XTest, err = X.Rows(testIdx); err != nil {
		return nil, err
	}
	split.YTrain = pick(y, trainIdx)
	split.YTest = pick(y, testIdx)

	log.GetLoggerWithName("model_selection").Debug("Stratified split",
		log.OperationKey, log.OperationSplit,
		log.SamplesKey, n,
		"train_samples", nTrain,
		"test_samples", nTest,
		log.RandomSeedKey, cfg.randomState,
	)
	return split, nil
}

// approximateMode draws nDraws items from classes with the given counts so
// that each class gets its proportional share, rounded down, and the rows
// left over go to the largest fractional remainders. Ties are broken randomly.
func approximateMode(classCounts []int, nDraws int, rng *rand.Rand) []int {
	total := 0
	for _, c := range classCounts {
		total += c
	}

	out := make([]int, len(classCounts))
	remainders := make([]float64, len(classCounts))
	assigned := 0
	for k, c := range classCounts {
		continuous := float64(c) * float64(nDraws) / float64(total)
		out[k] = int(math.Floor(continuous))
		remainders[k] = continuous - float64(out[k])
		assigned += out[k]
	}

	order := rng.Perm(len(classCounts))
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]] > remainders[order[b]]
	})
	for _, k := range order {
		if assigned >= nDraws {
			break
		}
		if out[k] < classCounts[k] {
			out[k]++
			assigned++
		}
	}
	return out
}

func pick(y *mat.VecDense, idx []int) *mat.VecDense {
	data := make([]float64, len(idx))
	for k, i := range idx {
		data[k] = y.AtVec(i)
	}
	return mat.NewVecDense(len(data), data)
}
