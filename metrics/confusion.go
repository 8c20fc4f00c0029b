package metrics

import (
	"slices"

	"gonum.org/v1/gonum/mat"
)

// ConfusionMatrixResult は混同行列です。
// Counts の行が正解ラベル、列が予測ラベルで、並びは Labels と同じです。
type ConfusionMatrixResult struct {
	Labels []int
	Counts *mat.Dense
}

// ConfusionMatrix は正解と予測から生のカウントの混同行列を作成する。
// ラベル集合は両方に現れたラベルの昇順の和集合。
func ConfusionMatrix(yTrue, yPred *mat.VecDense) (*ConfusionMatrixResult, error) {
	n, err := checkPair("ConfusionMatrix", yTrue, yPred)
	if err != nil {
		return nil, err
	}
	trueLabels, err := toLabels("ConfusionMatrix", yTrue)
	if err != nil {
		return nil, err
	}
	predLabels, err := toLabels("ConfusionMatrix", yPred)
	if err != nil {
		return nil, err
	}

	labels := uniqueLabels(trueLabels, predLabels)
	counts := mat.NewDense(len(labels), len(labels), nil)
	for i := 0; i < n; i++ {
		r, _ := slices.BinarySearch(labels, trueLabels[i])
		c, _ := slices.BinarySearch(labels, predLabels[i])
		counts.Set(r, c, counts.At(r, c)+1)
	}
	return &ConfusionMatrixResult{Labels: labels, Counts: counts}, nil
}

// Count returns the number of samples with the given true and predicted labels.
func (cm *ConfusionMatrixResult) Count(trueLabel, predLabel int) int {
	r, okR := slices.BinarySearch(cm.Labels, trueLabel)
	c, okC := slices.BinarySearch(cm.Labels, predLabel)
	if !okR || !okC {
		return 0
	}
	return int(cm.Counts.At(r, c))
}

// Total returns the number of samples counted.
func (cm *ConfusionMatrixResult) Total() int {
	return int(mat.Sum(cm.Counts))
}
