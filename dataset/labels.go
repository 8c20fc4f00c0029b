package dataset

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diagnosis/pkg/errors"
)

// Labels converts a label vector to integer class labels. NaN or
// non-integral labels are rejected.
func Labels(op string, y mat.Vector) ([]int, error) {
	n := y.Len()
	out := make([]int, n)
	for i := 0; i < n; i++ {
		v := y.AtVec(i)
		if math.IsNaN(v) {
			return nil, errors.NewValueErrorf(op, "label at row %d is missing (NaN)", i)
		}
		if v != math.Trunc(v) {
			return nil, errors.NewValueErrorf(op, "label at row %d is not a class label: %g", i, v)
		}
		out[i] = int(v)
	}
	return out, nil
}

// ClassCounts returns the number of rows per class label.
func ClassCounts(labels []int) map[int]int {
	counts := make(map[int]int)
	for _, l := range labels {
		counts[l]++
	}
	return counts
}

// SortedClasses returns the distinct labels in ascending order.
func SortedClasses(labels []int) []int {
	counts := ClassCounts(labels)
	classes := make([]int, 0, len(counts))
	for c := range counts {
		classes = append(classes, c)
	}
	slices.Sort(classes)
	return classes
}

// ToVector converts a single-column matrix or vector to a *mat.VecDense.
func ToVector(op string, m mat.Matrix) (*mat.VecDense, error) {
	if v, ok := m.(*mat.VecDense); ok {
		return v, nil
	}
	r, c := m.Dims()
	if r == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, op)
	}
	if c != 1 {
		return nil, errors.NewDimensionError(op, 1, c, 1)
	}
	v := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		v.SetVec(i, m.At(i, 0))
	}
	return v, nil
}
