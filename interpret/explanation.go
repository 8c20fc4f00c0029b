package interpret

import (
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diagnosis/pkg/errors"
)

// Explanation holds per-feature attributions for a batch of rows.
// For every row i, BaseValues[i] + sum(Values row i) equals the explained
// model output for Data row i.
type Explanation struct {
	// Values is n_rows × n_features.
	Values *mat.Dense
	// BaseValues is the expected model output over the background data, one entry per row.
	BaseValues []float64
	// Data is a copy of the explained rows.
	Data         *mat.Dense
	FeatureNames []string
}

// InstanceExplanation is the attribution of a single row.
type InstanceExplanation struct {
	Values       []float64
	BaseValue    float64
	Data         []float64
	FeatureNames []string
}

// Dims returns the number of explained rows and features.
func (e *Explanation) Dims() (rows, features int) {
	if e.Values == nil {
		return 0, len(e.FeatureNames)
	}
	return e.Values.Dims()
}

// Row returns the explanation of row i.
func (e *Explanation) Row(i int) (*InstanceExplanation, error) {
	rows, _ := e.Dims()
	if i < 0 || i >= rows {
		return nil, errors.NewValueErrorf("Explanation.Row", "index %d out of range for %d explained rows", i, rows)
	}
	return &InstanceExplanation{
		Values:       mat.Row(nil, i, e.Values),
		BaseValue:    e.BaseValues[i],
		Data:         mat.Row(nil, i, e.Data),
		FeatureNames: slices.Clone(e.FeatureNames),
	}, nil
}

// Output returns BaseValue plus the sum of the attributions.
func (ie *InstanceExplanation) Output() float64 {
	return ie.BaseValue + floats.Sum(ie.Values)
}

// MeanAbs returns the mean absolute attribution of every feature, the
// ordering used by the summary chart.
func (e *Explanation) MeanAbs() []float64 {
	rows, features := e.Dims()
	out := make([]float64, features)
	if rows == 0 {
		return out
	}
	for i := 0; i < rows; i++ {
		for j, v := range e.Values.RawRowView(i) {
			if v < 0 {
				v = -v
			}
			out[j] += v
		}
	}
	floats.Scale(1/float64(rows), out)
	return out
}
