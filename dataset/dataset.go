// Package dataset provides the in-memory table used throughout the workflow:
// named float64 columns, a row index that survives filtering, and CSV loading
// for the diagnosis data format.
package dataset

import (
	"fmt"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diagnosis/pkg/errors"
)

const (
	// IDColumn is the sample identifier column.
	IDColumn = "id"
	// TargetColumn is the binary target column.
	TargetColumn = "diagnosis"
	// SpuriousColumn is the empty column produced by a trailing comma in the source CSV.
	SpuriousColumn = "Unnamed: 32"
)

// Dataset is a table of rows × named float64 columns.
//
// Dataset implements mat.Matrix, so it can be passed directly to scalers,
// samplers and models. Index holds the original row positions (like a pandas
// index) and is preserved by row selection. A Dataset is never modified in
// place; every operation returns a new value.
type Dataset struct {
	columns  []string
	colIndex map[string]int
	data     *mat.Dense // nil when there are no rows
	index    []int
}

var _ mat.Matrix = (*Dataset)(nil)

// New builds a Dataset. data may be nil only when it has no rows; index may
// be nil, in which case rows are numbered from zero.
func New(columns []string, data *mat.Dense, index []int) (*Dataset, error) {
	rows := 0
	if data != nil {
		r, c := data.Dims()
		if c != len(columns) {
			return nil, errors.NewDimensionError("dataset.New", len(columns), c, 1)
		}
		rows = r
	}
	if dup := lo.FindDuplicates(columns); len(dup) > 0 {
		return nil, errors.NewValidationError("columns", "duplicate column names", dup)
	}
	if index == nil {
		index = lo.Range(rows)
	} else if len(index) != rows {
		return nil, errors.NewDimensionError("dataset.New", rows, len(index), 0)
	}

	colIndex := make(map[string]int, len(columns))
	for i, name := range columns {
		colIndex[name] = i
	}
	return &Dataset{
		columns:  append([]string(nil), columns...),
		colIndex: colIndex,
		data:     data,
		index:    append([]int(nil), index...),
	}, nil
}

// FromMatrix copies m into a new Dataset with the given column names.
func FromMatrix(columns []string, m mat.Matrix) (*Dataset, error) {
	r, _ := m.Dims()
	if r == 0 {
		return New(columns, nil, nil)
	}
	return New(columns, mat.DenseCopyOf(m), nil)
}

// WrapLike returns m labelled with ref's column names and index when ref is
// a Dataset of the same shape, and m itself otherwise. It lets matrix-level
// transforms keep feature names flowing through the pipeline.
func WrapLike(ref mat.Matrix, m *mat.Dense) mat.Matrix {
	ds, ok := ref.(*Dataset)
	if !ok {
		return m
	}
	r, c := m.Dims()
	if c != len(ds.columns) {
		return m
	}
	var index []int
	if r == len(ds.index) {
		index = ds.index
	}
	out, err := New(ds.columns, m, index)
	if err != nil {
		return m
	}
	return out
}

// Dims returns the number of rows and columns.
func (d *Dataset) Dims() (r, c int) {
	return len(d.index), len(d.columns)
}

// At returns the value at row i, column j.
func (d *Dataset) At(i, j int) float64 {
	if d.data == nil {
		panic(mat.ErrIndexOutOfRange)
	}
	return d.data.At(i, j)
}

// T returns the transpose of the Dataset's values.
func (d *Dataset) T() mat.Matrix {
	return mat.Transpose{Matrix: d}
}

// Columns returns a copy of the column names in order.
func (d *Dataset) Columns() []string {
	return append([]string(nil), d.columns...)
}

// Index returns a copy of the original row positions.
func (d *Dataset) Index() []int {
	return append([]int(nil), d.index...)
}

// HasColumn reports whether a column exists.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.colIndex[name]
	return ok
}

// ColumnIndex returns the position of the named column.
func (d *Dataset) ColumnIndex(name string) (int, bool) {
	j, ok := d.colIndex[name]
	return j, ok
}

// Matrix returns the underlying values. The result must not be modified.
// It is nil for a Dataset without rows.
func (d *Dataset) Matrix() *mat.Dense {
	return d.data
}

// Row returns a copy of row i.
func (d *Dataset) Row(i int) []float64 {
	return mat.Row(nil, i, d.data)
}

// Column returns a copy of the named column as a vector.
func (d *Dataset) Column(name string) (*mat.VecDense, error) {
	j, ok := d.colIndex[name]
	if !ok {
		return nil, errors.Wrapf(errors.ErrMissingColumn, "column %q not found", name)
	}
	if d.data == nil {
		return nil, errors.Wrapf(errors.ErrEmptyData, "column %q", name)
	}
	return mat.VecDenseCopyOf(d.data.ColView(j)), nil
}

// Drop returns a Dataset without the named columns. Every name must exist.
func (d *Dataset) Drop(names ...string) (*Dataset, error) {
	for _, name := range names {
		if !d.HasColumn(name) {
			return nil, errors.Wrapf(errors.ErrMissingColumn, "cannot drop %q: not found in columns", name)
		}
	}
	keep := lo.Filter(d.columns, func(c string, _ int) bool { return !lo.Contains(names, c) })
	return d.Select(keep...)
}

// Select returns a Dataset with only the named columns, in the given order.
func (d *Dataset) Select(names ...string) (*Dataset, error) {
	cols := make([]int, len(names))
	for k, name := range names {
		j, ok := d.colIndex[name]
		if !ok {
			return nil, errors.Wrapf(errors.ErrMissingColumn, "column %q not found", name)
		}
		cols[k] = j
	}

	r := len(d.index)
	if r == 0 || len(names) == 0 {
		return New(names, nil, nil)
	}
	out := mat.NewDense(r, len(names), nil)
	for i := 0; i < r; i++ {
		for k, j := range cols {
			out.Set(i, k, d.data.At(i, j))
		}
	}
	return New(names, out, d.index)
}

// Rows returns the rows at the given positions (not index labels), in order.
func (d *Dataset) Rows(positions []int) (*Dataset, error) {
	r, c := d.Dims()
	for _, p := range positions {
		if p < 0 || p >= r {
			return nil, errors.Wrapf(errors.ErrIndexOutOfRange, "row %d not in [0, %d)", p, r)
		}
	}
	if len(positions) == 0 || c == 0 {
		ds, err := New(d.columns, nil, nil)
		if err != nil {
			return nil, err
		}
		if c == 0 {
			ds.index = lo.Map(positions, func(p int, _ int) int { return d.index[p] })
		}
		return ds, nil
	}

	out := mat.NewDense(len(positions), c, nil)
	index := make([]int, len(positions))
	for k, p := range positions {
		out.SetRow(k, d.data.RawRowView(p))
		index[k] = d.index[p]
	}
	return New(d.columns, out, index)
}

// Filter returns the rows for which keep returns true.
func (d *Dataset) Filter(keep func(row int) bool) (*Dataset, error) {
	positions := lo.Filter(lo.Range(len(d.index)), func(i int, _ int) bool { return keep(i) })
	return d.Rows(positions)
}

// WithColumns returns a Dataset with the given columns appended. Each values
// slice must have one entry per row.
func (d *Dataset) WithColumns(names []string, values ...[]float64) (*Dataset, error) {
	if len(names) != len(values) {
		return nil, errors.NewValueErrorf("Dataset.WithColumns", "%d names for %d columns", len(names), len(values))
	}
	r, c := d.Dims()
	for _, v := range values {
		if len(v) != r {
			return nil, errors.NewDimensionError("Dataset.WithColumns", r, len(v), 0)
		}
	}

	columns := append(d.Columns(), names...)
	if r == 0 {
		return New(columns, nil, nil)
	}
	out := mat.NewDense(r, c+len(names), nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, d.data.At(i, j))
		}
		for k, v := range values {
			out.Set(i, c+k, v[i])
		}
	}
	return New(columns, out, d.index)
}

// String summarises the shape, e.g. "Dataset(569 rows × 31 columns)".
func (d *Dataset) String() string {
	r, c := d.Dims()
	return fmt.Sprintf("Dataset(%d rows × %d columns)", r, c)
}
