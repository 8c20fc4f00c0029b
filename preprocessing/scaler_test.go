package preprocessing_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diagnosis/dataset"
	"github.com/YuminosukeSato/diagnosis/pkg/errors"
	"github.com/YuminosukeSato/diagnosis/preprocessing"
)

const epsilon = 1e-10

func TestStandardScaler_BasicFunctionality(t *testing.T) {
	// Feature 1: [1, 2, 3] -> mean=2, std=0.816
	// Feature 2: [4, 5, 6] -> mean=5, std=0.816
	X := mat.NewDense(3, 2, []float64{
		1.0, 4.0,
		2.0, 5.0,
		3.0, 6.0,
	})

	scaler := preprocessing.NewStandardScalerDefault()
	require.NoError(t, scaler.Fit(X))

	assert.InDeltaSlice(t, []float64{2.0, 5.0}, scaler.Mean, epsilon)
	assert.InDeltaSlice(t, []float64{0.816496580927726, 0.816496580927726}, scaler.Scale, epsilon)

	XScaled, err := scaler.Transform(X)
	require.NoError(t, err)
	assert.InDelta(t, -1.224744871391589, XScaled.At(0, 0), epsilon)
	assert.InDelta(t, 0.0, XScaled.At(1, 1), epsilon)

	XBack, err := scaler.InverseTransform(XScaled)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(X, XBack, epsilon))
}

func TestStandardScaler_ConstantFeature(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{5, 5, 5})

	scaler := preprocessing.NewStandardScalerDefault()
	XScaled, err := scaler.FitTransform(X)
	require.NoError(t, err)

	assert.Equal(t, 1.0, scaler.Scale[0])
	for i := 0; i < 3; i++ {
		assert.Equal(t, 0.0, XScaled.At(i, 0))
	}
}

func TestMinMaxScaler_BasicFunctionality(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{
		1.0, 10.0,
		2.0, 20.0,
		5.0, 30.0,
	})

	scaler := preprocessing.NewMinMaxScalerDefault()
	XScaled, err := scaler.FitTransform(X)
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 10}, scaler.DataMin)
	assert.Equal(t, []float64{5, 30}, scaler.DataMax)
	assert.InDelta(t, 0.25, XScaled.At(1, 0), epsilon)
	assert.InDelta(t, 1.0, XScaled.At(2, 1), epsilon)

	// 訓練データの範囲外の値は [0,1] を超える
	out, err := scaler.Transform(mat.NewDense(1, 2, []float64{9, 0}))
	require.NoError(t, err)
	assert.InDelta(t, 2.0, out.At(0, 0), epsilon)
	assert.InDelta(t, -0.5, out.At(0, 1), epsilon)

	XBack, err := scaler.InverseTransform(XScaled)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(X, XBack, epsilon))
}

func TestScalers_Errors(t *testing.T) {
	scalers := map[string]interface {
		Fit(mat.Matrix) error
		Transform(mat.Matrix) (mat.Matrix, error)
	}{
		"standard": preprocessing.NewStandardScalerDefault(),
		"minmax":   preprocessing.NewMinMaxScalerDefault(),
	}

	for name, scaler := range scalers {
		t.Run(name, func(t *testing.T) {
			_, err := scaler.Transform(mat.NewDense(1, 2, nil))
			var notFitted *errors.NotFittedError
			assert.True(t, errors.As(err, &notFitted))

			require.NoError(t, scaler.Fit(mat.NewDense(2, 2, []float64{1, 2, 3, 4})))
			_, err = scaler.Transform(mat.NewDense(1, 3, nil))
			var dimErr *errors.DimensionError
			assert.True(t, errors.As(err, &dimErr))
		})
	}

	err := preprocessing.NewMinMaxScaler([2]float64{1, 0}).Fit(mat.NewDense(1, 1, []float64{1}))
	var valErr *errors.ValidationError
	assert.True(t, errors.As(err, &valErr))
}

func TestParseScalingMethod(t *testing.T) {
	tests := []struct {
		name    string
		want    preprocessing.ScalingMethod
		wantErr bool
	}{
		{"standard", preprocessing.ScalingStandard, false},
		{"minmax", preprocessing.ScalingMinMax, false},
		{"none", preprocessing.ScalingNone, false},
		{"robust", 0, true},
		{"Standard", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := preprocessing.ParseScalingMethod(tt.name)
			if tt.wantErr {
				var valErr *errors.ValueError
				assert.True(t, errors.As(err, &valErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.name, got.String())
		})
	}
}

func TestScaleFeatures_FitsOnTrainOnly(t *testing.T) {
	XTrain := mat.NewDense(4, 2, []float64{
		1, 100,
		2, 200,
		3, 300,
		4, 400,
	})
	XTest := mat.NewDense(2, 2, []float64{
		1000, -5,
		-1000, 5,
	})

	for _, method := range []preprocessing.ScalingMethod{preprocessing.ScalingStandard, preprocessing.ScalingMinMax} {
		t.Run(method.String(), func(t *testing.T) {
			_, testScaled, err := preprocessing.ScaleFeatures(XTrain, XTest, method)
			require.NoError(t, err)

			// 訓練データのみで学習したスケーラーで再現できること
			scaler, err := preprocessing.NewScaler(method)
			require.NoError(t, err)
			require.NoError(t, scaler.Fit(XTrain))
			want, err := scaler.Transform(XTest)
			require.NoError(t, err)
			assert.True(t, mat.EqualApprox(want, testScaled, epsilon))

			// 異なるテストデータを渡しても訓練側の結果は変わらない
			trainA, _, err := preprocessing.ScaleFeatures(XTrain, XTest, method)
			require.NoError(t, err)
			trainB, _, err := preprocessing.ScaleFeatures(XTrain, mat.NewDense(1, 2, []float64{1e9, 1e9}), method)
			require.NoError(t, err)
			assert.True(t, mat.Equal(trainA, trainB))
		})
	}
}

func TestScaleFeatures_None(t *testing.T) {
	XTrain := mat.NewDense(2, 1, []float64{1, 2})
	XTest := mat.NewDense(1, 1, []float64{3})

	trainOut, testOut, err := preprocessing.ScaleFeatures(XTrain, XTest, preprocessing.ScalingNone)
	require.NoError(t, err)
	assert.Same(t, XTrain, trainOut)
	assert.Same(t, XTest, testOut)

	_, _, err = preprocessing.ScaleFeatures(XTrain, XTest, preprocessing.ScalingMethod(99))
	var valErr *errors.ValueError
	assert.True(t, errors.As(err, &valErr))
}

func TestScaleFeatures_KeepsColumnNames(t *testing.T) {
	ds, err := dataset.New([]string{"radius", "texture"},
		mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, math.Pi}), []int{7, 8, 9})
	require.NoError(t, err)

	trainScaled, _, err := preprocessing.ScaleFeatures(ds, ds, preprocessing.ScalingStandard)
	require.NoError(t, err)

	out, ok := trainScaled.(*dataset.Dataset)
	require.True(t, ok)
	assert.Equal(t, []string{"radius", "texture"}, out.Columns())
	assert.Equal(t, []int{7, 8, 9}, out.Index())
}
