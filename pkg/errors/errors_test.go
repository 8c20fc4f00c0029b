package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValueError(t *testing.T) {
	err := NewValueError("BalanceClasses", `unknown sampling method "oversample"`)

	assert.Equal(t, `diagnosis: BalanceClasses: unknown sampling method "oversample"`, err.Error())

	var valErr *ValueError
	require.True(t, As(err, &valErr))
	assert.Equal(t, "BalanceClasses", valErr.Op)

	// スタックトレースの存在確認
	assert.Contains(t, fmt.Sprintf("%+v", err), "errors_test.go")
}

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{
			name:    "with original error",
			err:     fmt.Errorf("boom"),
			wantMsg: "diagnosis: Predict: prediction failed: boom",
		},
		{
			name:    "without original error",
			err:     nil,
			wantMsg: "diagnosis: Predict: prediction failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError("Predict", "prediction failed", tt.err)
			assert.Equal(t, tt.wantMsg, err.Error())

			var modelErr *ModelError
			assert.True(t, As(err, &modelErr))
			if tt.err != nil {
				assert.True(t, Is(err, tt.err))
			}
		})
	}
}

func TestDimensionErrorMessage(t *testing.T) {
	err := NewDimensionError("StandardScaler.Transform", 30, 29, 1)
	assert.Equal(t, "diagnosis: StandardScaler.Transform: dimension mismatch on axis 1 (features). Expected 30, got 29", err.Error())

	err = NewDimensionError("Predict", 10, 9, 0)
	assert.True(t, strings.Contains(err.Error(), "(rows)"))
}

func TestWrapKeepsCause(t *testing.T) {
	wrapped := Wrapf(fs.ErrNotExist, "open %s", "data.csv")
	assert.True(t, Is(wrapped, fs.ErrNotExist))
	assert.True(t, stderrors.Is(wrapped, fs.ErrNotExist))
	assert.Contains(t, wrapped.Error(), "open data.csv")
}

func TestWarnRouting(t *testing.T) {
	var got []error
	SetWarningHandler(func(w error) { got = append(got, w) })
	defer SetWarningHandler(nil)

	Warn(NewUndefinedMetricWarning("precision", "no predicted samples", 0))
	require.Len(t, got, 1)
	assert.Equal(t, "'precision' is ill-defined and being set to 0.0 due to no predicted samples.", got[0].Error())

	var viaZerolog []error
	SetZerologWarnFunc(func(w error) { viaZerolog = append(viaZerolog, w) })
	defer SetZerologWarnFunc(nil)

	Warn(NewDataConversionWarning("string", "float64", "unknown label"))
	assert.Len(t, got, 1, "zerolog func takes precedence over the handler")
	assert.Len(t, viaZerolog, 1)
}

func TestZerologMarshalers(t *testing.T) {
	var sb strings.Builder
	logger := zerolog.New(&sb)

	logger.Warn().EmbedObject(NewUndefinedMetricWarning("recall", "no true samples", 0)).Msg("warn")
	logger.Error().EmbedObject(&ValidationError{ParamName: "test_size", Reason: "must be in (0, 1)", Value: 1.5}).Msg("err")

	out := sb.String()
	assert.Contains(t, out, `"type":"UndefinedMetricWarning"`)
	assert.Contains(t, out, `"param_name":"test_size"`)
}

func TestCheckNumericalStability(t *testing.T) {
	assert.NoError(t, CheckNumericalStability("op", []float64{1, 2}, 0))

	err := CheckNumericalStability("shap_model_output", []float64{1, nanValue()}, 3)
	var numErr *NumericalInstabilityError
	require.True(t, As(err, &numErr))
	assert.Equal(t, 3, numErr.Row)
	assert.Contains(t, err.Error(), "at row 3")
}

func TestSafeDivide(t *testing.T) {
	assert.Equal(t, 0.0, SafeDivide(3, 0))
	assert.Equal(t, 1.5, SafeDivide(3, 2))
}

func nanValue() float64 {
	zero := 0.0
	return zero / zero
}
