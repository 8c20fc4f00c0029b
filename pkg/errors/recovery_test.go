package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecover_WithPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "chart.Save")
		panic("heatmap: min > max")
	}

	err := testFunc()
	require.Error(t, err)

	var panicErr *PanicError
	require.True(t, As(err, &panicErr))
	assert.Equal(t, "chart.Save", panicErr.Operation)
	assert.Equal(t, "heatmap: min > max", panicErr.PanicValue)
	assert.NotEmpty(t, panicErr.StackTrace)
	assert.Equal(t, "panic in chart.Save: heatmap: min > max", panicErr.Error())
}

func TestRecover_WithoutPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "op")
		return nil
	}
	assert.NoError(t, testFunc())
}

func TestRecover_WithExistingError(t *testing.T) {
	original := fmt.Errorf("render failed")
	testFunc := func() (err error) {
		defer Recover(&err, "op")
		err = original
		panic("late panic")
	}

	err := testFunc()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "late panic")
	assert.ErrorIs(t, err, original)
}

func TestSafeExecute(t *testing.T) {
	tests := []struct {
		name    string
		fn      func() error
		wantErr string
	}{
		{name: "success", fn: func() error { return nil }},
		{name: "error", fn: func() error { return fmt.Errorf("plain") }, wantErr: "plain"},
		{name: "panic", fn: func() error { panic(42) }, wantErr: "panic in op: 42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SafeExecute("op", tt.fn)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}
