package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/diagnosis/pkg/errors"
)

func TestStateManager(t *testing.T) {
	s := NewStateManager()
	assert.False(t, s.IsFitted())

	err := s.RequireFitted("StandardScaler", "Transform")
	var nf *errors.NotFittedError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "Transform", nf.Method)

	s.SetFitted(30, 455)
	assert.True(t, s.IsFitted())
	assert.NoError(t, s.RequireFitted("StandardScaler", "Transform"))

	nFeatures, nSamples := s.Dimensions()
	assert.Equal(t, 30, nFeatures)
	assert.Equal(t, 455, nSamples)

	assert.NoError(t, s.RequireFeatures("Transform", 30))
	var dim *errors.DimensionError
	require.True(t, errors.As(s.RequireFeatures("Transform", 29), &dim))
	assert.Equal(t, 30, dim.Expected)

	s.Reset()
	assert.False(t, s.IsFitted())
}
