package evaluation

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diagnosis/pkg/errors"
	"github.com/YuminosukeSato/diagnosis/pkg/log"
)

// probaModel reports the first feature as the positive class probability.
type probaModel struct {
	thresholdModel
	classes int
}

func (m *probaModel) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	r, _ := X.Dims()
	cols := max(m.classes, 2)
	out := mat.NewDense(r, cols, nil)
	for i := 0; i < r; i++ {
		out.Set(i, 0, 1-X.At(i, 0))
		out.Set(i, 1, X.At(i, 0))
	}
	return out, nil
}

func TestScoreProbabilities(t *testing.T) {
	ds, y := testSet(t)
	logs := log.CaptureLogs(t, log.LevelInfo)

	got, err := ScoreProbabilities(context.Background(), &probaModel{}, ds, y)
	require.NoError(t, err)

	// predictions 1 0 1 0 1 against 1 1 1 0 0
	assert.InDelta(t, 0.4, got.ErrorRate, 1e-12)
	// 4 of the 6 positive/negative pairs are ranked correctly
	assert.InDelta(t, 4.0/6.0, got.ROCAUC, 1e-12)
	wantLoss := -(math.Log(0.9) + math.Log(0.1) + math.Log(0.8) + math.Log(0.8) + math.Log(0.3)) / 5
	assert.InDelta(t, wantLoss, got.LogLoss, 1e-12)

	entry, ok := logs.Find("Probability scores")
	require.True(t, ok)
	assert.Equal(t, got.ROCAUC, entry.Fields[log.ROCAUCKey])
}

func TestScoreProbabilities_NotBinary(t *testing.T) {
	ds, y := testSet(t)
	_, err := ScoreProbabilities(context.Background(), &probaModel{classes: 3}, ds, y)
	var ve *errors.ValueError
	assert.True(t, errors.As(err, &ve), "got %v", err)
}

func TestPrintProbabilityScores(t *testing.T) {
	ds, y := testSet(t)
	var buf bytes.Buffer
	require.NoError(t, PrintProbabilityScores(context.Background(), &buf, &probaModel{}, ds, y))

	out := buf.String()
	assert.Contains(t, out, "ROC AUC")
	assert.Contains(t, out, "0.6667")
	assert.Contains(t, out, "0.4000")
}
