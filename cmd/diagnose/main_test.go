package main

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/diagnosis/imbalance"
	"github.com/YuminosukeSato/diagnosis/pkg/errors"
	"github.com/YuminosukeSato/diagnosis/pkg/log"
	"github.com/YuminosukeSato/diagnosis/preprocessing"
)

// writeCSV writes a small two-class dataset with 40 benign and 20 malignant rows.
func writeCSV(t *testing.T) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("id,diagnosis,radius_mean,texture_mean,area_mean,smoothness_mean\n")
	for i := 0; i < 60; i++ {
		label, shift := "B", 0.0
		if i%3 == 0 {
			label, shift = "M", 1.5
		}
		fmt.Fprintf(&b, "%d,%s,%.4f,%.4f,%.4f,%.4f\n", 1000+i, label,
			10+shift*3+math.Sin(float64(i)),
			18+shift+math.Cos(float64(i)*1.3),
			500+shift*150+20*math.Sin(float64(i)*0.7),
			0.1+0.01*math.Cos(float64(i)*2.1),
		)
	}
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Cleanup(log.UninstallZerologWarnings)

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRun_Pipeline(t *testing.T) {
	data := writeCSV(t)
	out := filepath.Join(t.TempDir(), "charts")

	stdout, _, err := execute(t, "run", "--data", data, "--output", out, "--format", "svg", "--log-level", "warn")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stdout, "Classification Report:\n"), stdout)
	assert.Contains(t, stdout, "weighted avg")
	assert.Contains(t, stdout, "ROC AUC")
	assert.Contains(t, stdout, "misclassified samples")
	for _, name := range []string{"confusion_matrix", "coefficients", "shap_summary", "shap_waterfall"} {
		assert.FileExists(t, filepath.Join(out, name+".svg"))
	}
}

func TestRunFlags_Resolve(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
data:
  path: /data/wdbc.csv
preprocessing:
  sampling: adasyn
  scaling: minmax
interpret:
  top_n: 4
`), 0o644))

	cmd, f := buildRunCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--config", cfgPath, "--sampling", "none", "--test-size", "0.25"}))
	cfg, err := f.resolve(cmd)
	require.NoError(t, err)

	assert.Equal(t, "/data/wdbc.csv", cfg.Data.Path)
	assert.Equal(t, imbalance.SamplingNone, cfg.Preprocessing.Sampling)
	assert.Equal(t, preprocessing.ScalingMinMax, cfg.Preprocessing.Scaling)
	assert.Equal(t, 0.25, cfg.Split.TestSize)
	assert.Equal(t, 4, cfg.Interpret.TopN)
	// unset flags keep file and default values
	assert.Equal(t, int64(1), cfg.Split.RandomState)
}

func TestRun_Errors(t *testing.T) {
	data := writeCSV(t)

	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, err error)
	}{
		{
			name: "unknown sampling",
			args: []string{"run", "--data", data, "--sampling", "random"},
			check: func(t *testing.T, err error) {
				var ve *errors.ValueError
				assert.True(t, errors.As(err, &ve), "got %v", err)
			},
		},
		{
			name: "missing data file",
			args: []string{"run", "--data", filepath.Join(t.TempDir(), "absent.csv"), "--output", t.TempDir()},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, os.ErrNotExist)
			},
		},
		{
			name: "bad test size",
			args: []string{"run", "--data", data, "--test-size", "1"},
			check: func(t *testing.T, err error) {
				var ve *errors.ValidationError
				assert.True(t, errors.As(err, &ve), "got %v", err)
			},
		},
		{
			name: "waterfall index beyond test set",
			args: []string{"run", "--data", data, "--output", t.TempDir(), "--format", "svg", "--log-level", "error", "--waterfall-index", "500"},
			check: func(t *testing.T, err error) {
				var ve *errors.ValueError
				assert.True(t, errors.As(err, &ve), "got %v", err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}
