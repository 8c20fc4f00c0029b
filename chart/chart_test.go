package chart

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/diagnosis/pkg/errors"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func sampleCharts() map[string]Chart {
	return map[string]Chart{
		"bar": &BarChart{
			Title:      "Top Feature Coefficients",
			XLabel:     "Coefficient Value",
			Labels:     []string{"b", "c"},
			Values:     []float64{-2, 1},
			Horizontal: true,
		},
		"heatmap": &Heatmap{
			Title:    "Confusion Matrix",
			XLabel:   "Predicted label",
			YLabel:   "True label",
			XTicks:   []string{"0", "1"},
			YTicks:   []string{"0", "1"},
			Values:   [][]float64{{50, 3}, {2, 40}},
			Annotate: true,
		},
		"beeswarm": &Beeswarm{
			Title:         "SHAP summary",
			XLabel:        "SHAP value",
			Features:      []string{"radius", "texture"},
			Values:        [][]float64{{0.5, -0.2, 0.1, 0.1}, {0.05, 0.0, -0.01, 0.02}},
			FeatureValues: [][]float64{{20, 10, 15, 14}, {1, 2, 3, 4}},
		},
		"waterfall": &Waterfall{
			Title:         "SHAP waterfall",
			BaseValue:     -0.3,
			Labels:        []string{"20 = radius", "1 = texture", "2 other features"},
			Contributions: []float64{1.2, -0.4, 0.05},
		},
	}
}

func TestCharts_Render(t *testing.T) {
	for name, c := range sampleCharts() {
		t.Run(name, func(t *testing.T) {
			p, err := c.Plot()
			require.NoError(t, err)
			assert.Equal(t, c.ChartTitle(), p.Title.Text)

			data, err := Render(c, "png", WithSize(3*vg.Inch, 2*vg.Inch), WithDPI(50))
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(data, pngMagic))

			svg, err := Render(c, "svg")
			require.NoError(t, err)
			assert.Contains(t, string(svg), "<svg")
		})
	}
}

func TestCharts_InvalidDescriptions(t *testing.T) {
	tests := map[string]Chart{
		"empty bar":             &BarChart{},
		"bar label mismatch":    &BarChart{Labels: []string{"a"}, Values: []float64{1, 2}},
		"empty heatmap":         &Heatmap{},
		"ragged heatmap":        &Heatmap{XTicks: []string{"a", "b"}, YTicks: []string{"a", "b"}, Values: [][]float64{{1, 2}, {3}}},
		"beeswarm mismatch":     &Beeswarm{Features: []string{"a"}, Values: [][]float64{{1}, {2}}},
		"waterfall no values":   &Waterfall{},
		"waterfall label count": &Waterfall{Labels: []string{"a"}, Contributions: []float64{1, 2}},
	}
	for name, c := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := c.Plot()
			assert.Error(t, err)
		})
	}
}

func TestBarChart_FirstLabelOnTop(t *testing.T) {
	b := &BarChart{Labels: []string{"top", "bottom"}, Values: []float64{-2, 1}, Horizontal: true}
	p, err := b.Plot()
	require.NoError(t, err)

	ticks := p.Y.Tick.Marker.Ticks(p.Y.Min, p.Y.Max)
	require.Len(t, ticks, 2)
	// Y の大きい方が上に描画される
	assert.Equal(t, "bottom", ticks[0].Label)
	assert.Equal(t, "top", ticks[1].Label)
}

func TestWaterfall_Output(t *testing.T) {
	w := sampleCharts()["waterfall"].(*Waterfall)
	assert.InDelta(t, 0.55, w.Output(), 1e-12)
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	c := sampleCharts()["heatmap"]

	t.Run("no extension defaults to png", func(t *testing.T) {
		path, err := Save(c, filepath.Join(dir, "cm"), WithDPI(30))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "cm.png"), path)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, pngMagic))
	})

	t.Run("format from extension", func(t *testing.T) {
		path, err := Save(c, filepath.Join(dir, "cm.pdf"))
		require.NoError(t, err)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	})

	t.Run("render failure leaves no file", func(t *testing.T) {
		path := filepath.Join(dir, "broken.png")
		_, err := Save(&BarChart{}, path)
		require.Error(t, err)
		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			assert.NotContains(t, e.Name(), "broken")
		}
	})

	t.Run("unsupported format", func(t *testing.T) {
		path := filepath.Join(dir, "cm.bmp")
		_, err := Save(c, path)
		var valErr *errors.ValueError
		assert.True(t, errors.As(err, &valErr))
		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("invalid dpi", func(t *testing.T) {
		_, err := Save(c, filepath.Join(dir, "x.png"), WithDPI(0))
		var valErr *errors.ValidationError
		assert.True(t, errors.As(err, &valErr))
	})
}

type recordingDisplayer struct {
	titles []string
}

func (r *recordingDisplayer) Display(_ context.Context, c Chart) error {
	r.titles = append(r.titles, c.ChartTitle())
	return nil
}

func TestShow(t *testing.T) {
	c := sampleCharts()["bar"]

	t.Run("saves then displays", func(t *testing.T) {
		rec := &recordingDisplayer{}
		path := filepath.Join(t.TempDir(), "coef.png")

		require.NoError(t, Show(context.Background(), c, WithSavePath(path), WithDisplayer(rec), WithDPI(30)))
		assert.FileExists(t, path)
		assert.Equal(t, []string{"Top Feature Coefficients"}, rec.titles)
	})

	t.Run("default displayer", func(t *testing.T) {
		rec := &recordingDisplayer{}
		prev := SetDefaultDisplayer(rec)
		defer SetDefaultDisplayer(prev)

		require.NoError(t, Show(context.Background(), c))
		assert.Len(t, rec.titles, 1)
	})

	t.Run("failed save skips display", func(t *testing.T) {
		rec := &recordingDisplayer{}
		err := Show(context.Background(), &BarChart{Title: "broken"},
			WithSavePath(filepath.Join(t.TempDir(), "b.png")), WithDisplayer(rec))
		assert.Error(t, err)
		assert.Empty(t, rec.titles)
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := Show(ctx, c, WithDisplayer(NopDisplayer{}))
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("displayer error is wrapped", func(t *testing.T) {
		boom := errors.New("no display")
		err := Show(context.Background(), c, WithDisplayer(DisplayerFunc(func(context.Context, Chart) error {
			return boom
		})))
		assert.True(t, errors.Is(err, boom))
	})
}
