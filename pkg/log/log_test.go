package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "github.com/YuminosukeSato/diagnosis/pkg/errors"
)

func TestNewJSONLogger_CloudLoggingKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, slog.LevelInfo)

	logger.Info("split done", SamplesKey, 455)
	logger.Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "INFO", entry["severity"])
	assert.Equal(t, "split done", entry["message"])
	assert.Equal(t, float64(455), entry[SamplesKey])
	assert.Contains(t, entry, "logging.googleapis.com/sourceLocation")
}

func TestErrFmtHandler_AddsStacktrace(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(NewJSONLogger(&buf, slog.LevelDebug))

	logger.Error("load failed", errors.New("boom"), PathKey, "data.csv")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "boom", entry[ErrAttrKey])
	assert.NotEmpty(t, entry[StacktraceAttrKey])
	assert.Equal(t, "data.csv", entry[PathKey])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "verbose", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.ErrorContains(t, err, "invalid log level: "+tt.in)
				assert.Panics(t, func() { ToLogLevel(tt.in) })
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCaptureLogs(t *testing.T) {
	var restored Logger
	t.Run("captures", func(t *testing.T) {
		restored = GetLogger()
		logs := CaptureLogs(t, LevelInfo)

		GetLoggerWithName("imbalance").Info("resampled", SamplesKey, 10)
		GetLogger().Debug("dropped")
		GetLogger().Error("failed", errors.New("boom"), PathKey, "data.csv")

		assert.True(t, logs.ContainsMessage("resampled"))
		assert.False(t, logs.ContainsMessage("dropped"))
		assert.True(t, logs.ContainsField(ComponentKey, "imbalance"))
		assert.True(t, logs.ContainsField(SamplesKey, 10))

		entry, ok := logs.Find("failed")
		require.True(t, ok)
		assert.Equal(t, LevelError, entry.Level)
		assert.Equal(t, "boom", entry.Fields[ErrAttrKey])
		assert.Equal(t, "data.csv", entry.Fields[PathKey])

		logs.Clear()
		assert.Empty(t, logs.Entries())
	})
	assert.Same(t, restored, GetLogger())
}

func TestInstallZerologWarnings(t *testing.T) {
	var buf bytes.Buffer
	InstallZerologWarnings(zerolog.New(&buf))
	defer UninstallZerologWarnings()

	derrors.Warn(derrors.NewUndefinedMetricWarning("precision", "no predicted samples", 0))

	out := buf.String()
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"metric":"precision"`)
	assert.Contains(t, out, "ill-defined")
}
