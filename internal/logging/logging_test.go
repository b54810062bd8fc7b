package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in          string
		want        zapcore.Level
		wantEnabled bool
		wantErr     bool
	}{
		{"debug", zapcore.DebugLevel, true, false},
		{"INFO", zapcore.InfoLevel, true, false},
		{"", zapcore.WarnLevel, true, false},
		{"warning", zapcore.WarnLevel, true, false},
		{"error", zapcore.ErrorLevel, true, false},
		{"off", zapcore.InvalidLevel, false, false},
		{"loud", zapcore.InvalidLevel, false, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, enabled, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantEnabled, enabled)
		})
	}
}

func TestNew_JSONRespectsLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := New(Config{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("unit started", zap.String("scenario", "login:3"))
	require.NoError(t, log.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "unit started", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "stepnotify", entry["logger"])
	assert.Equal(t, "login:3", entry["scenario"])
}

func TestNew_ConsoleFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := New(Config{Level: "warn"}, &buf)
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("malformed lines", zap.Int("count", 2))

	out := buf.String()
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "malformed lines")
	assert.NotContains(t, out, "hidden")
}

func TestNew_OffIsNop(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := New(Config{Level: "off"}, &buf)
	require.NoError(t, err)
	log.Error("nothing")
	assert.Zero(t, buf.Len())
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	_, err := New(Config{Level: "verbose"}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "unknown log level")
}
