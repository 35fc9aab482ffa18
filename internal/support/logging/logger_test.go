package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: slog.LevelInfo, Environment: "test", Version: "1.2.3", Output: &buf})

	logger.Debug("hidden")
	logger.Info("purchase completed", "user_id", "u1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "purchase completed", rec["msg"])
	assert.Equal(t, "mazpan", rec["service"])
	assert.Equal(t, "test", rec["env"])
	assert.Equal(t, "1.2.3", rec["version"])
	assert.Equal(t, "u1", rec["user_id"])
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	New(Options{Format: "Console", Level: slog.LevelDebug, Output: &buf}).Debug("hello")
	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "service=mazpan")
	assert.NotContains(t, buf.String(), "env=")
}

func TestDiscard(t *testing.T) {
	assert.False(t, Discard().Enabled(context.Background(), slog.LevelError))
}
