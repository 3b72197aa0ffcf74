package stdjson

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesJSONRecord(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, slog.LevelInfo)

	l.Info("email sent", "to", "ann@example.com", "image", true)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "email sent", record["msg"])
	assert.Equal(t, "INFO", record["level"])
	assert.Equal(t, "ann@example.com", record["to"])
	assert.Equal(t, true, record["image"])
}

func TestNew_OneLinePerRecord(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, slog.LevelDebug)

	l.Debug("first")
	l.Warn("second")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
}

func TestNew_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, slog.LevelError)

	l.Warn("skipped")

	assert.Empty(t, buf.String())
}
