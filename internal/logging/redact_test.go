package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRedactingHandler_RedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(WrapHandler(slog.NewJSONHandler(&buf, nil)))
	logger.Info("test",
		"spend_secret", "deadbeef",
		"Passphrase", "hunter2",
		"slot", 42,
		slog.Group("recovery", "spend_scalar", "cafe", "matched", true),
	)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &payload))
	require.Equal(t, redactedValue, payload["spend_secret"])
	require.Equal(t, redactedValue, payload["Passphrase"])
	require.Equal(t, float64(42), payload["slot"])

	group, ok := payload["recovery"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, redactedValue, group["spend_scalar"])
	require.Equal(t, true, group["matched"])

	require.NotContains(t, buf.String(), "deadbeef")
	require.NotContains(t, buf.String(), "hunter2")
	require.NotContains(t, buf.String(), "cafe")
}

func TestRedactingHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(WrapHandler(slog.NewTextHandler(&buf, nil))).
		With("view_private_key", "abcd").
		WithGroup("scan")
	logger.Info("done", "mnemonic", "abandon about", "matches", 1)

	out := buf.String()
	require.NotContains(t, out, "abcd")
	require.NotContains(t, out, "abandon")
	require.Contains(t, out, "scan.matches=1")
}

func TestRedactingHandler_Contract(t *testing.T) {
	var buf bytes.Buffer
	h := WrapHandler(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	require.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	require.True(t, h.Enabled(context.Background(), slog.LevelError))

	rec := slog.NewRecord(time.Now(), slog.LevelError, "msg", 0)
	rec.AddAttrs(slog.String("secret", "x"))
	require.NoError(t, h.Handle(context.Background(), rec))
	require.Contains(t, buf.String(), redactedValue)

	require.Nil(t, WrapHandler(nil))
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "debug", "json")
	require.NoError(t, err)
	logger.Debug("hello", "secret", "x")
	require.True(t, strings.HasPrefix(buf.String(), "{"))
	require.Contains(t, buf.String(), redactedValue)

	buf.Reset()
	logger, err = New(&buf, "", "")
	require.NoError(t, err)
	logger.Debug("hidden")
	require.Empty(t, buf.String())
	logger.Info("shown")
	require.Contains(t, buf.String(), "msg=shown")

	_, err = New(&buf, "loud", "text")
	require.Error(t, err)
	_, err = New(&buf, "info", "xml")
	require.Error(t, err)
}
