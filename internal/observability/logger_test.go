// File: internal/observability/logger_test.go
package observability_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xkilldash9x/cdpctl/internal/config"
	"github.com/xkilldash9x/cdpctl/internal/observability"
)

// syncBuffer adapts bytes.Buffer to zapcore.WriteSyncer.
type syncBuffer struct {
	bytes.Buffer
}

func (s *syncBuffer) Sync() error { return nil }

func newLoggerConfig(format string) config.LoggerConfig {
	cfg := config.NewDefaultConfig().Logger
	cfg.Format = format
	cfg.Level = "debug"
	return cfg
}

func TestGetLoggerBeforeInitializeIsNop(t *testing.T) {
	observability.ResetForTest()
	t.Cleanup(observability.ResetForTest)

	logger := observability.GetLogger()
	require.NotNil(t, logger)
	// A no-op logger must swallow everything without panicking.
	logger.Error("discarded")
}

func TestInitializeConsoleFormat(t *testing.T) {
	observability.ResetForTest()
	t.Cleanup(observability.ResetForTest)

	var buf syncBuffer
	observability.Initialize(newLoggerConfig("console"), &buf)

	logger := observability.GetLogger()
	logger.Info("attached to target", zap.String("target_id", "TAB-1"))
	observability.Sync()

	out := buf.String()
	assert.Contains(t, out, "attached to target")
	assert.Contains(t, out, "TAB-1")
	assert.Contains(t, out, "cdpctl", "logger must carry the service name")
}

func TestInitializeJSONFormat(t *testing.T) {
	observability.ResetForTest()
	t.Cleanup(observability.ResetForTest)

	var buf syncBuffer
	observability.Initialize(newLoggerConfig("json"), &buf)

	observability.GetLogger().Warn("dropping malformed frame")
	observability.Sync()

	out := buf.String()
	assert.Contains(t, out, `"msg":"dropping malformed frame"`)
	assert.Contains(t, out, `"WARN"`)
}

func TestInitializeIsIdempotent(t *testing.T) {
	observability.ResetForTest()
	t.Cleanup(observability.ResetForTest)

	var first, second syncBuffer
	observability.Initialize(newLoggerConfig("console"), &first)
	observability.Initialize(newLoggerConfig("console"), &second)

	observability.GetLogger().Info("only once")
	observability.Sync()

	assert.Contains(t, first.String(), "only once")
	assert.Empty(t, second.String(), "second Initialize must be a no-op")
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	observability.ResetForTest()
	t.Cleanup(observability.ResetForTest)

	cfg := newLoggerConfig("console")
	cfg.Level = "shouting"

	var buf syncBuffer
	observability.Initialize(cfg, &buf)

	logger := observability.GetLogger()
	logger.Debug("below the fallback level")
	logger.Info("at the fallback level")
	observability.Sync()

	out := buf.String()
	assert.NotContains(t, out, "below the fallback level")
	assert.Contains(t, out, "at the fallback level")
}

var _ zapcore.WriteSyncer = (*syncBuffer)(nil)
