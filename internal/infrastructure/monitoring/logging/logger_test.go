package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger_Defaults(t *testing.T) {
	l, err := NewLogger(Config{})
	require.NoError(t, err)
	require.NotNil(t, l)
}

func TestNewLogger_InvalidOutputPath(t *testing.T) {
	_, err := NewLogger(Config{OutputPaths: []string{"/nonexistent-dir-xyz/engine.log"}})
	assert.Error(t, err)
}

func TestZapLogger_FieldsAndLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewLoggerFromCore(core)

	l.Info("deadline calculated",
		String("report_type", "FINREP"),
		Int("business_days_remaining", 12),
		Bool("dependencies_met", true),
		Duration("elapsed", 42*time.Millisecond),
		Err(errors.New("soft failure")),
	)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "deadline calculated", entry.Message)

	fields := entry.ContextMap()
	assert.Equal(t, "FINREP", fields["report_type"])
	assert.Equal(t, int64(12), fields["business_days_remaining"])
	assert.Equal(t, true, fields["dependencies_met"])
	assert.Equal(t, "soft failure", fields["error"])
}

func TestZapLogger_WithAndNamed(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := NewLoggerFromCore(core).Named("engine").With(String("jurisdiction", "EU"))

	l.Warn("calendar degraded")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "engine", entry.LoggerName)
	assert.Equal(t, "EU", entry.ContextMap()["jurisdiction"])
}

func TestErr_Nil(t *testing.T) {
	f := Err(nil)
	assert.Equal(t, "error", f.Key)
	assert.Equal(t, "<nil>", f.Value)
}

func TestDefaultLogger_SetAndGet(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	nop := NewNopLogger()
	SetDefault(nop)
	assert.Equal(t, nop, Default())

	// nil is ignored
	SetDefault(nil)
	assert.Equal(t, nop, Default())
}
