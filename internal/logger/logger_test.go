package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_Modes(t *testing.T) {
	for _, mode := range []string{"prod", "production", "dev", ""} {
		l, err := New(mode)
		require.NoError(t, err, mode)
		assert.NotNil(t, l.SugaredLogger)
	}
}

func TestOrNop(t *testing.T) {
	l := OrNop(nil)
	require.NotNil(t, l)
	l.Info("discarded", "k", "v")

	existing := Nop()
	assert.Same(t, existing, OrNop(existing))
}

func TestWith_AddsFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("component", "cache").Warn("store read failed", "account_id", int64(7))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "store read failed", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "cache", fields["component"])
	assert.Equal(t, int64(7), fields["account_id"])
}

func TestLevels(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.Debug("d", "n", 1)
	l.Info("i")
	l.Warn("w")
	l.Error("e")

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, zap.DebugLevel, entries[0].Level)
	assert.Equal(t, int64(1), entries[0].ContextMap()["n"])
	assert.Equal(t, zap.InfoLevel, entries[1].Level)
	assert.Equal(t, zap.WarnLevel, entries[2].Level)
	assert.Equal(t, zap.ErrorLevel, entries[3].Level)
}
