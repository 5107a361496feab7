package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestPrintfHelpers(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	Set(zap.New(core))
	t.Cleanup(func() { Set(nil) })

	old := SetServiceName("signal_bot")
	t.Cleanup(func() { SetServiceName(old) })

	Debug("seed %d", 100)
	Info("[RUNNER] start %s", "BTC-USDT")
	Warn("queue %s full", "archive")
	Error("order %s: %v", "cid", "boom")

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, "seed 100", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, "order cid: boom", entries[3].Message)
	assert.Equal(t, "signal_bot", entries[1].ContextMap()["service"])
}

func TestL_NopBeforeInit(t *testing.T) {
	Set(nil)
	assert.NotPanics(t, func() {
		Info("nothing %d", 1)
		L().Info("structured", zap.Int("n", 1))
	})
	assert.Panics(t, func() { Fatal("boom") })
}

func TestInit(t *testing.T) {
	t.Cleanup(func() { Set(nil) })

	require.NoError(t, Init(Config{Level: "debug", Development: true}))
	assert.NotNil(t, InfoLogger)
	assert.True(t, InfoLogger.Core().Enabled(zapcore.DebugLevel))

	assert.Error(t, Init(Config{Level: "loud"}))
}
