package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal_bot/internal/indicator"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "values.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "BTC-USDT", cfg.Symbol)
	assert.Equal(t, time.Minute, cfg.TimeframeDuration())
	assert.True(t, cfg.DryRun)
	assert.Equal(t, 20, cfg.Bands.Window)
	assert.Equal(t, 25.0, cfg.Trigger.Oversold)
	assert.Equal(t, 30, cfg.Trigger.MaxArmedTicks)
	assert.Equal(t, 0.02, cfg.Risk.StopLossPct)
	assert.Equal(t, 10*time.Second, cfg.OKX.Timeout)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
symbol: ETH-USDT
timeframe: 5m
bands:
  deviation: sample
trigger:
  oversold: 20
  max_armed_ticks: 0
risk:
  capital: 2500
`)
	t.Setenv("SIGNAL_BOT_RISK_RISK_FRACTION", "0.02")
	t.Setenv("SIGNAL_BOT_TRIGGER_EXPANSION", "0.3")
	t.Setenv(tokenTelegramENV, "tg-token")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ETH-USDT", cfg.Symbol)
	assert.Equal(t, 5*time.Minute, cfg.TimeframeDuration())
	assert.Equal(t, 20.0, cfg.Trigger.Oversold)
	assert.Equal(t, 0, cfg.Trigger.MaxArmedTicks)
	assert.Equal(t, 0.3, cfg.Trigger.Expansion)
	assert.Equal(t, 2500.0, cfg.Budget().Capital)
	assert.Equal(t, 0.02, cfg.Budget().RiskFraction)
	assert.Equal(t, "tg-token", cfg.Telegram.Token)

	pc := cfg.PipelineConfig()
	assert.Equal(t, "ETH-USDT", pc.Symbol)
	assert.Equal(t, indicator.Sample, pc.Bands.Deviation)
	assert.Equal(t, 20.0, pc.Trigger.Oversold)
	assert.Equal(t, 0.999, pc.Risk.TakeProfitMargin)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"timeframe", "timeframe: 7m\n"},
		{"recovery band", "trigger:\n  recovery_low: 40\n"},
		{"risk fraction", "risk:\n  risk_fraction: 1.5\n"},
		{"deviation", "bands:\n  deviation: mad\n"},
		{"postgres without dsn", "archive:\n  kind: postgres\n"},
		{"archive kind", "archive:\n  kind: s3\n"},
		{"live without keys", "dry_run: false\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(databaseDSN, "")
			t.Setenv(okxAPIKeyENV, "")
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestConfig_DumpMasksSecrets(t *testing.T) {
	t.Setenv(okxAPISecretENV, "very-secret")

	cfg, err := Load(writeConfig(t, "symbol: SOL-USDT\n"))
	require.NoError(t, err)

	out, err := cfg.Dump()
	require.NoError(t, err)
	assert.Contains(t, out, "symbol: SOL-USDT")
	assert.Contains(t, out, "max_armed_ticks: 30")
	assert.NotContains(t, out, "very-secret")
	assert.Contains(t, out, "***")
}
