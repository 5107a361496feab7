package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"signal_bot/internal/indicator"
	"signal_bot/internal/pipeline"
	"signal_bot/internal/risk"
	"signal_bot/internal/strategy"
)

const (
	configFilePathENV = "CONFIG_FILE"
	configDirENV      = "CONFIG_DIR"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	databaseDSN       = "DATABASE_DSN"
	okxAPIKeyENV      = "OKX_API_KEY"
	okxAPISecretENV   = "OKX_API_SECRET"
	okxPassphraseENV  = "OKX_PASSPHRASE"

	envPrefix = "SIGNAL_BOT"
)

// Config: все настройки бота, секции как в values_local.yaml.
type Config struct {
	Symbol      string `yaml:"symbol"`
	Timeframe   string `yaml:"timeframe"`
	SeedCandles int    `yaml:"seed_candles"`
	// DryRun: ордера исполняет бумажный счёт, на биржу ничего не уходит
	DryRun        bool `yaml:"dry_run"`
	CandleHistory int  `yaml:"candle_history"`

	Bands struct {
		Window           int     `yaml:"window"`
		K                float64 `yaml:"k"`
		Deviation        string  `yaml:"deviation"` // population | sample
		BandwidthHistory int     `yaml:"bandwidth_history"`
	} `yaml:"bands"`

	Oscillator struct {
		Period  int `yaml:"period"`
		History int `yaml:"history"`
	} `yaml:"oscillator"`

	Trigger strategy.Config `yaml:"trigger"`

	Risk struct {
		Capital          float64 `yaml:"capital"`
		RiskFraction     float64 `yaml:"risk_fraction"`
		StopLossPct      float64 `yaml:"stop_loss_pct"`
		TakeProfitMargin float64 `yaml:"take_profit_margin"`
		RewardRatio      float64 `yaml:"reward_ratio"`
		MaxLeverage      float64 `yaml:"max_leverage"`
	} `yaml:"risk"`

	Queues struct {
		Orders  int `yaml:"orders"`
		Archive int `yaml:"archive"`
		Notify  int `yaml:"notify"`
	} `yaml:"queues"`

	Archive struct {
		Kind string `yaml:"kind"` // none | csv | sqlite | postgres
		Path string `yaml:"path"`
	} `yaml:"archive"`

	DB string `yaml:"db_dsn"`

	OKX struct {
		APIKey     string        `yaml:"api_key"`
		APISecret  string        `yaml:"api_secret"`
		Passphrase string        `yaml:"passphrase"`
		BaseURL    string        `yaml:"base_url"`
		WSURL      string        `yaml:"ws_url"`
		Simulated  bool          `yaml:"simulated"` // x-simulated-trading: 1
		Timeout    time.Duration `yaml:"timeout"`
	} `yaml:"okx"`

	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`

	Service struct {
		Host      string `yaml:"host"`
		AdminPort int    `yaml:"admin_port"`
	} `yaml:"service"`

	Tracing struct {
		Enabled bool   `yaml:"enabled"`
		Host    string `yaml:"host"`
		Port    int    `yaml:"port"`
	} `yaml:"tracing"`

	Log struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("symbol", "BTC-USDT")
	v.SetDefault("timeframe", "1m")
	v.SetDefault("seed_candles", 100)
	v.SetDefault("dry_run", true)
	v.SetDefault("candle_history", 100)

	v.SetDefault("bands.window", 20)
	v.SetDefault("bands.k", 2.0)
	v.SetDefault("bands.deviation", "population")
	v.SetDefault("bands.bandwidth_history", 100)

	v.SetDefault("oscillator.period", 14)
	v.SetDefault("oscillator.history", 100)

	tr := strategy.DefaultConfig()
	v.SetDefault("trigger.oversold", tr.Oversold)
	v.SetDefault("trigger.recovery_low", tr.RecoveryLow)
	v.SetDefault("trigger.recovery_high", tr.RecoveryHigh)
	v.SetDefault("trigger.expansion", tr.Expansion)
	v.SetDefault("trigger.roc_window", tr.ROCWindow)
	v.SetDefault("trigger.roc_period", tr.ROCPeriod)
	v.SetDefault("trigger.max_armed_ticks", tr.MaxArmedTicks)

	rk := risk.DefaultConfig()
	v.SetDefault("risk.capital", 1000.0)
	v.SetDefault("risk.risk_fraction", 0.01)
	v.SetDefault("risk.stop_loss_pct", rk.StopLossPct)
	v.SetDefault("risk.take_profit_margin", rk.TakeProfitMargin)
	v.SetDefault("risk.reward_ratio", rk.RewardRatio)
	v.SetDefault("risk.max_leverage", rk.MaxLeverage)

	v.SetDefault("queues.orders", 16)
	v.SetDefault("queues.archive", 256)
	v.SetDefault("queues.notify", 64)

	v.SetDefault("archive.kind", "csv")
	v.SetDefault("archive.path", "data")
	v.SetDefault("db_dsn", "")

	v.SetDefault("okx.api_key", "")
	v.SetDefault("okx.api_secret", "")
	v.SetDefault("okx.passphrase", "")
	v.SetDefault("okx.base_url", "https://www.okx.com")
	v.SetDefault("okx.ws_url", "wss://ws.okx.com:8443/ws/v5/business")
	v.SetDefault("okx.simulated", false)
	v.SetDefault("okx.timeout", "10s")

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.chat_id", 0)

	v.SetDefault("service.host", "0.0.0.0")
	v.SetDefault("service.admin_port", 8081)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.host", "localhost")
	v.SetDefault("tracing.port", 6831)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// NewConfig читает configs/$CONFIG_FILE (по умолчанию values_local.yaml),
// затем переменные окружения SIGNAL_BOT_* и старые имена (TELEGRAM_TOKEN, DATABASE_DSN, OKX_*).
func NewConfig() (*Config, error) {
	// .env не обязателен
	_ = godotenv.Load()

	name := getenvDefault(configFilePathENV, "values_local.yaml")
	dir := getenvDefault(configDirENV, "configs")
	return Load(filepath.Join(dir, name))
}

// Load читает конкретный файл. Отсутствующий файл, не ошибка, берутся дефолты и env.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, errors.Wrapf(err, "read config %s", path)
			}
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "stat config %s", path)
		}
	}

	bindLegacyEnv(v)

	var cfg Config
	err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func bindLegacyEnv(v *viper.Viper) {
	legacy := map[string]string{
		tokenTelegramENV: "telegram.token",
		databaseDSN:      "db_dsn",
		okxAPIKeyENV:     "okx.api_key",
		okxAPISecretENV:  "okx.api_secret",
		okxPassphraseENV: "okx.passphrase",
	}
	for env, key := range legacy {
		if val := os.Getenv(env); val != "" {
			v.Set(key, val)
		}
	}
	if val := os.Getenv("TELEGRAM_CHAT_ID"); val != "" {
		v.Set("telegram.chat_id", val)
	}
}

func (c *Config) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("config: symbol is required")
	}
	if _, err := timeframeDuration(c.Timeframe); err != nil {
		return err
	}
	if c.SeedCandles < 0 {
		return fmt.Errorf("config: seed_candles %d < 0", c.SeedCandles)
	}
	if _, err := indicator.ParseDeviation(c.Bands.Deviation); err != nil {
		return fmt.Errorf("config: bands: %w", err)
	}
	if c.Bands.Window < 2 {
		return fmt.Errorf("config: bands.window %d < 2", c.Bands.Window)
	}
	if c.Oscillator.Period < 1 {
		return fmt.Errorf("config: oscillator.period %d < 1", c.Oscillator.Period)
	}
	if err := c.Trigger.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.RiskConfig().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.Budget().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch c.Archive.Kind {
	case "", "none", "csv", "sqlite":
	case "postgres":
		if c.DB == "" {
			return fmt.Errorf("config: archive.kind=postgres needs db_dsn or %s", databaseDSN)
		}
	default:
		return fmt.Errorf("config: unknown archive.kind %q", c.Archive.Kind)
	}
	if !c.DryRun && (c.OKX.APIKey == "" || c.OKX.APISecret == "" || c.OKX.Passphrase == "") {
		return fmt.Errorf("config: live trading needs %s, %s, %s", okxAPIKeyENV, okxAPISecretENV, okxPassphraseENV)
	}
	return nil
}

func (c *Config) Budget() risk.Budget {
	return risk.Budget{Capital: c.Risk.Capital, RiskFraction: c.Risk.RiskFraction}
}

func (c *Config) RiskConfig() risk.Config {
	return risk.Config{
		StopLossPct:      c.Risk.StopLossPct,
		TakeProfitMargin: c.Risk.TakeProfitMargin,
		RewardRatio:      c.Risk.RewardRatio,
		MaxLeverage:      c.Risk.MaxLeverage,
	}
}

// TimeframeDuration: длительность свечи, например 1m -> time.Minute.
func (c *Config) TimeframeDuration() time.Duration {
	d, _ := timeframeDuration(c.Timeframe)
	return d
}

// PipelineConfig собирает настройки ядра.
func (c *Config) PipelineConfig() pipeline.Config {
	dev, _ := indicator.ParseDeviation(c.Bands.Deviation)
	return pipeline.Config{
		Symbol: c.Symbol,
		Bands: indicator.BandConfig{
			Window:      c.Bands.Window,
			K:           c.Bands.K,
			Deviation:   dev,
			HistorySize: c.Bands.BandwidthHistory,
		},
		Oscillator: indicator.OscillatorConfig{
			Period:  c.Oscillator.Period,
			History: c.Oscillator.History,
		},
		Trigger:       c.Trigger,
		Risk:          c.RiskConfig(),
		Budget:        c.Budget(),
		CandleHistory: c.CandleHistory,
	}
}

// Dump: итоговые настройки в YAML, секреты скрыты.
func (c *Config) Dump() (string, error) {
	cp := *c
	cp.OKX.APIKey = mask(cp.OKX.APIKey)
	cp.OKX.APISecret = mask(cp.OKX.APISecret)
	cp.OKX.Passphrase = mask(cp.OKX.Passphrase)
	cp.Telegram.Token = mask(cp.Telegram.Token)
	cp.DB = mask(cp.DB)

	bs, err := yaml.Marshal(&cp)
	if err != nil {
		return "", errors.Wrap(err, "marshal config to yaml")
	}
	return string(bs), nil
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}

func timeframeDuration(tf string) (time.Duration, error) {
	switch strings.ToLower(tf) {
	case "1m":
		return time.Minute, nil
	case "3m":
		return 3 * time.Minute, nil
	case "5m":
		return 5 * time.Minute, nil
	case "15m":
		return 15 * time.Minute, nil
	case "30m":
		return 30 * time.Minute, nil
	case "1h":
		return time.Hour, nil
	case "2h":
		return 2 * time.Hour, nil
	case "4h":
		return 4 * time.Hour, nil
	case "1d":
		return 24 * time.Hour, nil
	}
	return 0, fmt.Errorf("config: unsupported timeframe %q", tf)
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
