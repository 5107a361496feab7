package main

import (
	"context"

	"go.uber.org/fx"

	"signal_bot/internal/modules/archive"
	"signal_bot/internal/modules/config"
	"signal_bot/internal/modules/health"
	"signal_bot/internal/modules/okx_client"
	"signal_bot/internal/modules/okx_websocket"
	telegram "signal_bot/internal/modules/telegram_bot"
	"signal_bot/internal/runner"
	"signal_bot/pkg/logger"
	"signal_bot/pkg/tracing"
)

const serviceName = "signal_bot"

// initObservability: логгер и трейсер до старта остальных модулей.
func initObservability(lc fx.Lifecycle, cfg *config.Config) error {
	logger.SetServiceName(serviceName)
	if err := logger.Init(logger.Config{Level: cfg.Log.Level, Development: cfg.Log.Development}); err != nil {
		return err
	}
	if dump, err := cfg.Dump(); err == nil {
		logger.Debug("[CONFIG]\n%s", dump)
	}

	tracing.SetServiceName(serviceName)
	_, closeTracer, err := tracing.InitTracer(tracing.Config{
		Enabled: cfg.Tracing.Enabled,
		Host:    cfg.Tracing.Host,
		Port:    cfg.Tracing.Port,
	})
	if err != nil {
		return err
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			closeTracer()
			logger.Sync()
			return nil
		},
	})
	return nil
}

func main() {
	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
		),
		config.Module(),
		fx.Module("observability", fx.Invoke(initObservability)),
		health.Module(),
		archive.Module(),
		okx_websocket.Module(),
		okx_client.Module(),
		telegram.Module(),
		runner.Module(),
	)
	app.Run()
}
