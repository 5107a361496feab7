package runner

import (
	"context"

	"go.uber.org/fx"

	"signal_bot/internal/archive"
	"signal_bot/internal/metrics"
	"signal_bot/internal/modules/config"
	health "signal_bot/internal/modules/health/service"
	okxws "signal_bot/internal/modules/okx_websocket/service"
	"signal_bot/internal/notify"
	"signal_bot/internal/pipeline"
)

func NewFromConfig(
	cfg *config.Config,
	feed *okxws.Client,
	venue Venue,
	sink archive.Sink,
	n notify.Notifier,
	m *metrics.Metrics,
	st *health.State,
) (*Runner, error) {
	p, err := pipeline.New(cfg.PipelineConfig())
	if err != nil {
		return nil, err
	}
	return New(Options{
		Symbol:       cfg.Symbol,
		Timeframe:    cfg.Timeframe,
		SeedCandles:  cfg.SeedCandles,
		OrderQueue:   cfg.Queues.Orders,
		ArchiveQueue: cfg.Queues.Archive,
		NotifyQueue:  cfg.Queues.Notify,
	}, p, feed, venue, sink, n, m, st), nil
}

func Module() fx.Option {
	return fx.Module("runner",
		fx.Provide(
			NewFromConfig, // *Runner
		),
		fx.Invoke(func(lc fx.Lifecycle, r *Runner, ctx context.Context) {
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					// ctx приложения, а не OnStart: цикл живёт до OnStop
					return r.Start(ctx)
				},
				OnStop: func(stopCtx context.Context) error {
					return r.Stop(stopCtx)
				},
			})
		}),
	)
}
