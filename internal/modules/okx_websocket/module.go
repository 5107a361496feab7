package okx_websocket

import (
	"go.uber.org/fx"

	"signal_bot/internal/modules/config"
	health "signal_bot/internal/modules/health/service"
	"signal_bot/internal/modules/okx_websocket/service"
)

// Module поднимает клиента рыночных данных OKX.
func Module() fx.Option {
	return fx.Module("okx_websocket",
		fx.Provide(
			func(cfg *config.Config, st *health.State) *service.Client {
				return service.NewClient(service.OptionsFromConfig(cfg), st)
			},
		),
	)
}
