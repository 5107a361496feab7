package okx_client

import (
	"go.uber.org/fx"

	"signal_bot/internal/modules/config"
	"signal_bot/internal/modules/okx_client/service"
	"signal_bot/internal/runner"
	"signal_bot/pkg/logger"
)

// NewVenue: при dry_run бумажное исполнение, иначе OKX REST.
func NewVenue(cfg *config.Config) runner.Venue {
	if cfg.DryRun {
		logger.Info("[OKX] dry run: paper venue")
		return service.NewPaper()
	}
	return service.NewClient(service.OptionsFromConfig(cfg))
}

func Module() fx.Option {
	return fx.Module("okx_client",
		fx.Provide(NewVenue),
	)
}
