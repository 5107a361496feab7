package archive

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"signal_bot/internal/archive"
	"signal_bot/internal/modules/config"
	"signal_bot/pkg/logger"
)

// NewSink открывает архив по archive.kind. Закрывается на OnStop после runner.
func NewSink(lc fx.Lifecycle, ctx context.Context, cfg *config.Config) (archive.Sink, error) {
	sink, err := archive.Open(ctx, archive.Options{
		Kind:   cfg.Archive.Kind,
		Path:   cfg.Archive.Path,
		DSN:    cfg.DB,
		Symbol: cfg.Symbol,
	})
	if err != nil {
		return nil, fmt.Errorf("archive %s: %w", cfg.Archive.Kind, err)
	}
	logger.Info("[ARCHIVE] kind=%s", cfg.Archive.Kind)

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return sink.Close()
		},
	})
	return sink, nil
}

func Module() fx.Option {
	return fx.Module("archive",
		fx.Provide(NewSink),
	)
}
