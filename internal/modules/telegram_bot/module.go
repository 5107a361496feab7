package telegram

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"

	"signal_bot/internal/modules/config"
	health "signal_bot/internal/modules/health/service"
	"signal_bot/internal/notify"
	"signal_bot/pkg/logger"
)

// StatusText: ответ на /status по снимку health.
func StatusText(cfg *config.Config, st *health.State) string {
	s := fmt.Sprintf("📊 %s %s\nТриггер: %s\nWS: %v\n", cfg.Symbol, cfg.Timeframe, st.Trigger(), st.WSConnected())
	if t := st.LastTick(); !t.IsZero() {
		s += fmt.Sprintf("Последняя свеча: %s\n", t.UTC().Format(time.RFC3339))
	}
	p := st.Position()
	if p == nil {
		return s + "📭 Позиции нет"
	}
	return s + fmt.Sprintf("Позиция: %v @ %v SL=%v TP=%v acked=%v", p.Quantity, p.EntryPrice, p.StopLoss, p.TakeProfit, p.Acked)
}

// NewNotifier: Telegram, если задан токен, иначе лог.
func NewNotifier(lc fx.Lifecycle, cfg *config.Config, st *health.State) (notify.Notifier, error) {
	if cfg.Telegram.Token == "" || cfg.Telegram.ChatID == 0 {
		logger.Info("[TG] token or chat_id empty, notifications go to log")
		return notify.NewLog(), nil
	}

	t, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID, func() string {
		return StatusText(cfg, st)
	})
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// ctx OnStart живёт только на время старта
			t.Start(context.Background())
			return nil
		},
		OnStop: func(ctx context.Context) error {
			t.Stop()
			return nil
		},
	})
	return t, nil
}

func Module() fx.Option {
	return fx.Module("telegram",
		fx.Provide(NewNotifier),
	)
}
