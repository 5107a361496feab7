package notify

import (
	"fmt"
	"strconv"

	"signal_bot/internal/models"
)

func f(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func FormatOpened(p models.Position) string {
	return fmt.Sprintf(
		"🟢 Вход %s\n"+
			"Цена: %s\n"+
			"Объём: %s\n"+
			"SL: %s\n"+
			"TP: %s",
		p.Symbol, f(p.EntryPrice), f(p.Quantity), f(p.StopLoss), f(p.TakeProfit),
	)
}

func FormatClosed(c models.ClosedPosition) string {
	emoji := "✅"
	if c.Outcome == models.OutcomeLoss {
		emoji = "❌"
	}
	return fmt.Sprintf(
		"%s Выход %s (%s)\n"+
			"Вход: %s → выход: %s\n"+
			"PnL: %.4f",
		emoji, c.Symbol, c.Reason, f(c.EntryPrice), f(c.ExitPrice), c.PnL,
	)
}

func FormatRejected(side models.Side, symbol string, err error) string {
	return fmt.Sprintf("❗️ Ордер %s %s отклонён: %v", side, symbol, err)
}
