package archive

import (
	"context"

	"github.com/pkg/errors"

	"signal_bot/internal/models"
	"signal_bot/pkg/db"
)

// Postgres пишет архив через общий PgTxManager.
type Postgres struct {
	tx     *db.PgTxManager
	symbol string
}

// NewPostgres создаёт таблицы, если их нет.
func NewPostgres(ctx context.Context, tx *db.PgTxManager, symbol string) (*Postgres, error) {
	if _, err := tx.Conn().Exec(ctx, postgresSchema); err != nil {
		return nil, errors.Wrap(err, "apply postgres schema")
	}
	return &Postgres{tx: tx, symbol: symbol}, nil
}

func (j *Postgres) ArchivePosition(ctx context.Context, p models.ClosedPosition) error {
	return j.tx.RunMaster(ctx, func(ctxTx context.Context, tx db.Transaction) error {
		_, err := tx.Exec(ctxTx, `
			INSERT INTO closed_positions
			(client_order_id, venue_order_id, symbol, entry_price, exit_price, quantity,
			 stop_loss, take_profit, pnl, outcome, reason, opened_at, closed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			ON CONFLICT (client_order_id) DO NOTHING`,
			p.ClientOrderID, p.VenueOrderID, p.Symbol, p.EntryPrice, p.ExitPrice, p.Quantity,
			p.StopLoss, p.TakeProfit, p.PnL, string(p.Outcome), string(p.Reason),
			p.OpenedAt, p.ClosedAt,
		)
		return errors.Wrap(err, "insert closed position")
	})
}

func (j *Postgres) ArchiveCandle(ctx context.Context, c models.Candle) error {
	_, err := j.tx.Conn().Exec(ctx, `
		INSERT INTO candles (symbol, close_time, open_time, open, high, low, close, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (symbol, close_time) DO NOTHING`,
		j.symbol, c.CloseTime, c.OpenTime, c.Open, c.High, c.Low, c.Close, c.Volume,
	)
	return errors.Wrap(err, "insert candle")
}

func (j *Postgres) Close() error {
	j.tx.Close()
	return nil
}
