package archive

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"signal_bot/internal/models"
)

type SQLite struct {
	db     *sql.DB
	symbol string
}

func NewSQLite(path, symbol string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open sqlite %s", path)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "apply sqlite schema")
	}
	return &SQLite{db: db, symbol: symbol}, nil
}

func (j *SQLite) ArchivePosition(ctx context.Context, p models.ClosedPosition) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO closed_positions
		(client_order_id, venue_order_id, symbol, entry_price, exit_price, quantity,
		 stop_loss, take_profit, pnl, outcome, reason, opened_at, closed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ClientOrderID, p.VenueOrderID, p.Symbol, p.EntryPrice, p.ExitPrice, p.Quantity,
		p.StopLoss, p.TakeProfit, p.PnL, string(p.Outcome), string(p.Reason),
		p.OpenedAt.UTC(), p.ClosedAt.UTC(),
	)
	return errors.Wrap(err, "insert closed position")
}

func (j *SQLite) ArchiveCandle(ctx context.Context, c models.Candle) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO candles
		(symbol, close_time, open_time, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		j.symbol, c.CloseTime.UTC(), c.OpenTime.UTC(), c.Open, c.High, c.Low, c.Close, c.Volume,
	)
	return errors.Wrap(err, "insert candle")
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
