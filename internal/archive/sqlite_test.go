package archive

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal_bot/internal/models"
)

func TestSQLite_ArchivesPositionsAndCandles(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "archive.db")
	j, err := NewSQLite(path, "BTC-USDT")
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, j.ArchivePosition(ctx, closedPosition()))

	c := models.Candle{OpenTime: open0, CloseTime: close0, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10}
	require.NoError(t, j.ArchiveCandle(ctx, c))
	// повтор той же свечи игнорируется
	require.NoError(t, j.ArchiveCandle(ctx, c))
	require.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var outcome string
	var pnl float64
	require.NoError(t, db.QueryRow(`SELECT outcome, pnl FROM closed_positions WHERE client_order_id = 'sb01'`).Scan(&outcome, &pnl))
	assert.Equal(t, "GAIN", outcome)
	assert.Equal(t, 20.0, pnl)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM candles WHERE symbol = 'BTC-USDT'`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestOpen_SQLiteDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := Open(context.Background(), Options{Kind: "sqlite", Path: dir, Symbol: "ETH-USDT"})
	require.NoError(t, err)
	require.NoError(t, s.ArchiveCandle(context.Background(), models.Candle{
		OpenTime: open0, CloseTime: open0.Add(time.Minute), Open: 1, High: 1, Low: 1, Close: 1,
	}))
	assert.NoError(t, s.Close())
	assert.FileExists(t, filepath.Join(dir, "archive.db"))
}
