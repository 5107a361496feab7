package archive

// sqliteSchema: таблицы архива для SQLite.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS closed_positions (
	client_order_id TEXT PRIMARY KEY,
	venue_order_id TEXT NOT NULL,
	symbol TEXT NOT NULL,
	entry_price REAL NOT NULL,
	exit_price REAL NOT NULL,
	quantity REAL NOT NULL,
	stop_loss REAL NOT NULL,
	take_profit REAL NOT NULL,
	pnl REAL NOT NULL,
	outcome TEXT NOT NULL,
	reason TEXT NOT NULL,
	opened_at DATETIME NOT NULL,
	closed_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS candles (
	symbol TEXT NOT NULL,
	close_time DATETIME NOT NULL,
	open_time DATETIME NOT NULL,
	open REAL NOT NULL,
	high REAL NOT NULL,
	low REAL NOT NULL,
	close REAL NOT NULL,
	volume REAL NOT NULL,
	PRIMARY KEY (symbol, close_time)
);

CREATE INDEX IF NOT EXISTS idx_closed_positions_closed_at ON closed_positions(closed_at);
`

// postgresSchema: то же для Postgres.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS closed_positions (
	client_order_id TEXT PRIMARY KEY,
	venue_order_id  TEXT NOT NULL,
	symbol          TEXT NOT NULL,
	entry_price     DOUBLE PRECISION NOT NULL,
	exit_price      DOUBLE PRECISION NOT NULL,
	quantity        DOUBLE PRECISION NOT NULL,
	stop_loss       DOUBLE PRECISION NOT NULL,
	take_profit     DOUBLE PRECISION NOT NULL,
	pnl             DOUBLE PRECISION NOT NULL,
	outcome         TEXT NOT NULL,
	reason          TEXT NOT NULL,
	opened_at       TIMESTAMPTZ NOT NULL,
	closed_at       TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS candles (
	symbol     TEXT NOT NULL,
	close_time TIMESTAMPTZ NOT NULL,
	open_time  TIMESTAMPTZ NOT NULL,
	open       DOUBLE PRECISION NOT NULL,
	high       DOUBLE PRECISION NOT NULL,
	low        DOUBLE PRECISION NOT NULL,
	close      DOUBLE PRECISION NOT NULL,
	volume     DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (symbol, close_time)
);
`
