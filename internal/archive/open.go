package archive

import (
	"context"
	"fmt"
	"path/filepath"

	"signal_bot/pkg/db"
)

type Options struct {
	Kind   string // none | csv | sqlite | postgres
	Path   string // каталог для csv, файл или каталог для sqlite
	DSN    string
	Symbol string
}

// Open создаёт sink по виду из конфига.
func Open(ctx context.Context, o Options) (Sink, error) {
	switch o.Kind {
	case "", "none":
		return Nop{}, nil
	case "csv":
		return NewCSV(o.Path)
	case "sqlite":
		path := o.Path
		if filepath.Ext(path) == "" {
			path = filepath.Join(path, "archive.db")
		}
		return NewSQLite(path, o.Symbol)
	case "postgres":
		pool, err := db.NewPool(ctx, db.PoolConfig{DSN: o.DSN})
		if err != nil {
			return nil, fmt.Errorf("failed to create poolMaster: %w", err)
		}
		sink, err := NewPostgres(ctx, db.NewPgTxManager(pool), o.Symbol)
		if err != nil {
			pool.Close()
			return nil, err
		}
		return sink, nil
	}
	return nil, fmt.Errorf("unknown archive kind %q", o.Kind)
}
