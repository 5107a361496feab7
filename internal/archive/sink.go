package archive

import (
	"context"

	"signal_bot/internal/models"
)

// Sink: журнал закрытых позиций и вытесненных свечей. Только добавление.
type Sink interface {
	ArchivePosition(ctx context.Context, p models.ClosedPosition) error
	ArchiveCandle(ctx context.Context, c models.Candle) error
	Close() error
}

// Nop: архив выключен.
type Nop struct{}

func (Nop) ArchivePosition(context.Context, models.ClosedPosition) error { return nil }
func (Nop) ArchiveCandle(context.Context, models.Candle) error           { return nil }
func (Nop) Close() error                                                  { return nil }
