package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"signal_bot/internal/models"
	"signal_bot/pkg/logger"
)

// Fill: исполненный бумажный ордер.
type Fill struct {
	OrderID  string
	Intent   models.OrderIntent
	FilledAt time.Time
}

// Paper исполняет всё сразу, без биржи. dry_run и replay.
type Paper struct {
	mu    sync.Mutex
	seq   int64
	fills []Fill
	now   func() time.Time

	// Reject, если задан, может отклонить ордер (тесты).
	Reject func(models.OrderIntent) error
}

func NewPaper() *Paper {
	return &Paper{now: time.Now}
}

func (p *Paper) PlaceOrder(ctx context.Context, in models.OrderIntent) (models.OrderAck, error) {
	if err := ctx.Err(); err != nil {
		return models.OrderAck{}, err
	}
	if _, err := buildOrderBody(in); err != nil {
		return models.OrderAck{}, err
	}
	if p.Reject != nil {
		if err := p.Reject(in); err != nil {
			return models.OrderAck{}, err
		}
	}

	p.mu.Lock()
	p.seq++
	id := fmt.Sprintf("PAPER-%d", p.seq)
	p.fills = append(p.fills, Fill{OrderID: id, Intent: in, FilledAt: p.now()})
	p.mu.Unlock()

	logger.Info("[PAPER] %s %s qty=%v sl=%v tp=%v reason=%s order=%s",
		in.Side, in.Symbol, in.Quantity, in.StopLoss, in.TakeProfit, in.Reason, id)
	return models.OrderAck{VenueOrderID: id}, nil
}

// Fills: копия журнала исполнений.
func (p *Paper) Fills() []Fill {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Fill, len(p.fills))
	copy(out, p.fills)
	return out
}
