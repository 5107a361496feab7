package replay

import (
	"context"
	"errors"

	"signal_bot/internal/archive"
	"signal_bot/internal/models"
	"signal_bot/internal/pipeline"
	"signal_bot/internal/runner"
	"signal_bot/pkg/logger"
)

// Summary: итог прогона истории.
type Summary struct {
	Candles    int
	Rejected   int
	Signals    int
	Degenerate int
	Rollbacks  int

	Opened []models.Position
	Closed []models.ClosedPosition
	// Open: позиция, оставшаяся открытой в конце.
	Open *models.Position

	Wins   int
	Losses int
	PnL    float64
}

// Run прогоняет свечи через конвейер синхронно: каждый ордер исполняется
// сразу, ответ применяется до следующей свечи. sink может быть nil.
func Run(ctx context.Context, p *pipeline.Pipeline, venue runner.Venue, sink archive.Sink, candles []models.Candle) (Summary, error) {
	if sink == nil {
		sink = archive.Nop{}
	}

	var s Summary
	var errs []error
	for _, c := range candles {
		if err := ctx.Err(); err != nil {
			return s, err
		}

		res, err := p.OnCandle(c)
		if err != nil {
			s.Rejected++
			logger.Warn("[REPLAY] candle %s rejected: %v", c.CloseTime, err)
			continue
		}
		s.Candles++

		if res.Evicted != nil {
			if err := sink.ArchiveCandle(ctx, *res.Evicted); err != nil {
				errs = append(errs, err)
			}
		}

		if res.Closed != nil {
			s.Closed = append(s.Closed, *res.Closed)
			s.PnL += res.Closed.PnL
			if res.Closed.Outcome == models.OutcomeGain {
				s.Wins++
			} else {
				s.Losses++
			}
			if err := sink.ArchivePosition(ctx, *res.Closed); err != nil {
				errs = append(errs, err)
			}
			execute(ctx, p, venue, *res.Close)
		}

		if res.Decision.Fire {
			s.Signals++
		}
		if res.Degenerate {
			s.Degenerate++
		}
		if res.Opened != nil {
			s.Opened = append(s.Opened, *res.Opened)
			if upd := execute(ctx, p, venue, *res.Open); upd.RolledBack != nil {
				s.Rollbacks++
			}
		}
	}

	if st := p.Status(); st.Position != nil {
		s.Open = st.Position
	}
	return s, errors.Join(errs...)
}

func execute(ctx context.Context, p *pipeline.Pipeline, venue runner.Venue, in models.OrderIntent) pipeline.OrderUpdate {
	ack, err := venue.PlaceOrder(ctx, in)
	upd, err := p.OnOrderResult(models.OrderResult{Intent: in, VenueOrderID: ack.VenueOrderID, Err: err})
	if err != nil {
		logger.Warn("[REPLAY] %s %s: %v", in.Side, in.ClientOrderID, err)
	}
	return upd
}
