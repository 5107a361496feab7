package runner

import (
	"context"

	"signal_bot/internal/models"
	"signal_bot/pkg/logger"
)

func (r *Runner) orderWorker(ctx context.Context) {
	defer r.wg.Done()

	for in := range r.orders {
		ack, err := r.venue.PlaceOrder(ctx, in)
		out := models.OrderResult{Intent: in, VenueOrderID: ack.VenueOrderID, Err: err}

		select {
		case r.results <- out:
		case <-ctx.Done():
			// цикл остановлен, ответ уже некому применить
			logger.Warn("[ORDER] %s %s result dropped on shutdown", in.Side, in.ClientOrderID)
		}
	}
}

func (r *Runner) archiveWorker() {
	defer r.wg.Done()

	for it := range r.archive {
		ctx, cancel := context.WithTimeout(context.Background(), r.opts.ArchiveTimeout)
		var err error
		switch {
		case it.position != nil:
			err = r.sink.ArchivePosition(ctx, *it.position)
		case it.candle != nil:
			err = r.sink.ArchiveCandle(ctx, *it.candle)
		}
		cancel()
		if err != nil {
			logger.Error("[ARCHIVE] %v", err)
		}
	}
}

func (r *Runner) notifyWorker() {
	defer r.wg.Done()

	for msg := range r.notes {
		r.notifier.Send(msg)
	}
}
