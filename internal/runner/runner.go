package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"signal_bot/internal/archive"
	"signal_bot/internal/metrics"
	"signal_bot/internal/models"
	"signal_bot/internal/notify"
	"signal_bot/internal/pipeline"
	"signal_bot/internal/strategy"
	"signal_bot/pkg/logger"
	"signal_bot/pkg/tracing"
)

// ErrQueueFull: очередь ордеров переполнена, вход откатывается сразу.
var ErrQueueFull = errors.New("order queue full")

// Feed: источник закрытых свечей.
type Feed interface {
	Stream(ctx context.Context, symbol, timeframe string) <-chan models.Candle
	History(ctx context.Context, symbol, timeframe string, limit int) ([]models.Candle, error)
}

// Venue: исполнитель ордеров.
type Venue interface {
	PlaceOrder(ctx context.Context, in models.OrderIntent) (models.OrderAck, error)
}

// Publisher получает срез состояния после каждого тика (health).
type Publisher interface {
	Publish(st pipeline.Status)
}

type Options struct {
	Symbol      string
	Timeframe   string
	SeedCandles int

	OrderQueue   int
	ArchiveQueue int
	NotifyQueue  int
	// ArchiveTimeout: сколько ждать одну запись в архив.
	ArchiveTimeout time.Duration
}

type archiveItem struct {
	position *models.ClosedPosition
	candle   *models.Candle
}

// Runner владеет конвейером: один цикл тиков, блокирующий I/O на воркерах.
type Runner struct {
	opts Options
	p    *pipeline.Pipeline

	feed     Feed
	venue    Venue
	sink     archive.Sink
	notifier notify.Notifier
	metrics  *metrics.Metrics
	state    Publisher

	orders  chan models.OrderIntent
	results chan models.OrderResult
	archive chan archiveItem
	notes   chan string

	cancel   context.CancelFunc
	loopDone chan struct{}
	wg       sync.WaitGroup
}

func New(
	opts Options,
	p *pipeline.Pipeline,
	feed Feed,
	venue Venue,
	sink archive.Sink,
	n notify.Notifier,
	m *metrics.Metrics,
	state Publisher,
) *Runner {
	if opts.OrderQueue <= 0 {
		opts.OrderQueue = 16
	}
	if opts.ArchiveQueue <= 0 {
		opts.ArchiveQueue = 256
	}
	if opts.NotifyQueue <= 0 {
		opts.NotifyQueue = 64
	}
	if opts.ArchiveTimeout <= 0 {
		opts.ArchiveTimeout = 5 * time.Second
	}
	if sink == nil {
		sink = archive.Nop{}
	}
	if n == nil {
		n = notify.NewLog()
	}
	if m == nil {
		m = metrics.New(prometheus.NewRegistry())
	}
	return &Runner{
		opts:     opts,
		p:        p,
		feed:     feed,
		venue:    venue,
		sink:     sink,
		notifier: n,
		metrics:  m,
		state:    state,
		orders:   make(chan models.OrderIntent, opts.OrderQueue),
		results:  make(chan models.OrderResult, opts.OrderQueue),
		archive:  make(chan archiveItem, opts.ArchiveQueue),
		notes:    make(chan string, opts.NotifyQueue),
		loopDone: make(chan struct{}),
	}
}

// Start прогревает индикаторы историей и запускает цикл.
func (r *Runner) Start(parent context.Context) error {
	ctx, cancel := context.WithCancel(parent)
	r.cancel = cancel

	// воркеры до прогрева: вытесненные при прогреве свечи уходят в архив
	r.wg.Add(3)
	go r.orderWorker(ctx)
	go r.archiveWorker()
	go r.notifyWorker()

	r.seed(ctx)

	// очереди закрывает цикл, поэтому всё до него
	logger.Info("[RUNNER] ▶️ started %s %s", r.opts.Symbol, r.opts.Timeframe)
	r.sendf("📈 Бот запущен: %s %s", r.opts.Symbol, r.opts.Timeframe)

	stream := r.feed.Stream(ctx, r.opts.Symbol, r.opts.Timeframe)
	go r.loop(ctx, stream)
	return nil
}

// Stop останавливает цикл, ждёт текущий тик и доливает очереди.
func (r *Runner) Stop(ctx context.Context) error {
	if r.cancel == nil {
		return nil
	}
	r.cancel()

	done := make(chan struct{})
	go func() {
		<-r.loopDone
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("[RUNNER] ⏹ stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) seed(ctx context.Context) {
	if r.opts.SeedCandles <= 0 {
		r.publish()
		return
	}

	hist, err := r.feed.History(ctx, r.opts.Symbol, r.opts.Timeframe, r.opts.SeedCandles)
	if err != nil {
		// без истории индикаторы прогреются на живых свечах
		logger.Warn("[SEED] history %s: %v", r.opts.Symbol, err)
		r.publish()
		return
	}

	rep, err := r.p.Seed(hist)
	if err != nil {
		logger.Warn("[SEED] %d candles rejected: %v", rep.Rejected, err)
	}
	// архиватор уже читает очередь, ждём место вместо сброса
	for i := range rep.Evicted {
		r.archive <- archiveItem{candle: &rep.Evicted[i]}
	}
	logger.Info("[SEED] applied=%d rejected=%d", rep.Applied, rep.Rejected)
	r.publish()
}

func (r *Runner) loop(ctx context.Context, stream <-chan models.Candle) {
	defer close(r.loopDone)
	// единственный писатель в очереди, закрываем их при выходе
	defer close(r.orders)
	defer close(r.archive)
	defer close(r.notes)

	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-stream:
			if !ok {
				// фид кончился, продолжаем принимать ответы биржи
				stream = nil
				continue
			}
			r.onCandle(ctx, c)
		case res := <-r.results:
			r.onOrderResult(res)
		}
	}
}

func (r *Runner) onCandle(ctx context.Context, c models.Candle) {
	span, _ := tracing.StartSpan(ctx, "on_candle")
	span.SetTag("symbol", r.opts.Symbol)
	span.SetTag("close", c.Close)
	defer span.Finish()

	started := time.Now()
	res, err := r.p.OnCandle(c)
	if err != nil {
		span.SetTag("error", true)
		r.metrics.ObserveRejected(err)
		logger.Warn("[TICK] %s rejected close_time=%s: %v", r.opts.Symbol, c.CloseTime.Format(time.RFC3339), err)
		return
	}
	r.metrics.ObserveTick(res, time.Since(started))

	logger.L().Debug("[TICK]",
		zap.String("symbol", r.opts.Symbol),
		zap.Time("close_time", c.CloseTime),
		zap.Float64("close", c.Close),
		zap.Float64("osc", res.Oscillator),
		zap.Float64("bandwidth", res.Bands.Bandwidth),
		zap.Float64("roc", res.ROC),
		zap.String("state", res.Decision.State.String()),
	)

	if res.Evicted != nil {
		r.enqueueArchive(archiveItem{candle: res.Evicted})
	}

	if res.Closed != nil {
		logger.Info("[EXIT] %s %s @ %.4f pnl=%.4f %s",
			res.Closed.Symbol, res.Closed.Reason, res.Closed.ExitPrice, res.Closed.PnL, res.Closed.Outcome)
		r.enqueueArchive(archiveItem{position: res.Closed})
		r.send(notify.FormatClosed(*res.Closed))
		if res.Close != nil {
			r.submit(*res.Close)
		}
	}

	switch res.Decision.Event {
	case strategy.EventArmed:
		logger.Info("[SIGNAL] %s armed osc=%.2f", r.opts.Symbol, res.Oscillator)
	case strategy.EventExpired:
		logger.Info("[SIGNAL] %s armed window expired", r.opts.Symbol)
	case strategy.EventFired:
		logger.Info("[SIGNAL] %s fired osc=%.2f roc=%.4f", r.opts.Symbol, res.Oscillator, res.ROC)
	}

	switch {
	case res.SizingErr != nil:
		logger.Error("[RISK] %s sizing: %v", r.opts.Symbol, res.SizingErr)
	case res.Degenerate:
		logger.Warn("[RISK] %s degenerate sizing, signal skipped", r.opts.Symbol)
	case res.Opened != nil:
		logger.Info("[ENTRY] %s qty=%.4f @ %.4f SL=%.4f TP=%.4f",
			res.Opened.Symbol, res.Opened.Quantity, res.Opened.EntryPrice, res.Opened.StopLoss, res.Opened.TakeProfit)
		r.send(notify.FormatOpened(*res.Opened))
		r.submit(*res.Open)
	}

	r.publish()
}

// submit не блокирует цикл: при полной очереди ордер сразу считается отклонённым.
func (r *Runner) submit(in models.OrderIntent) {
	select {
	case r.orders <- in:
	default:
		r.metrics.ObserveDrop("orders")
		logger.Error("[ORDER] queue full, %s %s failed", in.Side, in.ClientOrderID)
		r.onOrderResult(models.OrderResult{Intent: in, Err: ErrQueueFull})
	}
}

func (r *Runner) onOrderResult(res models.OrderResult) {
	upd, err := r.p.OnOrderResult(res)
	r.metrics.ObserveOrder(res, upd)

	switch {
	case err != nil:
		logger.Error("[ORDER] %s %s: %v", res.Intent.Side, res.Intent.ClientOrderID, err)
		cause := res.Err
		if cause == nil {
			cause = err
		}
		r.send(notify.FormatRejected(res.Intent.Side, res.Intent.Symbol, cause))
		if upd.RolledBack != nil {
			logger.Warn("[ORDER] %s entry rolled back", upd.RolledBack.Symbol)
		}
	case upd.Acked:
		logger.Info("[ORDER] %s %s acked venue_id=%s", res.Intent.Side, res.Intent.ClientOrderID, res.VenueOrderID)
	}
	r.publish()
}

func (r *Runner) enqueueArchive(it archiveItem) {
	select {
	case r.archive <- it:
	default:
		r.metrics.ObserveDrop("archive")
		logger.Warn("[ARCHIVE] queue full, record dropped")
	}
}

func (r *Runner) send(msg string) {
	select {
	case r.notes <- msg:
	default:
		r.metrics.ObserveDrop("notify")
		logger.Warn("[NOTIFY] queue full, message dropped")
	}
}

func (r *Runner) sendf(format string, args ...any) {
	r.send(fmt.Sprintf(format, args...))
}

func (r *Runner) publish() {
	if r.state != nil {
		r.state.Publish(r.p.Status())
	}
}
