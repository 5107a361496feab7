package pipeline

import (
	"errors"
	"fmt"
	"time"

	"signal_bot/internal/indicator"
	"signal_bot/internal/models"
	"signal_bot/internal/position"
	"signal_bot/internal/risk"
	"signal_bot/internal/strategy"
	"signal_bot/pkg/id"
)

var (
	// ErrOutOfOrder: close_time не больше последнего принятого.
	ErrOutOfOrder = errors.New("out of order candle")
	// ErrOrderRejected: биржа не приняла ордер.
	ErrOrderRejected = errors.New("order rejected")
)

type Config struct {
	Symbol     string
	Bands      indicator.BandConfig
	Oscillator indicator.OscillatorConfig
	Trigger    strategy.Config
	Risk       risk.Config
	Budget     risk.Budget
	// CandleHistory: сколько последних свечей держать в памяти, 100.
	CandleHistory int
}

func DefaultConfig(symbol string) Config {
	return Config{
		Symbol:        symbol,
		Bands:         indicator.BandConfig{Window: 20, K: 2, HistorySize: 100},
		Oscillator:    indicator.OscillatorConfig{Period: 14, History: 100},
		Trigger:       strategy.DefaultConfig(),
		Risk:          risk.DefaultConfig(),
		CandleHistory: 100,
	}
}

// Option настраивает Pipeline.
type Option func(*Pipeline)

// WithIDFunc подменяет генератор client order id.
func WithIDFunc(fn func() string) Option {
	return func(p *Pipeline) { p.newID = fn }
}

// Result: всё, что произошло на одном тике.
type Result struct {
	Candle models.Candle

	Bands   indicator.BandSnapshot
	BandsOK bool

	Oscillator   float64
	OscillatorOK bool
	Divergence   indicator.Divergence

	ROC    float64
	ROCOK  bool
	ROCErr error

	Decision strategy.Decision

	// Open/Opened заполнены, если триггер сработал и размер ненулевой.
	Open   *models.OrderIntent
	Opened *models.Position
	// Degenerate: сигнал был, но размер нулевой.
	Degenerate bool
	Sizing     risk.Sizing
	SizingErr  error

	// Close/Closed заполнены при выходе по стопу или тейку.
	Close  *models.OrderIntent
	Closed *models.ClosedPosition

	// Evicted: свеча, вытесненная из истории.
	Evicted *models.Candle
}

// Pipeline: обработка одной свечи целиком. Не потокобезопасен: один писатель.
type Pipeline struct {
	cfg Config

	bands     *indicator.BandTracker
	osc       *indicator.Oscillator
	trigger   *strategy.Trigger
	sizer     *risk.Sizer
	positions *position.Manager

	candles   []models.Candle
	lastClose time.Time
	hasLast   bool

	newID func() string
}

func New(cfg Config, opts ...Option) (*Pipeline, error) {
	if cfg.Symbol == "" {
		return nil, errors.New("pipeline: empty symbol")
	}
	if err := cfg.Trigger.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Risk.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Budget.Validate(); err != nil {
		return nil, err
	}
	if cfg.CandleHistory < 2 {
		cfg.CandleHistory = 100
	}
	// история ширины должна вмещать окно ROC
	if need := cfg.Trigger.ROCWindow + cfg.Trigger.ROCPeriod - 1; cfg.Bands.HistorySize < need {
		cfg.Bands.HistorySize = need
	}

	p := &Pipeline{
		cfg:       cfg,
		bands:     indicator.NewBandTracker(cfg.Bands),
		osc:       indicator.NewOscillator(cfg.Oscillator),
		trigger:   strategy.NewTrigger(cfg.Trigger),
		sizer:     risk.NewSizer(cfg.Risk),
		positions: position.NewManager(),
		candles:   make([]models.Candle, 0, cfg.CandleHistory),
		newID:     id.ClientOrderID,
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// admit проверяет свечу до любых изменений состояния.
func (p *Pipeline) admit(c models.Candle) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if p.hasLast && !c.CloseTime.After(p.lastClose) {
		return fmt.Errorf("%w: close_time %s <= last %s",
			ErrOutOfOrder, c.CloseTime.UTC().Format(time.RFC3339), p.lastClose.UTC().Format(time.RFC3339))
	}
	return nil
}

// apply обновляет индикаторы и историю свечей. Вызывается только после admit.
func (p *Pipeline) apply(c models.Candle, res *Result) {
	res.Bands, res.BandsOK = p.bands.Update(c.Close)

	if n := len(p.candles); n > 0 {
		res.Oscillator = p.osc.Update(c.Close, p.candles[n-1].Close)
		res.OscillatorOK = true
		res.Divergence = p.osc.Divergence(c.Close)
	} else {
		res.Divergence = indicator.DivergenceNone
	}

	if len(p.candles) == cap(p.candles) {
		ev := p.candles[0]
		res.Evicted = &ev
		copy(p.candles, p.candles[1:])
		p.candles[len(p.candles)-1] = c
	} else {
		p.candles = append(p.candles, c)
	}

	roc, ok, err := p.bands.BandwidthROC(p.cfg.Trigger.ROCWindow, p.cfg.Trigger.ROCPeriod)
	res.ROC, res.ROCOK, res.ROCErr = roc, ok, err

	p.lastClose, p.hasLast = c.CloseTime, true
}

// OnCandle прогоняет свечу через индикаторы, позицию и триггер.
// Отклонённая свеча (ErrOutOfOrder, models.ErrInvalidCandle) состояние не меняет.
func (p *Pipeline) OnCandle(c models.Candle) (Result, error) {
	if err := p.admit(c); err != nil {
		return Result{Candle: c}, err
	}
	res := Result{Candle: c}
	p.apply(c, &res)

	if p.positions.IsOpen() {
		p.checkExit(c, &res)
	}

	// пока слот занят, триггер не оценивается
	if p.positions.IsOpen() {
		res.Decision = strategy.Decision{Event: strategy.EventNone, State: p.trigger.State()}
		return res, nil
	}

	res.Decision = p.trigger.Evaluate(strategy.Inputs{
		Close:        c.Close,
		Bands:        res.Bands,
		BandsOK:      res.BandsOK,
		Oscillator:   res.Oscillator,
		OscillatorOK: res.OscillatorOK,
		ROC:          res.ROC,
		ROCOK:        res.ROCOK && res.ROCErr == nil,
		Engulfing:    indicator.BullishEngulfing(p.candles),
	})
	if res.Decision.Fire {
		p.enter(c, &res)
	}
	return res, nil
}

func (p *Pipeline) checkExit(c models.Candle, res *Result) {
	reason, err := p.positions.Check(c.Close)
	if err != nil || reason == models.ExitNone {
		return
	}
	closed, err := p.positions.Close(c.Close, reason, c.CloseTime)
	if err != nil {
		return
	}
	res.Closed = &closed
	res.Close = &models.OrderIntent{
		Symbol:        closed.Symbol,
		Side:          models.SideSell,
		Quantity:      closed.Quantity,
		Reason:        reason,
		ClientOrderID: p.newID(),
	}
}

func (p *Pipeline) enter(c models.Candle, res *Result) {
	sz, err := p.sizer.Size(risk.Request{
		Entry:               c.Close,
		TakeProfitReference: res.Bands.Middle,
		Capital:             p.cfg.Budget.Capital,
		RiskFraction:        p.cfg.Budget.RiskFraction,
	})
	res.Sizing = sz
	if err != nil {
		res.SizingErr = err
		return
	}
	if !sz.Tradable() {
		res.Degenerate = true
		return
	}

	cid := p.newID()
	pos, err := p.positions.Open(p.cfg.Symbol, c.Close, sz, c.CloseTime, cid)
	if err != nil {
		res.SizingErr = err
		return
	}
	res.Opened = &pos
	res.Open = &models.OrderIntent{
		Symbol:        pos.Symbol,
		Side:          models.SideBuy,
		Quantity:      pos.Quantity,
		StopLoss:      pos.StopLoss,
		TakeProfit:    pos.TakeProfit,
		ClientOrderID: cid,
	}
}

// SeedReport: итог прогрева историей.
type SeedReport struct {
	Applied  int
	Rejected int
	Evicted  []models.Candle
}

// Seed прогревает индикаторы историей. Триггер и позиция не трогаются,
// ордеров нет. Отклонённые свечи пропускаются, ошибки собираются.
func (p *Pipeline) Seed(candles []models.Candle) (SeedReport, error) {
	var rep SeedReport
	var errs []error
	for _, c := range candles {
		if err := p.admit(c); err != nil {
			rep.Rejected++
			errs = append(errs, err)
			continue
		}
		var res Result
		p.apply(c, &res)
		rep.Applied++
		if res.Evicted != nil {
			rep.Evicted = append(rep.Evicted, *res.Evicted)
		}
	}
	return rep, errors.Join(errs...)
}

// OrderUpdate: что изменилось после ответа биржи.
type OrderUpdate struct {
	Acked      bool
	RolledBack *models.Position
}

// OnOrderResult применяет ответ исполнителя: подтверждение входа или откат.
// Для SELL позиция уже закрыта, ошибка только возвращается.
func (p *Pipeline) OnOrderResult(r models.OrderResult) (OrderUpdate, error) {
	switch r.Intent.Side {
	case models.SideBuy:
		if r.Success() {
			if err := p.positions.Ack(r.Intent.ClientOrderID, r.VenueOrderID); err != nil {
				return OrderUpdate{}, err
			}
			return OrderUpdate{Acked: true}, nil
		}
		rolled, err := p.positions.Rollback(r.Intent.ClientOrderID)
		if err != nil {
			return OrderUpdate{}, err
		}
		return OrderUpdate{RolledBack: &rolled}, rejected(r)
	case models.SideSell:
		if r.Success() {
			return OrderUpdate{Acked: true}, nil
		}
		return OrderUpdate{}, rejected(r)
	}
	return OrderUpdate{}, fmt.Errorf("unknown order side %q", r.Intent.Side)
}

func rejected(r models.OrderResult) error {
	if r.Err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrOrderRejected, r.Intent.Side, r.Intent.ClientOrderID, r.Err)
	}
	return fmt.Errorf("%w: %s %s: empty venue order id", ErrOrderRejected, r.Intent.Side, r.Intent.ClientOrderID)
}

// Status: срез состояния для health/метрик.
type Status struct {
	Symbol       string
	Ready        bool
	LastClose    time.Time
	Trigger      strategy.State
	ArmedTicks   int
	Oscillator   float64
	OscillatorOK bool
	Position     *models.Position
}

func (p *Pipeline) Status() Status {
	st := Status{
		Symbol:     p.cfg.Symbol,
		Ready:      p.bands.Ready(),
		LastClose:  p.lastClose,
		Trigger:    p.trigger.State(),
		ArmedTicks: p.trigger.ArmedTicks(),
	}
	st.Oscillator, st.OscillatorOK = p.osc.Value()
	if pos, ok := p.positions.Position(); ok {
		st.Position = &pos
	}
	return st
}

func (p *Pipeline) Config() Config { return p.cfg }

// Candles: копия истории свечей, от старой к новой.
func (p *Pipeline) Candles() []models.Candle {
	out := make([]models.Candle, len(p.candles))
	copy(out, p.candles)
	return out
}
