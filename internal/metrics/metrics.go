package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"signal_bot/internal/models"
	"signal_bot/internal/pipeline"
	"signal_bot/internal/strategy"
)

const namespace = "signal_bot"

// Metrics: счётчики цикла тиков.
type Metrics struct {
	CandlesTotal    prometheus.Counter
	CandlesRejected *prometheus.CounterVec // reason
	TriggerEvents   *prometheus.CounterVec // event
	OrdersTotal     *prometheus.CounterVec // side, status
	PositionsClosed *prometheus.CounterVec // outcome
	QueueDrops      *prometheus.CounterVec // queue
	DegenerateTotal prometheus.Counter

	TriggerArmed prometheus.Gauge
	PositionOpen prometheus.Gauge
	RealizedPnL  prometheus.Gauge
	Oscillator   prometheus.Gauge
	Bandwidth    prometheus.Gauge

	TickDuration prometheus.Histogram
}

// New создаёт метрики и регистрирует их в reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CandlesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candles_total",
			Help:      "Candles applied to the pipeline",
		}),
		CandlesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candles_rejected_total",
			Help:      "Candles dropped before any state change",
		}, []string{"reason"}),
		TriggerEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trigger_events_total",
			Help:      "Trigger transitions (armed, fired, expired)",
		}, []string{"event"}),
		OrdersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_total",
			Help:      "Order placements by side and status",
		}, []string{"side", "status"}),
		PositionsClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "positions_closed_total",
			Help:      "Closed positions by outcome",
		}, []string{"outcome"}),
		QueueDrops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queue_drops_total",
			Help:      "Items dropped because a worker queue was full",
		}, []string{"queue"}),
		DegenerateTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "degenerate_sizing_total",
			Help:      "Signals skipped because sizing produced zero quantity",
		}),
		TriggerArmed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "trigger_armed",
			Help:      "1 while the trigger is armed",
		}),
		PositionOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "position_open",
			Help:      "1 while a position is open",
		}),
		RealizedPnL: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "realized_pnl",
			Help:      "Sum of closed position PnL in quote currency",
		}),
		Oscillator: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "oscillator_value",
			Help:      "Last oscillator value",
		}),
		Bandwidth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "band_width",
			Help:      "Last band width (upper - lower)",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "OnCandle processing latency",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}),
	}

	reg.MustRegister(
		m.CandlesTotal,
		m.CandlesRejected,
		m.TriggerEvents,
		m.OrdersTotal,
		m.PositionsClosed,
		m.QueueDrops,
		m.DegenerateTotal,
		m.TriggerArmed,
		m.PositionOpen,
		m.RealizedPnL,
		m.Oscillator,
		m.Bandwidth,
		m.TickDuration,
	)
	return m
}

// ObserveTick учитывает результат одной свечи.
func (m *Metrics) ObserveTick(res pipeline.Result, took time.Duration) {
	m.CandlesTotal.Inc()
	m.TickDuration.Observe(took.Seconds())

	if res.OscillatorOK {
		m.Oscillator.Set(res.Oscillator)
	}
	if res.BandsOK {
		m.Bandwidth.Set(res.Bands.Bandwidth)
	}
	if ev := res.Decision.Event; ev != "" && ev != strategy.EventNone {
		m.TriggerEvents.WithLabelValues(string(ev)).Inc()
	}
	if res.Decision.State == strategy.StateArmed {
		m.TriggerArmed.Set(1)
	} else {
		m.TriggerArmed.Set(0)
	}
	if res.Degenerate {
		m.DegenerateTotal.Inc()
	}
	if res.Closed != nil {
		m.PositionsClosed.WithLabelValues(string(res.Closed.Outcome)).Inc()
		m.RealizedPnL.Add(res.Closed.PnL)
		m.PositionOpen.Set(0)
	}
	if res.Opened != nil {
		m.PositionOpen.Set(1)
	}
}

// ObserveRejected: свеча отброшена до изменения состояния.
func (m *Metrics) ObserveRejected(err error) {
	reason := "invalid"
	if errors.Is(err, pipeline.ErrOutOfOrder) {
		reason = "out_of_order"
	}
	m.CandlesRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveOrder(r models.OrderResult, upd pipeline.OrderUpdate) {
	status := "ok"
	if !r.Success() {
		status = "rejected"
	}
	m.OrdersTotal.WithLabelValues(string(r.Intent.Side), status).Inc()
	if upd.RolledBack != nil {
		m.PositionOpen.Set(0)
	}
}

func (m *Metrics) ObserveDrop(queue string) {
	m.QueueDrops.WithLabelValues(queue).Inc()
}
