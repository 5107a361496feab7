package service

import (
	"sync/atomic"
	"time"

	"signal_bot/internal/pipeline"
)

// PositionView: что показываем в /healthz про текущую позицию.
type PositionView struct {
	Symbol     string  `json:"symbol"`
	EntryPrice float64 `json:"entryPrice"`
	Quantity   float64 `json:"quantity"`
	StopLoss   float64 `json:"stopLoss"`
	TakeProfit float64 `json:"takeProfit"`
	Acked      bool    `json:"acked"`
	OpenedUnix int64   `json:"openedUnix"`
}

type State struct {
	ready     atomic.Bool
	startedAt time.Time

	wsConnected  atomic.Bool
	lastTickUnix atomic.Int64 // unix seconds

	trigger  atomic.Value // string
	position atomic.Pointer[PositionView]
}

func NewState() *State {
	s := &State{startedAt: time.Now()}
	s.ready.Store(false)
	s.trigger.Store("IDLE")
	return s
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

func (s *State) SetWSConnected(v bool) { s.wsConnected.Store(v) }
func (s *State) WSConnected() bool     { return s.wsConnected.Load() }

func (s *State) TouchTick(t time.Time) { s.lastTickUnix.Store(t.Unix()) }
func (s *State) LastTick() time.Time {
	u := s.lastTickUnix.Load()
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }

func (s *State) Trigger() string { return s.trigger.Load().(string) }

func (s *State) Position() *PositionView { return s.position.Load() }

// Publish копирует срез состояния конвейера. Вызывается из цикла тиков.
func (s *State) Publish(st pipeline.Status) {
	s.trigger.Store(st.Trigger.String())
	if st.Ready {
		s.SetReady(true)
	}
	if !st.LastClose.IsZero() {
		s.TouchTick(st.LastClose)
	}
	if st.Position == nil {
		s.position.Store(nil)
		return
	}
	p := st.Position
	s.position.Store(&PositionView{
		Symbol:     p.Symbol,
		EntryPrice: p.EntryPrice,
		Quantity:   p.Quantity,
		StopLoss:   p.StopLoss,
		TakeProfit: p.TakeProfit,
		Acked:      p.Acked(),
		OpenedUnix: p.OpenedAt.Unix(),
	})
}
