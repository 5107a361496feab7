package models

import "time"

type PositionStatus string

const (
	PositionOpen   PositionStatus = "OPEN"
	PositionClosed PositionStatus = "CLOSED"
)

type Outcome string

const (
	OutcomeGain Outcome = "GAIN"
	OutcomeLoss Outcome = "LOSS"
)

// ExitReason: почему позиция закрывается.
type ExitReason string

const (
	ExitNone       ExitReason = ""
	ExitStopLoss   ExitReason = "stop_loss"
	ExitTakeProfit ExitReason = "take_profit"
)

// Position: единственная живая позиция (long).
type Position struct {
	Symbol     string
	EntryPrice float64
	Quantity   float64
	StopLoss   float64
	TakeProfit float64
	OpenedAt   time.Time
	Status     PositionStatus

	ClientOrderID string
	// VenueOrderID пустой, пока биржа не подтвердила вход.
	VenueOrderID string
}

// Acked: биржа подтвердила входной ордер.
func (p Position) Acked() bool { return p.VenueOrderID != "" }

// ClosedPosition: запись для архива.
type ClosedPosition struct {
	Symbol     string
	EntryPrice float64
	ExitPrice  float64
	Quantity   float64
	StopLoss   float64
	TakeProfit float64
	PnL        float64
	Outcome    Outcome
	Reason     ExitReason
	OpenedAt   time.Time
	ClosedAt   time.Time

	ClientOrderID string
	VenueOrderID  string
}
