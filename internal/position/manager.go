package position

import (
	"errors"
	"fmt"
	"math"
	"time"

	"signal_bot/internal/models"
	"signal_bot/internal/risk"
)

var (
	// ErrPositionOpen: попытка открыть вторую позицию.
	ErrPositionOpen = errors.New("position already open")
	// ErrNoPosition: операция над пустым слотом.
	ErrNoPosition = errors.New("no open position")
	// ErrUnknownOrder: подтверждение/откат не для текущей позиции.
	ErrUnknownOrder = errors.New("order does not match open position")
	// ErrInvalidSizing: нулевой или вырожденный размер.
	ErrInvalidSizing = errors.New("invalid sizing")
)

// Manager держит не больше одной позиции. Один писатель.
type Manager struct {
	pos *models.Position
}

func NewManager() *Manager {
	return &Manager{}
}

// Position возвращает копию живой позиции.
func (m *Manager) Position() (models.Position, bool) {
	if m.pos == nil {
		return models.Position{}, false
	}
	return *m.pos, true
}

func (m *Manager) IsOpen() bool { return m.pos != nil }

func (m *Manager) Open(symbol string, entry float64, sizing risk.Sizing, openedAt time.Time, clientOrderID string) (models.Position, error) {
	if m.pos != nil {
		return models.Position{}, fmt.Errorf("%w: %s %s", ErrPositionOpen, m.pos.Symbol, m.pos.ClientOrderID)
	}
	if !sizing.Tradable() || math.IsNaN(sizing.Quantity) || entry <= 0 {
		return models.Position{}, fmt.Errorf("%w: qty=%.8f entry=%.8f", ErrInvalidSizing, sizing.Quantity, entry)
	}

	m.pos = &models.Position{
		Symbol:        symbol,
		EntryPrice:    entry,
		Quantity:      sizing.Quantity,
		StopLoss:      sizing.StopLoss,
		TakeProfit:    sizing.TakeProfit,
		OpenedAt:      openedAt,
		Status:        models.PositionOpen,
		ClientOrderID: clientOrderID,
	}
	return *m.pos, nil
}

// Ack записывает id биржевого ордера для входа.
func (m *Manager) Ack(clientOrderID, venueOrderID string) error {
	if m.pos == nil {
		return ErrNoPosition
	}
	if m.pos.ClientOrderID != clientOrderID {
		return fmt.Errorf("%w: %s", ErrUnknownOrder, clientOrderID)
	}
	m.pos.VenueOrderID = venueOrderID
	return nil
}

// Rollback снимает позицию, вход которой биржа отклонила.
func (m *Manager) Rollback(clientOrderID string) (models.Position, error) {
	if m.pos == nil {
		return models.Position{}, ErrNoPosition
	}
	if m.pos.ClientOrderID != clientOrderID {
		return models.Position{}, fmt.Errorf("%w: %s", ErrUnknownOrder, clientOrderID)
	}
	p := *m.pos
	m.pos = nil
	return p, nil
}

// Check сравнивает цену со стопом и тейком.
// Позиция без подтверждения биржи не закрывается.
func (m *Manager) Check(price float64) (models.ExitReason, error) {
	if m.pos == nil {
		return models.ExitNone, ErrNoPosition
	}
	if !m.pos.Acked() {
		return models.ExitNone, nil
	}
	switch {
	case price <= m.pos.StopLoss:
		return models.ExitStopLoss, nil
	case price >= m.pos.TakeProfit:
		return models.ExitTakeProfit, nil
	}
	return models.ExitNone, nil
}

// Close переводит слот OPEN -> EMPTY и возвращает итог сделки.
func (m *Manager) Close(exitPrice float64, reason models.ExitReason, closedAt time.Time) (models.ClosedPosition, error) {
	if m.pos == nil {
		return models.ClosedPosition{}, ErrNoPosition
	}
	p := m.pos
	pnl := (exitPrice - p.EntryPrice) * p.Quantity
	outcome := models.OutcomeLoss
	if pnl > 0 {
		outcome = models.OutcomeGain
	}

	closed := models.ClosedPosition{
		Symbol:        p.Symbol,
		EntryPrice:    p.EntryPrice,
		ExitPrice:     exitPrice,
		Quantity:      p.Quantity,
		StopLoss:      p.StopLoss,
		TakeProfit:    p.TakeProfit,
		PnL:           pnl,
		Outcome:       outcome,
		Reason:        reason,
		OpenedAt:      p.OpenedAt,
		ClosedAt:      closedAt,
		ClientOrderID: p.ClientOrderID,
		VenueOrderID:  p.VenueOrderID,
	}
	m.pos = nil
	return closed, nil
}
