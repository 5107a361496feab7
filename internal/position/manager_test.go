package position

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal_bot/internal/models"
	"signal_bot/internal/risk"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func sizing() risk.Sizing {
	return risk.Sizing{Quantity: 5, StopLoss: 98, TakeProfit: 104}
}

func openAcked(t *testing.T) *Manager {
	t.Helper()
	m := NewManager()
	_, err := m.Open("BTC-USDT", 100, sizing(), t0, "cid-1")
	require.NoError(t, err)
	require.NoError(t, m.Ack("cid-1", "venue-1"))
	return m
}

func TestManager_SinglePosition(t *testing.T) {
	t.Parallel()

	m := NewManager()
	first, err := m.Open("BTC-USDT", 100, sizing(), t0, "cid-1")
	require.NoError(t, err)
	assert.Equal(t, models.PositionOpen, first.Status)

	_, err = m.Open("BTC-USDT", 90, risk.Sizing{Quantity: 1, StopLoss: 80, TakeProfit: 95}, t0.Add(time.Minute), "cid-2")
	assert.ErrorIs(t, err, ErrPositionOpen)

	live, ok := m.Position()
	require.True(t, ok)
	assert.Equal(t, first, live)
}

func TestManager_OpenRejectsUntradable(t *testing.T) {
	t.Parallel()

	m := NewManager()
	_, err := m.Open("BTC-USDT", 100, risk.Sizing{Degenerate: true}, t0, "cid")
	assert.ErrorIs(t, err, ErrInvalidSizing)
	assert.False(t, m.IsOpen())
}

func TestManager_Check(t *testing.T) {
	t.Parallel()

	tests := []struct {
		price float64
		want  models.ExitReason
	}{
		{97, models.ExitStopLoss},
		{98, models.ExitStopLoss},
		{100, models.ExitNone},
		{104, models.ExitTakeProfit},
		{110, models.ExitTakeProfit},
	}
	m := openAcked(t)
	for _, tt := range tests {
		got, err := m.Check(tt.price)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "price %.2f", tt.price)
	}
}

func TestManager_CheckBeforeAck(t *testing.T) {
	t.Parallel()

	m := NewManager()
	_, err := m.Open("BTC-USDT", 100, sizing(), t0, "cid-1")
	require.NoError(t, err)

	got, err := m.Check(50)
	require.NoError(t, err)
	assert.Equal(t, models.ExitNone, got)
}

func TestManager_EmptySlot(t *testing.T) {
	t.Parallel()

	m := NewManager()
	_, err := m.Check(100)
	assert.ErrorIs(t, err, ErrNoPosition)
	_, err = m.Close(100, models.ExitStopLoss, t0)
	assert.ErrorIs(t, err, ErrNoPosition)
	assert.ErrorIs(t, m.Ack("x", "y"), ErrNoPosition)
	_, err = m.Rollback("x")
	assert.ErrorIs(t, err, ErrNoPosition)
}

func TestManager_Close(t *testing.T) {
	t.Parallel()

	m := openAcked(t)
	closed, err := m.Close(104, models.ExitTakeProfit, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.InDelta(t, 20, closed.PnL, 1e-9)
	assert.Equal(t, models.OutcomeGain, closed.Outcome)
	assert.Equal(t, "venue-1", closed.VenueOrderID)
	assert.False(t, m.IsOpen())

	m = openAcked(t)
	closed, err = m.Close(100, models.ExitStopLoss, t0)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeLoss, closed.Outcome, "flat exit is a loss")
}

func TestManager_AckAndRollback(t *testing.T) {
	t.Parallel()

	m := NewManager()
	_, err := m.Open("BTC-USDT", 100, sizing(), t0, "cid-1")
	require.NoError(t, err)

	assert.ErrorIs(t, m.Ack("other", "v"), ErrUnknownOrder)
	_, err = m.Rollback("other")
	assert.ErrorIs(t, err, ErrUnknownOrder)
	assert.True(t, m.IsOpen())

	p, err := m.Rollback("cid-1")
	require.NoError(t, err)
	assert.Equal(t, "cid-1", p.ClientOrderID)
	assert.False(t, m.IsOpen())

	// слот снова свободен
	_, err = m.Open("BTC-USDT", 100, sizing(), t0, "cid-2")
	assert.NoError(t, err)
}
