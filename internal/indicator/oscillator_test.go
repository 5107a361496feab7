package indicator

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOscillator_Bounded(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	o := NewOscillator(OscillatorConfig{Period: 14})
	prev := 100.0
	for i := 0; i < 1000; i++ {
		next := prev * (1 + (rng.Float64()-0.5)*0.1)
		v := o.Update(next, prev)
		require.GreaterOrEqual(t, v, 0.0)
		require.LessOrEqual(t, v, 100.0)
		prev = next
	}
}

func TestOscillator_AllGains(t *testing.T) {
	t.Parallel()

	o := NewOscillator(OscillatorConfig{Period: 14})
	var v float64
	for i := 1; i <= 14; i++ {
		v = o.Update(float64(100+i), float64(100+i-1))
	}
	assert.Equal(t, 100.0, v)
}

func TestOscillator_Conventions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		next, prv float64
		want      float64
	}{
		{"flat window", 10, 10, 50},
		{"single gain", 11, 10, 100},
		{"single loss", 9, 10, 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			o := NewOscillator(OscillatorConfig{})
			assert.Equal(t, tt.want, o.Update(tt.next, tt.prv))
		})
	}
}

func TestOscillator_MixedAverages(t *testing.T) {
	t.Parallel()

	o := NewOscillator(OscillatorConfig{Period: 14})
	o.Update(12, 10) // +2
	v := o.Update(11, 12)
	// avgGain=1, avgLoss=0.5, RS=2
	assert.InDelta(t, 100-100/3.0, v, 1e-9)

	got, ok := o.Value()
	require.True(t, ok)
	assert.Equal(t, v, got)
	assert.Len(t, o.Values(), 2)
}

func TestOscillator_PeriodEviction(t *testing.T) {
	t.Parallel()

	o := NewOscillator(OscillatorConfig{Period: 2})
	o.Update(9, 10) // loss 1
	o.Update(10, 9) // gain 1
	// первая потеря вытеснена
	v := o.Update(11, 10)
	assert.Equal(t, 100.0, v)
}

func TestOscillator_Divergence(t *testing.T) {
	t.Parallel()

	o := NewOscillator(OscillatorConfig{})
	_, ok := o.Value()
	assert.False(t, ok)
	assert.Equal(t, DivergenceNone, o.Divergence(10))

	o.Update(9, 10) // 0
	assert.Equal(t, DivergenceNone, o.Divergence(8), "one sample is not enough")

	o.Update(10, 9) // 50, цена перед обновлением 9
	assert.Equal(t, DivergenceBullish, o.Divergence(8))
	assert.Equal(t, DivergenceNone, o.Divergence(10))

	o2 := NewOscillator(OscillatorConfig{})
	o2.Update(11, 10) // 100
	o2.Update(10, 11) // 50
	assert.Equal(t, DivergenceBearish, o2.Divergence(12))
}
