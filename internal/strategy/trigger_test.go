package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal_bot/internal/indicator"
)

func armInputs() Inputs {
	return Inputs{
		Close:        94,
		Bands:        indicator.BandSnapshot{Upper: 110, Middle: 100, Lower: 95, Bandwidth: 15},
		BandsOK:      true,
		Oscillator:   20,
		OscillatorOK: true,
	}
}

func fireInputs() Inputs {
	return Inputs{
		Close:        99,
		Bands:        indicator.BandSnapshot{Upper: 112, Middle: 100, Lower: 88, Bandwidth: 24},
		BandsOK:      true,
		Oscillator:   32,
		OscillatorOK: true,
		ROC:          0.2,
		ROCOK:        true,
		Engulfing:    true,
	}
}

func TestTrigger_TwoStageFiresOnce(t *testing.T) {
	t.Parallel()

	tr := NewTrigger(DefaultConfig())
	require.Equal(t, StateIdle, tr.State())

	// стадия 2 без взвода не стреляет
	d := tr.Evaluate(fireInputs())
	assert.False(t, d.Fire)
	assert.Equal(t, StateIdle, d.State)

	d = tr.Evaluate(armInputs())
	assert.Equal(t, EventArmed, d.Event)
	assert.Equal(t, StateArmed, d.State)
	assert.False(t, d.Fire)

	d = tr.Evaluate(fireInputs())
	assert.True(t, d.Fire)
	assert.Equal(t, EventFired, d.Event)
	assert.Equal(t, StateIdle, d.State)

	d = tr.Evaluate(fireInputs())
	assert.False(t, d.Fire)
	assert.Equal(t, StateIdle, tr.State())
}

func TestTrigger_StageTwoPartialStaysArmed(t *testing.T) {
	t.Parallel()

	mutate := map[string]func(*Inputs){
		"oscillator below band":  func(in *Inputs) { in.Oscillator = 29.9 },
		"oscillator at high end": func(in *Inputs) { in.Oscillator = 35 },
		"roc not expanding":      func(in *Inputs) { in.ROC = 0.15 },
		"roc absent":             func(in *Inputs) { in.ROCOK = false },
		"oscillator absent":      func(in *Inputs) { in.OscillatorOK = false },
		"no engulfing":           func(in *Inputs) { in.Engulfing = false },
	}
	for name, fn := range mutate {
		fn := fn
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			tr := NewTrigger(DefaultConfig())
			tr.Evaluate(armInputs())

			in := fireInputs()
			fn(&in)
			d := tr.Evaluate(in)
			assert.False(t, d.Fire)
			assert.Equal(t, EventNone, d.Event)
			assert.Equal(t, StateArmed, d.State)

			// частичное выполнение не переносится: следующий полный тик стреляет
			d = tr.Evaluate(fireInputs())
			assert.True(t, d.Fire)
		})
	}
}

func TestTrigger_StageOneRequiresBoth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fn   func(*Inputs)
	}{
		{"close at lower band", func(in *Inputs) { in.Close = in.Bands.Lower }},
		{"oscillator above oversold", func(in *Inputs) { in.Oscillator = 25.01 }},
		{"bands absent", func(in *Inputs) { in.BandsOK = false }},
		{"oscillator absent", func(in *Inputs) { in.OscillatorOK = false }},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tr := NewTrigger(DefaultConfig())
			in := armInputs()
			tt.fn(&in)
			d := tr.Evaluate(in)
			assert.Equal(t, EventNone, d.Event)
			assert.Equal(t, StateIdle, tr.State())
		})
	}

	tr := NewTrigger(DefaultConfig())
	in := armInputs()
	in.Oscillator = 25
	assert.Equal(t, EventArmed, tr.Evaluate(in).Event, "oversold bound is inclusive")
}

func TestTrigger_ArmedTimeout(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.MaxArmedTicks = 3
	tr := NewTrigger(cfg)
	tr.Evaluate(armInputs())

	idle := Inputs{Close: 100, OscillatorOK: true, Oscillator: 50}
	assert.Equal(t, EventNone, tr.Evaluate(idle).Event)
	assert.Equal(t, EventNone, tr.Evaluate(idle).Event)
	assert.Equal(t, 2, tr.ArmedTicks())

	d := tr.Evaluate(idle)
	assert.Equal(t, EventExpired, d.Event)
	assert.Equal(t, StateIdle, d.State)

	// после истечения стадия 2 не стреляет
	assert.False(t, tr.Evaluate(fireInputs()).Fire)
}

func TestTrigger_UnboundedArm(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.MaxArmedTicks = 0
	tr := NewTrigger(cfg)
	tr.Evaluate(armInputs())
	for i := 0; i < 500; i++ {
		tr.Evaluate(Inputs{})
	}
	assert.Equal(t, StateArmed, tr.State())
	assert.True(t, tr.Evaluate(fireInputs()).Fire)
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, DefaultConfig().Validate())

	bad := DefaultConfig()
	bad.RecoveryLow, bad.RecoveryHigh = 35, 30
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.ROCPeriod = 0
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.MaxArmedTicks = -1
	assert.Error(t, bad.Validate())
}
