package strategy

import (
	"fmt"

	"signal_bot/internal/indicator"
)

type State int

const (
	StateIdle State = iota
	StateArmed
)

func (s State) String() string {
	if s == StateArmed {
		return "ARMED"
	}
	return "IDLE"
}

// Event: что произошло с триггером на тике.
type Event string

const (
	EventNone    Event = "none"
	EventArmed   Event = "armed"
	EventFired   Event = "fired"
	EventExpired Event = "expired"
)

// Config: пороги двухступенчатого входа.
type Config struct {
	Oversold     float64 `yaml:"oversold"`
	RecoveryLow  float64 `yaml:"recovery_low"`
	RecoveryHigh float64 `yaml:"recovery_high"`
	Expansion    float64 `yaml:"expansion"`

	ROCWindow int `yaml:"roc_window"`
	ROCPeriod int `yaml:"roc_period"`

	// MaxArmedTicks: сколько тиков без выстрела держать ARMED, 0, без ограничения.
	MaxArmedTicks int `yaml:"max_armed_ticks"`
}

func DefaultConfig() Config {
	return Config{
		Oversold:      25,
		RecoveryLow:   30,
		RecoveryHigh:  35,
		Expansion:     0.15,
		ROCWindow:     5,
		ROCPeriod:     2,
		MaxArmedTicks: 30,
	}
}

func (c Config) Validate() error {
	switch {
	case c.Oversold < 0 || c.Oversold > 100:
		return fmt.Errorf("trigger: oversold %.2f out of [0,100]", c.Oversold)
	case c.RecoveryLow >= c.RecoveryHigh:
		return fmt.Errorf("trigger: recovery band [%.2f,%.2f) is empty", c.RecoveryLow, c.RecoveryHigh)
	case c.ROCWindow < 1 || c.ROCPeriod < 1:
		return fmt.Errorf("trigger: roc window %d / period %d must be >= 1", c.ROCWindow, c.ROCPeriod)
	case c.MaxArmedTicks < 0:
		return fmt.Errorf("trigger: max armed ticks %d < 0", c.MaxArmedTicks)
	}
	return nil
}

// Inputs: всё, что триггер видит на одном тике. *OK=false значит "нет значения".
type Inputs struct {
	Close float64

	Bands   indicator.BandSnapshot
	BandsOK bool

	Oscillator   float64
	OscillatorOK bool

	ROC   float64
	ROCOK bool

	Engulfing bool
}

type Decision struct {
	Fire  bool
	Event Event
	State State
}

// Trigger: защёлка IDLE→ARMED→(fire)→IDLE. Один писатель, без блокировок.
type Trigger struct {
	cfg Config

	state      State
	armedTicks int
}

func NewTrigger(cfg Config) *Trigger {
	return &Trigger{cfg: cfg}
}

func (t *Trigger) Config() Config { return t.cfg }

func (t *Trigger) State() State { return t.state }

// ArmedTicks: сколько тиков прошло с взвода без выстрела.
func (t *Trigger) ArmedTicks() int { return t.armedTicks }

func (t *Trigger) Reset() {
	t.state, t.armedTicks = StateIdle, 0
}

func (t *Trigger) Evaluate(in Inputs) Decision {
	if t.state == StateIdle {
		if t.stageOne(in) {
			t.state, t.armedTicks = StateArmed, 0
			return Decision{Event: EventArmed, State: t.state}
		}
		return Decision{Event: EventNone, State: t.state}
	}

	if t.stageTwo(in) {
		t.Reset()
		return Decision{Fire: true, Event: EventFired, State: t.state}
	}

	t.armedTicks++
	if t.cfg.MaxArmedTicks > 0 && t.armedTicks >= t.cfg.MaxArmedTicks {
		t.Reset()
		return Decision{Event: EventExpired, State: t.state}
	}
	return Decision{Event: EventNone, State: t.state}
}

// stageOne: закрытие под нижней границей и перепроданность.
func (t *Trigger) stageOne(in Inputs) bool {
	if !in.BandsOK || !in.OscillatorOK {
		return false
	}
	return in.Close < in.Bands.Lower && in.Oscillator <= t.cfg.Oversold
}

// stageTwo: осциллятор в зоне восстановления, канал расширяется, есть поглощение.
// Все три условия на одном тике.
func (t *Trigger) stageTwo(in Inputs) bool {
	if !in.OscillatorOK || !in.ROCOK {
		return false
	}
	if in.Oscillator < t.cfg.RecoveryLow || in.Oscillator >= t.cfg.RecoveryHigh {
		return false
	}
	return in.ROC > t.cfg.Expansion && in.Engulfing
}

func (t *Trigger) Dump() string {
	return fmt.Sprintf("state=%s armed_ticks=%d/%d", t.state, t.armedTicks, t.cfg.MaxArmedTicks)
}
