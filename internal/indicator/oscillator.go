package indicator

import "math"

// Divergence: расхождение цены и осциллятора на последнем шаге.
type Divergence string

const (
	DivergenceNone    Divergence = "none"
	DivergenceBullish Divergence = "bullish"
	DivergenceBearish Divergence = "bearish"
)

type OscillatorConfig struct {
	Period  int // длина очередей приростов/потерь, обычно 14
	History int // сколько значений хранить для проверки дивергенции
}

// Oscillator: RSI по простым средним приростов и потерь.
// Значение доступно с первого обновления, прогрева нет.
type Oscillator struct {
	gains  *Ring
	losses *Ring

	values *Ring
	prices *Ring
}

func NewOscillator(cfg OscillatorConfig) *Oscillator {
	if cfg.Period <= 0 {
		cfg.Period = 14
	}
	if cfg.History < 2 {
		cfg.History = 100
	}
	return &Oscillator{
		gains:  NewRing(cfg.Period),
		losses: NewRing(cfg.Period),
		values: NewRing(cfg.History),
		prices: NewRing(cfg.History),
	}
}

// Update принимает новую и предыдущую цену закрытия и возвращает значение в [0,100].
func (o *Oscillator) Update(newPrice, previousPrice float64) float64 {
	delta := newPrice - previousPrice
	o.gains.Push(math.Max(delta, 0))
	o.losses.Push(math.Max(-delta, 0))

	v := rsi(mean(o.gains), mean(o.losses))
	o.values.Push(v)
	o.prices.Push(newPrice)
	return v
}

// rsi: одни приросты, 100, ровное окно, 50.
func rsi(avgGain, avgLoss float64) float64 {
	var v float64
	switch {
	case avgLoss == 0 && avgGain == 0:
		v = 50
	case avgLoss == 0:
		v = 100
	default:
		v = 100 - 100/(1+avgGain/avgLoss)
	}
	if math.IsNaN(v) {
		return 50
	}
	return math.Min(100, math.Max(0, v))
}

func mean(r *Ring) float64 {
	n := r.Len()
	if n == 0 {
		return 0
	}
	s := 0.0
	for i := 0; i < n; i++ {
		s += r.At(i)
	}
	return s / float64(n)
}

// Value: последнее значение; false до первого обновления.
func (o *Oscillator) Value() (float64, bool) {
	if o.values.Len() == 0 {
		return 0, false
	}
	return o.values.Last(1), true
}

func (o *Oscillator) Values() []float64 { return o.values.Values() }

// Divergence сравнивает currentPrice с ценой перед последним обновлением,
// а последнее значение осциллятора с предыдущим.
func (o *Oscillator) Divergence(currentPrice float64) Divergence {
	if o.values.Len() < 2 {
		return DivergenceNone
	}
	prevPrice := o.prices.Last(2)
	cur, prev := o.values.Last(1), o.values.Last(2)

	switch {
	case currentPrice < prevPrice && cur > prev:
		return DivergenceBullish
	case currentPrice > prevPrice && cur < prev:
		return DivergenceBearish
	}
	return DivergenceNone
}
