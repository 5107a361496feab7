package indicator

import (
	"fmt"
	"math"
)

// Deviation: как считать стандартное отклонение окна.
type Deviation int

const (
	// Population делит на N (как np.std по умолчанию).
	Population Deviation = iota
	// Sample делит на N-1.
	Sample
)

func ParseDeviation(s string) (Deviation, error) {
	switch s {
	case "", "population":
		return Population, nil
	case "sample":
		return Sample, nil
	}
	return Population, fmt.Errorf("unknown deviation mode %q", s)
}

type BandConfig struct {
	Window    int     // N цен, обычно 20
	K         float64 // множитель отклонения, обычно 2
	Deviation Deviation
	// HistorySize ограничивает историю ширины канала.
	HistorySize int
}

// BandSnapshot: значения канала на последней свече.
type BandSnapshot struct {
	Upper     float64
	Middle    float64
	Lower     float64
	Bandwidth float64
}

// BandTracker: канал волатильности по последним Window закрытиям.
type BandTracker struct {
	cfg BandConfig

	prices    *Ring
	bandwidth *Ring

	last  BandSnapshot
	ready bool
}

func NewBandTracker(cfg BandConfig) *BandTracker {
	if cfg.Window <= 0 {
		cfg.Window = 20
	}
	if cfg.K <= 0 {
		cfg.K = 2
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = 100
	}
	return &BandTracker{
		cfg:       cfg,
		prices:    NewRing(cfg.Window),
		bandwidth: NewRing(cfg.HistorySize),
	}
}

// Update добавляет цену закрытия. Пока окно не заполнено, (BandSnapshot{}, false).
func (b *BandTracker) Update(price float64) (BandSnapshot, bool) {
	b.prices.Push(price)
	if !b.prices.Full() {
		return BandSnapshot{}, false
	}

	mean, std := b.meanStd()

	snap := BandSnapshot{
		Upper:  mean + b.cfg.K*std,
		Middle: mean,
		Lower:  mean - b.cfg.K*std,
	}
	snap.Bandwidth = snap.Upper - snap.Lower

	b.bandwidth.Push(snap.Bandwidth)
	b.last, b.ready = snap, true
	return snap, true
}

// meanStd по окну. Если все цены равны, middle берётся как есть
// и std = 0, чтобы сумма не давала ненулевую ширину.
func (b *BandTracker) meanStd() (float64, float64) {
	n := b.prices.Len()
	first := b.prices.At(0)
	flat := true
	sum := 0.0
	for i := 0; i < n; i++ {
		v := b.prices.At(i)
		if v != first {
			flat = false
		}
		sum += v
	}
	if flat {
		return first, 0
	}
	mean := sum / float64(n)

	sq := 0.0
	for i := 0; i < n; i++ {
		d := b.prices.At(i) - mean
		sq += d * d
	}
	div := float64(n)
	if b.cfg.Deviation == Sample && n > 1 {
		div = float64(n - 1)
	}
	return mean, math.Sqrt(sq / div)
}

// Snapshot: последнее посчитанное значение.
func (b *BandTracker) Snapshot() (BandSnapshot, bool) { return b.last, b.ready }

func (b *BandTracker) Ready() bool { return b.ready }

// Len: сколько цен сейчас в окне.
func (b *BandTracker) Len() int { return b.prices.Len() }

// Bandwidths: история ширины канала от старой к новой.
func (b *BandTracker) Bandwidths() []float64 { return b.bandwidth.Values() }

// BandwidthROC считает скорость изменения сглаженной ширины канала:
// SMA(rollingWindow) по истории ширины, затем (avg[-1]-avg[-period])/avg[-period].
// Данных мало: (0, false, nil). Нулевой знаменатель, ErrZeroDenominator.
func (b *BandTracker) BandwidthROC(rollingWindow, period int) (float64, bool, error) {
	if rollingWindow < 1 || period < 1 {
		return 0, false, fmt.Errorf("bandwidth roc: rolling window %d and period %d must be >= 1", rollingWindow, period)
	}
	need := rollingWindow + period - 1
	n := b.bandwidth.Len()
	if n < need {
		return 0, false, nil
	}

	// avg[-1]: окно, оканчивающееся на последнем элементе;
	// avg[-period]: окно, сдвинутое на period-1 назад.
	avgEndingAt := func(end int) float64 {
		s := 0.0
		for i := end - rollingWindow + 1; i <= end; i++ {
			s += b.bandwidth.At(i)
		}
		return s / float64(rollingWindow)
	}
	latest := avgEndingAt(n - 1)
	base := avgEndingAt(n - period)
	if base == 0 {
		return 0, false, ErrZeroDenominator
	}
	return (latest - base) / base, true, nil
}
