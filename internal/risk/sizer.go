package risk

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidBudget = errors.New("invalid risk budget")
	ErrInvalidPrice  = errors.New("invalid price")
)

// Budget: торгуемый баланс и доля, которой можно рискнуть в одной сделке.
type Budget struct {
	Capital      float64 `yaml:"capital"`
	RiskFraction float64 `yaml:"risk_fraction"` // (0,1]
}

func (b Budget) Validate() error {
	if !finite(b.Capital) || b.Capital <= 0 {
		return fmt.Errorf("%w: capital %.8f", ErrInvalidBudget, b.Capital)
	}
	if !finite(b.RiskFraction) || b.RiskFraction <= 0 || b.RiskFraction > 1 {
		return fmt.Errorf("%w: risk fraction %.8f not in (0,1]", ErrInvalidBudget, b.RiskFraction)
	}
	return nil
}

type Config struct {
	StopLossPct      float64 `yaml:"stop_loss_pct"`      // 0.02
	TakeProfitMargin float64 `yaml:"take_profit_margin"` // 0.999
	RewardRatio      float64 `yaml:"reward_ratio"`       // тейк в R, если нет опорного уровня
	MaxLeverage      float64 `yaml:"max_leverage"`       // 0: без ограничения
}

func DefaultConfig() Config {
	return Config{
		StopLossPct:      0.02,
		TakeProfitMargin: 0.999,
		RewardRatio:      2,
	}
}

func (c Config) Validate() error {
	if !finite(c.StopLossPct) || c.StopLossPct < 0 || c.StopLossPct >= 1 {
		return fmt.Errorf("risk: stop loss pct %.4f not in [0,1)", c.StopLossPct)
	}
	if !finite(c.TakeProfitMargin) || c.TakeProfitMargin <= 0 {
		return fmt.Errorf("risk: take profit margin %.4f <= 0", c.TakeProfitMargin)
	}
	if !finite(c.RewardRatio) || c.RewardRatio < 0 {
		return fmt.Errorf("risk: reward ratio %.4f < 0", c.RewardRatio)
	}
	if !finite(c.MaxLeverage) || c.MaxLeverage < 0 {
		return fmt.Errorf("risk: max leverage %.4f < 0", c.MaxLeverage)
	}
	return nil
}

type Request struct {
	Entry float64
	// StopReference > 0 задаёт уровень стопа явно, иначе entry*(1-StopLossPct).
	StopReference float64
	// TakeProfitReference: опорный уровень тейка, обычно середина канала.
	TakeProfitReference float64

	Capital      float64
	RiskFraction float64
}

type Sizing struct {
	Quantity   float64
	StopLoss   float64
	TakeProfit float64
	RiskAmount float64
	// Degenerate: нулевая дистанция до стопа, ордер не ставим.
	Degenerate bool
}

// Tradable: есть что отправлять на биржу.
func (s Sizing) Tradable() bool { return !s.Degenerate && s.Quantity > 0 }

type Sizer struct {
	cfg Config
}

func NewSizer(cfg Config) *Sizer {
	return &Sizer{cfg: cfg}
}

func (s *Sizer) Size(req Request) (Sizing, error) {
	if !finite(req.Entry) || req.Entry <= 0 {
		return Sizing{}, fmt.Errorf("%w: entry %.8f", ErrInvalidPrice, req.Entry)
	}
	if !finite(req.StopReference) || req.StopReference < 0 ||
		!finite(req.TakeProfitReference) || req.TakeProfitReference < 0 {
		return Sizing{}, fmt.Errorf("%w: stop ref %.8f tp ref %.8f", ErrInvalidPrice, req.StopReference, req.TakeProfitReference)
	}
	budget := Budget{Capital: req.Capital, RiskFraction: req.RiskFraction}
	if err := budget.Validate(); err != nil {
		return Sizing{}, err
	}

	stop := req.Entry * (1 - s.cfg.StopLossPct)
	if req.StopReference > 0 {
		stop = req.StopReference
	}

	riskAmount := budget.Capital * budget.RiskFraction
	riskPerUnit := math.Abs(req.Entry - stop)

	out := Sizing{StopLoss: stop, RiskAmount: riskAmount}
	if req.TakeProfitReference > 0 {
		out.TakeProfit = req.TakeProfitReference * s.cfg.TakeProfitMargin
	} else {
		out.TakeProfit = req.Entry + s.cfg.RewardRatio*riskPerUnit
	}

	if riskPerUnit <= 0 {
		out.Degenerate = true
		return out, nil
	}

	qty := round2(riskAmount / riskPerUnit)

	// ограничение по плечу: qty*entry <= capital*lev, вниз до сотых
	if s.cfg.MaxLeverage > 0 {
		maxQty := budget.Capital * s.cfg.MaxLeverage / req.Entry
		if qty > maxQty {
			qty = math.Floor(maxQty*100+1e-9) / 100
		}
	}

	out.Quantity = qty
	if qty <= 0 {
		out.Degenerate = true
	}
	return out, nil
}

// round2: до сотых, половина к чётному (12.5 -> 12).
func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
