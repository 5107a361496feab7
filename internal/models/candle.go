package models

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidCandle: свеча с неположительной или не конечной ценой.
var ErrInvalidCandle = errors.New("invalid candle")

// Candle: закрытая свеча одного инструмента.
type Candle struct {
	OpenTime  time.Time
	CloseTime time.Time

	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Bullish true, когда тело растущее.
func (c Candle) Bullish() bool { return c.Close > c.Open }

// Bearish true, когда тело падающее.
func (c Candle) Bearish() bool { return c.Close < c.Open }

// Validate проверяет, что все цены положительные и конечные, а close_time задан.
func (c Candle) Validate() error {
	prices := [...]struct {
		name string
		v    float64
	}{
		{"open", c.Open}, {"high", c.High}, {"low", c.Low}, {"close", c.Close},
	}
	for _, p := range prices {
		if math.IsNaN(p.v) || math.IsInf(p.v, 0) || p.v <= 0 {
			return fmt.Errorf("%w: %s=%v", ErrInvalidCandle, p.name, p.v)
		}
	}
	if math.IsNaN(c.Volume) || math.IsInf(c.Volume, 0) || c.Volume < 0 {
		return fmt.Errorf("%w: volume=%v", ErrInvalidCandle, c.Volume)
	}
	if c.CloseTime.IsZero() {
		return fmt.Errorf("%w: close_time is zero", ErrInvalidCandle)
	}
	return nil
}
