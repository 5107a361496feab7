package indicator

import "signal_bot/internal/models"

// IsBullishEngulfing: prev медвежья, cur бычья, тело cur строго накрывает тело prev.
func IsBullishEngulfing(prev, cur models.Candle) bool {
	return prev.Bearish() && cur.Bullish() &&
		cur.Open < prev.Close && cur.Close > prev.Open
}

// IsBearishEngulfing: зеркальный случай.
func IsBearishEngulfing(prev, cur models.Candle) bool {
	return prev.Bullish() && cur.Bearish() &&
		cur.Open > prev.Close && cur.Close < prev.Open
}

// BullishEngulfing проверяет две последние свечи; меньше двух, false.
func BullishEngulfing(candles []models.Candle) bool {
	if len(candles) < 2 {
		return false
	}
	return IsBullishEngulfing(candles[len(candles)-2], candles[len(candles)-1])
}
