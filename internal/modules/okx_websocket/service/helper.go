package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"signal_bot/internal/models"
)

func timeframeToDuration(tf string) time.Duration {
	switch tf {
	case "1m":
		return time.Minute
	case "3m":
		return 3 * time.Minute
	case "5m":
		return 5 * time.Minute
	case "15m":
		return 15 * time.Minute
	case "30m":
		return 30 * time.Minute
	case "1H", "1h":
		return time.Hour
	case "2H", "2h":
		return 2 * time.Hour
	case "4H", "4h":
		return 4 * time.Hour
	case "1D", "1d":
		return 24 * time.Hour
	default:
		return 0 // неизвестный: CloseTime = OpenTime
	}
}

func okxBar(tf string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(tf)) {
	case "1m", "3m", "5m", "15m", "30m":
		return strings.ToLower(tf), nil
	case "60m", "1h":
		return "1H", nil
	case "2h":
		return "2H", nil
	case "4h":
		return "4H", nil
	case "1d":
		return "1D", nil
	}
	return "", fmt.Errorf("unsupported timeframe for OKX bar: %q", tf)
}

// parseRow разбирает строку свечи OKX:
// [ts, o, h, l, c, vol, volCcy, volCcyQuote, confirm].
// confirmed=false для ещё не закрытой свечи.
func parseRow(row []string, tf time.Duration) (c models.Candle, confirmed bool, err error) {
	if len(row) < 5 {
		return c, false, fmt.Errorf("short candle row: %d fields", len(row))
	}

	tsMs, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return c, false, fmt.Errorf("ts %q: %w", row[0], err)
	}
	c.OpenTime = time.UnixMilli(tsMs).UTC()
	c.CloseTime = c.OpenTime.Add(tf)

	prices := []*float64{&c.Open, &c.High, &c.Low, &c.Close}
	for i, dst := range prices {
		if *dst, err = strconv.ParseFloat(row[1+i], 64); err != nil {
			return c, false, fmt.Errorf("price %q: %w", row[1+i], err)
		}
	}
	if len(row) >= 6 {
		c.Volume, _ = strconv.ParseFloat(row[5], 64)
	}

	// confirm всегда в последнем элементе, индекс не хардкодим
	confirmed = len(row) >= 9 && row[len(row)-1] == "1"
	return c, confirmed, c.Validate()
}
