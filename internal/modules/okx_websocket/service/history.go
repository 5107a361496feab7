package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/bytedance/sonic"

	"signal_bot/internal/models"
)

// History: последние закрытые свечи, от старой к новой.
func (c *Client) History(ctx context.Context, symbol, timeframe string, limit int) ([]models.Candle, error) {
	if limit <= 0 {
		limit = 100
	}
	bar, err := okxBar(timeframe)
	if err != nil {
		return nil, err
	}

	// +1: последняя строка обычно ещё не закрыта
	u := fmt.Sprintf("%s/api/v5/market/candles?instId=%s&bar=%s&limit=%d",
		c.opts.BaseURL, url.QueryEscape(symbol), url.QueryEscape(bar), limit+1,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(b))
	}

	var r struct {
		Code string     `json:"code"`
		Msg  string     `json:"msg"`
		Data [][]string `json:"data"`
	}
	if err := sonic.Unmarshal(b, &r); err != nil {
		return nil, err
	}
	if r.Code != "0" {
		return nil, fmt.Errorf("okx candles error: code=%s msg=%s", r.Code, r.Msg)
	}

	tf := timeframeToDuration(bar)

	// OKX отдаёт newest-first, разворачиваем
	out := make([]models.Candle, 0, len(r.Data))
	for i := len(r.Data) - 1; i >= 0; i-- {
		candle, confirmed, err := parseRow(r.Data[i], tf)
		if err != nil || !confirmed {
			continue
		}
		out = append(out, candle)
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}
