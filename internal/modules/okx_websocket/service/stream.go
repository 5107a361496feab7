package service

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"signal_bot/internal/models"
	"signal_bot/pkg/logger"
)

type wsFrame struct {
	Event string `json:"event"`
	Code  string `json:"code"`
	Msg   string `json:"msg"`
	Arg   struct {
		Channel string `json:"channel"`
		InstID  string `json:"instId"`
	} `json:"arg"`
	Data [][]string `json:"data"`
}

// Stream: закрытые свечи одного инструмента. Переподключается сам,
// канал закрывается при отмене ctx. Повторы одной свечи отбрасываются.
func (c *Client) Stream(ctx context.Context, symbol, timeframe string) <-chan models.Candle {
	ch := make(chan models.Candle)

	go func() {
		defer close(ch)
		defer c.setConnected(false)

		bar, err := okxBar(timeframe)
		if err != nil {
			logger.Error("[WS] %v", err)
			return
		}
		channel := "candle" + bar // "1m" -> "candle1m"
		tf := timeframeToDuration(bar)
		var last time.Time

		for {
			err := c.session(ctx, symbol, channel, tf, func(candle models.Candle) bool {
				if !candle.CloseTime.After(last) {
					return true
				}
				select {
				case ch <- candle:
					last = candle.CloseTime
					return true
				case <-ctx.Done():
					return false
				}
			})
			c.setConnected(false)
			if ctx.Err() != nil {
				return
			}
			logger.Warn("[WS] %s %s: %v, reconnect in %s", channel, symbol, err, c.opts.ReconnectDelay)

			select {
			case <-ctx.Done():
				return
			case <-time.After(c.opts.ReconnectDelay):
			}
		}
	}()

	return ch
}

// session держит одно подключение до первой ошибки чтения.
func (c *Client) session(ctx context.Context, symbol, channel string, tf time.Duration, emit func(models.Candle) bool) error {
	logger.Info("[WS] connect %s %s", channel, symbol)
	conn, _, err := c.wsDialer.DialContext(ctx, c.opts.WSURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	sub, err := sonic.Marshal(map[string]any{
		"op":   "subscribe",
		"args": []map[string]string{{"channel": channel, "instId": symbol}},
	})
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, sub); err != nil {
		return err
	}
	c.setConnected(true)

	// keepalive и закрытие по ctx; единственный писатель после подписки
	done := make(chan struct{})
	defer close(done)
	go func() {
		t := time.NewTicker(c.opts.PingEvery)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				_ = conn.Close()
				return
			case <-t.C:
				_ = conn.WriteMessage(websocket.TextMessage, []byte("ping"))
			}
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if string(msg) == "pong" {
			continue
		}

		var frame wsFrame
		if err := sonic.Unmarshal(msg, &frame); err != nil {
			continue
		}
		if frame.Event == "error" {
			logger.Error("[WS] subscribe error code=%s msg=%s", frame.Code, frame.Msg)
			continue
		}
		if frame.Arg.Channel != channel || len(frame.Data) == 0 {
			continue
		}

		// в одном кадре может быть несколько свечей
		for _, row := range frame.Data {
			candle, confirmed, err := parseRow(row, tf)
			if err != nil {
				logger.L().Debug("[WS] bad row", zap.Strings("row", row), zap.Error(err))
				continue
			}
			if !confirmed {
				continue // ждём закрытую свечу
			}
			if !emit(candle) {
				return ctx.Err()
			}
		}
	}
}
