package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/bytedance/sonic"

	"signal_bot/internal/models"
)

var ErrInvalidIntent = errors.New("invalid order intent")

type attachAlgo struct {
	TpTriggerPx string `json:"tpTriggerPx,omitempty"`
	TpOrdPx     string `json:"tpOrdPx,omitempty"`
	SlTriggerPx string `json:"slTriggerPx,omitempty"`
	SlOrdPx     string `json:"slOrdPx,omitempty"`
}

type orderBody struct {
	InstID         string       `json:"instId"`
	TdMode         string       `json:"tdMode"`
	Side           string       `json:"side"`
	OrdType        string       `json:"ordType"`
	Sz             string       `json:"sz"`
	ClOrdID        string       `json:"clOrdId,omitempty"`
	TgtCcy         string       `json:"tgtCcy,omitempty"`
	ReduceOnly     bool         `json:"reduceOnly,omitempty"`
	AttachAlgoOrds []attachAlgo `json:"attachAlgoOrds,omitempty"`
}

func buildOrderBody(in models.OrderIntent) (orderBody, error) {
	if in.Symbol == "" || in.Quantity <= 0 {
		return orderBody{}, fmt.Errorf("%w: symbol=%q qty=%v", ErrInvalidIntent, in.Symbol, in.Quantity)
	}

	b := orderBody{
		InstID:  in.Symbol,
		TdMode:  tdMode(in.Symbol),
		OrdType: "market",
		Sz:      formatSize(in.Quantity),
		ClOrdID: in.ClientOrderID,
	}
	if b.TdMode == "cash" {
		b.TgtCcy = "base_ccy" // размер в базовой валюте
	}

	switch in.Side {
	case models.SideBuy:
		b.Side = "buy"
		// TP/SL на бирже, рыночное исполнение по триггеру
		if in.StopLoss > 0 || in.TakeProfit > 0 {
			a := attachAlgo{}
			if in.TakeProfit > 0 {
				a.TpTriggerPx = formatPrice(in.TakeProfit)
				a.TpOrdPx = "-1"
			}
			if in.StopLoss > 0 {
				a.SlTriggerPx = formatPrice(in.StopLoss)
				a.SlOrdPx = "-1"
			}
			b.AttachAlgoOrds = []attachAlgo{a}
		}
	case models.SideSell:
		b.Side = "sell"
		b.ReduceOnly = b.TdMode != "cash"
	default:
		return orderBody{}, fmt.Errorf("%w: side=%q", ErrInvalidIntent, in.Side)
	}
	return b, nil
}

// PlaceOrder отправляет рыночный ордер. BUY несёт прикреплённые TP/SL.
func (c *Client) PlaceOrder(ctx context.Context, in models.OrderIntent) (models.OrderAck, error) {
	body, err := buildOrderBody(in)
	if err != nil {
		return models.OrderAck{}, err
	}
	payload, err := sonic.Marshal(body)
	if err != nil {
		return models.OrderAck{}, fmt.Errorf("PlaceOrder marshal: %w", err)
	}

	const requestPath = "/api/v5/trade/order"
	ts := c.now().UTC().Format("2006-01-02T15:04:05.000Z")
	sign := c.sign(ts, http.MethodPost, requestPath, string(payload))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+requestPath, bytes.NewReader(payload))
	if err != nil {
		return models.OrderAck{}, fmt.Errorf("PlaceOrder new request: %w", err)
	}
	c.setAuth(req, ts, sign)

	resp, err := c.http.Do(req)
	if err != nil {
		return models.OrderAck{}, fmt.Errorf("PlaceOrder do: %w", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return models.OrderAck{}, fmt.Errorf("PlaceOrder http %d: %s", resp.StatusCode, string(data))
	}

	var r struct {
		Code string `json:"code"`
		Msg  string `json:"msg"`
		Data []struct {
			OrdID   string `json:"ordId"`
			ClOrdID string `json:"clOrdId"`
			SCode   string `json:"sCode"`
			SMsg    string `json:"sMsg"`
		} `json:"data"`
	}
	if err := sonic.Unmarshal(data, &r); err != nil {
		return models.OrderAck{}, fmt.Errorf("PlaceOrder decode: %w; body=%s", err, string(data))
	}

	// детальный статус важнее общего кода
	if len(r.Data) > 0 && r.Data[0].SCode != "0" {
		return models.OrderAck{}, fmt.Errorf("PlaceOrder rejected: sCode=%s sMsg=%s", r.Data[0].SCode, r.Data[0].SMsg)
	}
	if r.Code != "0" {
		return models.OrderAck{}, fmt.Errorf("PlaceOrder error: code=%s msg=%s", r.Code, r.Msg)
	}
	if len(r.Data) == 0 || r.Data[0].OrdID == "" {
		return models.OrderAck{}, fmt.Errorf("PlaceOrder: empty ordId RAW=%s", string(data))
	}
	return models.OrderAck{VenueOrderID: r.Data[0].OrdID}, nil
}
