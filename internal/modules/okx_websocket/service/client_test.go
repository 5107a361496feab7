package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal_bot/internal/models"
)

type connFlag struct{ v atomic.Bool }

func (c *connFlag) SetWSConnected(v bool) { c.v.Store(v) }

func TestParseRow(t *testing.T) {
	t.Parallel()

	c, ok, err := parseRow([]string{"1700000000000", "10", "12", "9", "11", "5", "0", "0", "1"}, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), c.OpenTime)
	assert.Equal(t, c.OpenTime.Add(time.Minute), c.CloseTime)
	assert.Equal(t, 11.0, c.Close)
	assert.Equal(t, 5.0, c.Volume)

	_, ok, err = parseRow([]string{"1700000000000", "10", "12", "9", "11", "5", "0", "0", "0"}, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = parseRow([]string{"x", "1", "1", "1", "1"}, time.Minute)
	assert.Error(t, err)
	_, _, err = parseRow([]string{"1"}, time.Minute)
	assert.Error(t, err)
	_, _, err = parseRow([]string{"1700000000000", "-1", "1", "1", "1", "0", "0", "0", "1"}, time.Minute)
	assert.ErrorIs(t, err, models.ErrInvalidCandle)
}

func TestOkxBar(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{"1m": "1m", "15M": "15m", "1h": "1H", "60m": "1H", "4h": "4H", "1d": "1D"} {
		got, err := okxBar(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := okxBar("7m")
	assert.Error(t, err)
}

func TestHistory(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v5/market/candles", r.URL.Path)
		assert.Equal(t, "BTC-USDT", r.URL.Query().Get("instId"))
		assert.Equal(t, "1m", r.URL.Query().Get("bar"))
		assert.Equal(t, "3", r.URL.Query().Get("limit"))
		// newest-first, первая строка ещё не закрыта
		_, _ = io.WriteString(w, `{"code":"0","msg":"","data":[
			["1700000180000","13","13","13","13","1","0","0","0"],
			["1700000120000","12","12","12","12","1","0","0","1"],
			["1700000060000","11","11","11","11","1","0","0","1"],
			["1700000000000","10","10","10","10","1","0","0","1"]
		]}`)
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL}, nil)
	got, err := c.History(context.Background(), "BTC-USDT", "1m", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 11.0, got[0].Close)
	assert.Equal(t, 12.0, got[1].Close)
}

func TestHistoryError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"code":"51001","msg":"Instrument ID does not exist","data":[]}`)
	}))
	defer srv.Close()

	_, err := NewClient(Options{BaseURL: srv.URL}, nil).History(context.Background(), "NOPE", "1m", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "51001")
}

func TestStream(t *testing.T) {
	t.Parallel()

	up := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_, sub, err := conn.ReadMessage()
		if err != nil {
			return
		}
		assert.Contains(t, string(sub), `"candle1m"`)

		frames := []string{
			`{"event":"subscribe","arg":{"channel":"candle1m","instId":"BTC-USDT"}}`,
			`{"arg":{"channel":"candle1m","instId":"BTC-USDT"},"data":[["1700000000000","10","10","10","10","1","0","0","0"]]}`,
			`{"arg":{"channel":"candle1m","instId":"BTC-USDT"},"data":[["1700000000000","10","11","9","10.5","1","0","0","1"]]}`,
			`{"arg":{"channel":"candle1m","instId":"BTC-USDT"},"data":[["1700000000000","10","11","9","10.5","1","0","0","1"]]}`,
			`{"arg":{"channel":"candle1m","instId":"BTC-USDT"},"data":[["1700000060000","10.5","12","10","11.5","1","0","0","1"]]}`,
		}
		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		// держим соединение до закрытия клиентом
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	flag := &connFlag{}
	c := NewClient(Options{WSURL: "ws" + strings.TrimPrefix(srv.URL, "http")}, flag)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ch := c.Stream(ctx, "BTC-USDT", "1m")

	first := <-ch
	second := <-ch
	assert.Equal(t, 10.5, first.Close)
	assert.Equal(t, 11.5, second.Close)
	assert.True(t, second.CloseTime.After(first.CloseTime))
	assert.True(t, flag.v.Load())

	cancel()
	for range ch {
	}
	assert.False(t, flag.v.Load())
}
