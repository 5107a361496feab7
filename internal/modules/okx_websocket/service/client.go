package service

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"signal_bot/internal/modules/config"
)

// ConnListener получает состояние WebSocket (health).
type ConnListener interface {
	SetWSConnected(v bool)
}

type Options struct {
	BaseURL string
	WSURL   string
	Timeout time.Duration
	// PingEvery: keepalive, иначе OKX рвёт соединение через 30s тишины.
	PingEvery time.Duration
	// ReconnectDelay: пауза перед повторным подключением.
	ReconnectDelay time.Duration
}

// Client отдаёт рыночные данные OKX. WebSocket для живых свечей, REST для истории.
type Client struct {
	opts Options
	conn ConnListener

	http     *http.Client
	wsDialer *websocket.Dialer
}

func NewClient(opts Options, conn ConnListener) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://www.okx.com"
	}
	if opts.WSURL == "" {
		opts.WSURL = "wss://ws.okx.com:8443/ws/v5/business"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.PingEvery <= 0 {
		opts.PingEvery = 20 * time.Second
	}
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = time.Second
	}
	return &Client{
		opts:     opts,
		conn:     conn,
		http:     &http.Client{Timeout: opts.Timeout},
		wsDialer: &websocket.Dialer{HandshakeTimeout: opts.Timeout},
	}
}

// OptionsFromConfig берёт адреса из секции okx.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		BaseURL: strings.TrimRight(cfg.OKX.BaseURL, "/"),
		WSURL:   cfg.OKX.WSURL,
		Timeout: cfg.OKX.Timeout,
	}
}

func (c *Client) setConnected(v bool) {
	if c.conn != nil {
		c.conn.SetWSConnected(v)
	}
}
