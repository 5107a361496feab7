package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"
	"time"

	"signal_bot/internal/modules/config"
)

type Options struct {
	BaseURL    string
	APIKey     string
	APISecret  string
	Passphrase string
	// Simulated: демо-торговля OKX (заголовок x-simulated-trading).
	Simulated bool
	Timeout   time.Duration
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		BaseURL:    strings.TrimRight(cfg.OKX.BaseURL, "/"),
		APIKey:     cfg.OKX.APIKey,
		APISecret:  cfg.OKX.APISecret,
		Passphrase: cfg.OKX.Passphrase,
		Simulated:  cfg.OKX.Simulated,
		Timeout:    cfg.OKX.Timeout,
	}
}

// Client: подписанный REST OKX для размещения ордеров.
type Client struct {
	baseURL string
	apiKey  string
	secret  string
	passph  string
	sim     bool

	http *http.Client
	now  func() time.Time
}

func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://www.okx.com"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Client{
		baseURL: opts.BaseURL,
		apiKey:  opts.APIKey,
		secret:  opts.APISecret,
		passph:  opts.Passphrase,
		sim:     opts.Simulated,
		http:    &http.Client{Timeout: opts.Timeout},
		now:     time.Now,
	}
}

// sign: base64(HMAC-SHA256(ts + method + path + body)).
func (c *Client) sign(ts, method, requestPath, body string) string {
	h := hmac.New(sha256.New, []byte(c.secret))
	h.Write([]byte(ts + method + requestPath + body))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

func (c *Client) setAuth(req *http.Request, ts, sign string) {
	req.Header.Set("OK-ACCESS-KEY", c.apiKey)
	req.Header.Set("OK-ACCESS-SIGN", sign)
	req.Header.Set("OK-ACCESS-TIMESTAMP", ts)
	req.Header.Set("OK-ACCESS-PASSPHRASE", c.passph)
	req.Header.Set("Content-Type", "application/json")
	if c.sim {
		req.Header.Set("x-simulated-trading", "1")
	}
}

func formatSize(v float64) string  { return strconv.FormatFloat(v, 'f', -1, 64) }
func formatPrice(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// tdMode: для SWAP кросс-маржа, для спота cash.
func tdMode(instID string) string {
	if strings.HasSuffix(strings.ToUpper(instID), "-SWAP") {
		return "cross"
	}
	return "cash"
}
