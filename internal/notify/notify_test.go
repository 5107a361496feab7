package notify

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"signal_bot/internal/models"
	"signal_bot/pkg/logger"
)

func TestFormat(t *testing.T) {
	t.Parallel()

	open := FormatOpened(models.Position{Symbol: "BTC-USDT", EntryPrice: 100, Quantity: 5, StopLoss: 98, TakeProfit: 104.5})
	assert.Contains(t, open, "BTC-USDT")
	assert.Contains(t, open, "SL: 98")
	assert.Contains(t, open, "TP: 104.5")

	loss := FormatClosed(models.ClosedPosition{Symbol: "BTC-USDT", EntryPrice: 100, ExitPrice: 97, PnL: -15, Outcome: models.OutcomeLoss, Reason: models.ExitStopLoss})
	assert.True(t, strings.HasPrefix(loss, "❌"))
	assert.Contains(t, loss, "stop_loss")
	assert.Contains(t, loss, "-15.0000")

	gain := FormatClosed(models.ClosedPosition{Outcome: models.OutcomeGain})
	assert.True(t, strings.HasPrefix(gain, "✅"))

	assert.Contains(t, FormatRejected(models.SideBuy, "BTC-USDT", errors.New("boom")), "boom")
}

func TestLogNotifier(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger.Set(zap.New(core))
	defer logger.Set(zap.NewNop())

	NewLog().Sendf("hello %d", 42)
	require.Equal(t, 1, logs.Len())
	assert.Contains(t, logs.All()[0].Message, "[NOTIFY] hello 42")
}

// fakeTelegram отвечает на getMe и sendMessage.
type fakeTelegram struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeTelegram) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		_, _ = io.WriteString(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"bot","username":"bot"}}`)
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		_ = r.ParseForm()
		f.mu.Lock()
		f.sent = append(f.sent, r.PostForm.Get("text"))
		f.mu.Unlock()
		_, _ = io.WriteString(w, `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":7,"type":"private"}}}`)
	default:
		_, _ = io.WriteString(w, `{"ok":true,"result":[]}`)
	}
}

func (f *fakeTelegram) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func TestTelegram(t *testing.T) {
	t.Parallel()

	fake := &fakeTelegram{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	tg, err := NewTelegramWithEndpoint("token", srv.URL+"/bot%s/%s", &http.Client{Timeout: time.Second}, 7,
		func() string { return "trigger=IDLE" })
	require.NoError(t, err)

	tg.Sendf("hi %s", "there")

	cmd := func(chatID int64, text string) *tgbot.Message {
		return &tgbot.Message{
			Text:     text,
			Chat:     &tgbot.Chat{ID: chatID},
			Entities: []tgbot.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}},
		}
	}
	tg.HandleMessage(cmd(7, "/status"))
	tg.HandleMessage(cmd(8, "/status")) // чужой чат
	tg.HandleMessage(&tgbot.Message{Text: "status", Chat: &tgbot.Chat{ID: 7}})

	assert.Equal(t, []string{"hi there", "trigger=IDLE"}, fake.messages())
}

func TestTelegramNoChat(t *testing.T) {
	t.Parallel()

	var nilTG *Telegram
	assert.NotPanics(t, func() {
		nilTG.Send("x")
		nilTG.Stop()
	})
}
