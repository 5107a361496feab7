package notify

import (
	"context"
	"fmt"
	"net/http"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"signal_bot/pkg/logger"
)

// StatusFunc: текст ответа на /status.
type StatusFunc func() string

// Telegram: пассивный нотифайер + команда /status.
type Telegram struct {
	bot    *tgbot.BotAPI
	chatID int64
	status StatusFunc
}

func NewTelegram(token string, chatID int64, status StatusFunc) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return newTelegram(b, chatID, status), nil
}

// NewTelegramWithEndpoint: свой API endpoint ("http://host/bot%s/%s").
func NewTelegramWithEndpoint(token, endpoint string, client *http.Client, chatID int64, status StatusFunc) (*Telegram, error) {
	b, err := tgbot.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, err
	}
	return newTelegram(b, chatID, status), nil
}

func newTelegram(b *tgbot.BotAPI, chatID int64, status StatusFunc) *Telegram {
	return &Telegram{bot: b, chatID: chatID, status: status}
}

func (t *Telegram) Send(msg string) {
	if t == nil || t.bot == nil || t.chatID == 0 {
		return
	}
	if _, err := t.bot.Send(tgbot.NewMessage(t.chatID, msg)); err != nil {
		logger.Warn("[TG] send: %v", err)
	}
}

func (t *Telegram) Sendf(format string, args ...any) { t.Send(fmt.Sprintf(format, args...)) }

// HandleMessage: команды только из своего чата.
func (t *Telegram) HandleMessage(m *tgbot.Message) {
	if m == nil || m.Chat == nil || m.Chat.ID != t.chatID || !m.IsCommand() {
		return
	}
	switch m.Command() {
	case "status":
		if t.status == nil {
			t.Send("📭 Статус недоступен")
			return
		}
		t.Send(t.status())
	}
}

// Start: long-polling сообщений.
func (t *Telegram) Start(ctx context.Context) {
	if t == nil || t.bot == nil {
		return
	}

	u := tgbot.NewUpdate(0)
	u.Timeout = 30
	u.AllowedUpdates = []string{"message"}

	updates := t.bot.GetUpdatesChan(u)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case upd, ok := <-updates:
				if !ok {
					return
				}
				t.HandleMessage(upd.Message)
			}
		}
	}()
}

func (t *Telegram) Stop() {
	if t == nil || t.bot == nil {
		return
	}
	t.bot.StopReceivingUpdates()
}
