package notify

import (
	"fmt"

	"signal_bot/pkg/logger"
)

type Notifier interface {
	Send(msg string)
	Sendf(format string, args ...any)
}

// Log пишет уведомления в лог, если Telegram не настроен.
type Log struct{}

func NewLog() *Log { return &Log{} }

func (l *Log) Send(msg string) { logger.Info("[NOTIFY] %s", msg) }

func (l *Log) Sendf(format string, args ...any) { l.Send(fmt.Sprintf(format, args...)) }
