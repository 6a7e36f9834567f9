package telegram

import (
	"context"

	"github.com/fd1az/bridge-screener/business/alerting/app"
	"github.com/fd1az/bridge-screener/internal/logger"
)

var _ app.Notifier = (*LogSender)(nil)

// LogSender stands in for Sender when no bot token is configured: messages
// are written to the log instead.
type LogSender struct {
	logger logger.LoggerInterface
}

// NewLogSender creates a LogSender.
func NewLogSender(log logger.LoggerInterface) *LogSender {
	return &LogSender{logger: log}
}

// Send logs the message.
func (s *LogSender) Send(ctx context.Context, chatID, text string) error {
	s.logger.Info(ctx, "telegram disabled, message not sent", "chat_id", chatID, "text", text)
	return nil
}
