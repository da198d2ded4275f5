// File: internal/infra/adapters/telegram/noop_bot.go
package telegram

import (
	"context"

	"github.com/rs/zerolog"

	"telegram-deploy-bot/internal/domain/ports/adapter"
)

var _ adapter.ChatTransport = (*NoOpTelegramAdapter)(nil)

// NoOpTelegramAdapter logs outgoing messages instead of sending them.
// Used in dev mode when no bot token is configured.
type NoOpTelegramAdapter struct {
	log *zerolog.Logger
}

func NewNoOpTelegramAdapter(log *zerolog.Logger) *NoOpTelegramAdapter {
	return &NoOpTelegramAdapter{log: log}
}

func (n *NoOpTelegramAdapter) SendMessage(ctx context.Context, conversationID int64, text string) error {
	n.log.Info().Int64("conversation_id", conversationID).Str("text", text).Msg("noop send")
	return nil
}

func (n *NoOpTelegramAdapter) SendTyping(ctx context.Context, conversationID int64) error {
	return nil
}
