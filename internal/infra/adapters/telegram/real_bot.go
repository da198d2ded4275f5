// File: internal/infra/adapters/telegram/real_bot.go

// Package telegram implements the chat-transport port with tgbotapi.
package telegram

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-deploy-bot/internal/domain/model"
	"telegram-deploy-bot/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.ChatTransport = (*RealTelegramAdapter)(nil)

type RealTelegramAdapter struct {
	bot *tgbotapi.BotAPI
	log *zerolog.Logger
}

func NewRealTelegramAdapter(token string, log *zerolog.Logger) (*RealTelegramAdapter, error) {
	if token == "" {
		return nil, errors.New("telegram token empty")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &RealTelegramAdapter{bot: bot, log: log}, nil
}

func (r *RealTelegramAdapter) SendMessage(ctx context.Context, conversationID int64, text string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	msg := tgbotapi.NewMessage(conversationID, text)
	_, err := r.bot.Send(msg)
	return err
}

// SendTyping shows the transient "typing…" indicator. Best effort; the
// command proceeds even when this fails.
func (r *RealTelegramAdapter) SendTyping(ctx context.Context, conversationID int64) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	action := tgbotapi.NewChatAction(conversationID, tgbotapi.ChatTyping)
	_, err := r.bot.Request(action)
	return err
}

// StartPolling consumes long-poll updates and invokes handle for each text
// message. handle must not block: slow work belongs on the worker pool.
func (r *RealTelegramAdapter) StartPolling(ctx context.Context, handle func(context.Context, model.IncomingCommand)) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			r.bot.StopReceivingUpdates()
			return ctx.Err()
		case up := <-updates:
			cmd, ok := IncomingFromUpdate(up)
			if !ok {
				continue
			}
			handle(ctx, cmd)
		}
	}
}

// IncomingFromUpdate reduces a raw update to the dispatcher's input shape.
// Updates without a text message are reported as not-ok and skipped.
func IncomingFromUpdate(up tgbotapi.Update) (model.IncomingCommand, bool) {
	if up.Message == nil || up.Message.From == nil || up.Message.Text == "" {
		return model.IncomingCommand{}, false
	}
	return model.IncomingCommand{
		ConversationID: up.Message.Chat.ID,
		CallerID:       up.Message.From.ID,
		CallerName:     up.Message.From.UserName,
		RawText:        up.Message.Text,
	}, true
}
