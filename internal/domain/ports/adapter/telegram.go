// File: internal/domain/ports/adapter/telegram.go
package adapter

import "context"

// ChatTransport is the port for delivering replies to a conversation.
type ChatTransport interface {
	SendMessage(ctx context.Context, conversationID int64, text string) error
	// SendTyping shows a transient "working" indicator; failures are advisory.
	SendTyping(ctx context.Context, conversationID int64) error
}
