package relay

import (
	"context"

	"github.com/m3rciful/hallbot/internal/notice"
)

// Message identifies a message the transport delivered earlier.
type Message struct {
	ChatID int64
	ID     int
}

// Messenger is the outbound side of the chat transport.
type Messenger interface {
	Send(ctx context.Context, chatID int64, n notice.Notice) (Message, error)
	Edit(ctx context.Context, msg Message, n notice.Notice) error
}

// Asker identifies the user submitting a question.
type Asker struct {
	ID          int64
	Handle      string
	DisplayName string
}
