package model

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

type ConversationRepository interface {
	// AddMessage appends a message to the dialogue history of the session
	AddMessage(ctx context.Context, sessionID string, message *schema.Message) error

	// LoadHistory retrieves the dialogue history of a session
	LoadHistory(ctx context.Context, sessionID string) (*ConversationHistory, error)

	// ClearHistory removes all dialogue history of a session
	ClearHistory(ctx context.Context, sessionID string) error

	// GetMessageCount returns the number of messages stored for the session
	GetMessageCount(ctx context.Context, sessionID string) (int, error)
}

// ConversationHistory represents loaded dialogue data with metadata.
type ConversationHistory struct {
	SessionID string
	Messages  []*schema.Message
}
