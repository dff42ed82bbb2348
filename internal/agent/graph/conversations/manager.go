package conversations

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"github.com/salesight-poc/server/internal/agent/model"
)

// MessagesManager loads and persists per-session chat history, keeping the
// window handed to the graph bounded to the most recent turns.
type MessagesManager struct {
	sessionRepo model.ConversationRepository
	maxTurns    int
}

func NewMessagesManager(sessionRepo model.ConversationRepository, config model.SessionConfig) *MessagesManager {
	return &MessagesManager{
		sessionRepo: sessionRepo,
		maxTurns:    config.MaxTurns,
	}
}

// PrepareInput loads the session history and returns the graph input for a
// new question. The current question is NOT persisted yet; CommitTurn writes
// both sides of the exchange once an answer exists.
func (mm *MessagesManager) PrepareInput(ctx context.Context, sessionID string, question string) (*model.QueryInput, error) {
	history, err := mm.sessionRepo.LoadHistory(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return &model.QueryInput{
		SessionID: sessionID,
		Question:  question,
		History:   trimTail(history.Messages, mm.maxTurns),
	}, nil
}

// CommitTurn persists the exchanged pair after the graph produced an answer.
func (mm *MessagesManager) CommitTurn(ctx context.Context, sessionID string, question string, answer string) error {
	if err := mm.sessionRepo.AddMessage(ctx, sessionID, schema.UserMessage(question)); err != nil {
		return err
	}
	return mm.sessionRepo.AddMessage(ctx, sessionID, schema.AssistantMessage(answer, nil))
}

func (mm *MessagesManager) ClearSession(ctx context.Context, sessionID string) error {
	return mm.sessionRepo.ClearHistory(ctx, sessionID)
}

func trimTail(messages []*schema.Message, maxTurns int) []*schema.Message {
	if maxTurns <= 0 || len(messages) <= maxTurns {
		result := make([]*schema.Message, len(messages))
		copy(result, messages)
		return result
	}
	source := messages[len(messages)-maxTurns:]
	result := make([]*schema.Message, len(source))
	copy(result, source)
	return result
}
