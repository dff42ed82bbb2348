package graph

import (
	"context"

	"github.com/salesight-poc/server/internal/agent/graph/conversations"
	"github.com/salesight-poc/server/internal/agent/model"
	logx "github.com/salesight-poc/server/pkg/logger"
)

// Service ties session persistence to graph execution. It owns the
// load-run-persist cycle so the graph itself never touches storage.
type Service struct {
	runner Runner
	mm     *conversations.MessagesManager
}

func NewService(runner Runner, mm *conversations.MessagesManager) *Service {
	return &Service{runner: runner, mm: mm}
}

// Ask answers one question within a session. History persistence failure is
// logged but does not fail the request; the caller still gets the answer.
func (s *Service) Ask(ctx context.Context, sessionID string, question string) (*model.RunResult, error) {
	in, err := s.mm.PrepareInput(ctx, sessionID, question)
	if err != nil {
		return nil, err
	}

	result, err := s.runner.Run(ctx, *in)
	if err != nil {
		return nil, err
	}

	if err := s.mm.CommitTurn(ctx, sessionID, question, result.Answer); err != nil {
		logx.Error().Err(err).Str("session_id", sessionID).Msg("Failed to persist turn")
	}

	return result, nil
}
