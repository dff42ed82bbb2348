package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/schema"

	"github.com/salesight-poc/server/internal/agent/graph/parsers"
	"github.com/salesight-poc/server/internal/agent/graph/prompts"
	"github.com/salesight-poc/server/internal/agent/model"
)

// Classifier routes a dialogue to one of the four strategies using the
// router chat model.
type Classifier struct {
	cm        *gemini.ChatModel
	modelName string
}

func NewClassifier(cms *ChatModels) *Classifier {
	return &Classifier{cm: cms.Router, modelName: cms.RouterModelName}
}

func (c *Classifier) Classify(ctx context.Context, messages []*schema.Message) (*model.RouteDecision, error) {
	system, err := prompts.RenderRouterSystem(ctx)
	if err != nil {
		return nil, fmt.Errorf("render router prompt: %w", err)
	}

	in := make([]*schema.Message, 0, len(messages)+1)
	in = append(in, schema.SystemMessage(system))
	in = append(in, messages...)

	out, err := c.cm.Generate(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("router model: %w", err)
	}
	logUsage("router", c.modelName, out)

	return parsers.ParseRouteDecision(out.Content)
}

var _ model.RouteClassifier = (*Classifier)(nil)
