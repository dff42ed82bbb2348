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

// QueryGenerator translates a question into a read-only SQL statement for
// the sales warehouse. priorError, when non-empty, is embedded in the prompt
// so the model can correct the previous attempt.
type QueryGenerator struct {
	cm        *gemini.ChatModel
	modelName string
	maxRows   int
}

func NewQueryGenerator(cms *ChatModels, maxRows int) *QueryGenerator {
	return &QueryGenerator{cm: cms.Analyst, modelName: cms.AnalystModelName, maxRows: maxRows}
}

func (g *QueryGenerator) Generate(ctx context.Context, question, priorError string) (*model.AnalystQuery, error) {
	prompt, err := prompts.RenderAnalystPrompt(ctx, question, g.maxRows, priorError)
	if err != nil {
		return nil, fmt.Errorf("render analyst prompt: %w", err)
	}

	out, err := g.cm.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return nil, fmt.Errorf("analyst model: %w", err)
	}
	logUsage("analyst", g.modelName, out)

	return parsers.ParseAnalystQuery(out.Content)
}

var _ model.QueryGenerator = (*QueryGenerator)(nil)
