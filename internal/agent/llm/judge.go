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

// Judge renders a sufficiency verdict over retrieved evidence.
type Judge struct {
	cm        *gemini.ChatModel
	modelName string
}

func NewJudge(cms *ChatModels) *Judge {
	return &Judge{cm: cms.Judge, modelName: cms.JudgeModelName}
}

func (j *Judge) Judge(ctx context.Context, question, evidence string) (bool, error) {
	system, err := prompts.RenderJudgeSystem(ctx)
	if err != nil {
		return false, fmt.Errorf("render judge prompt: %w", err)
	}

	out, err := j.cm.Generate(ctx, []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(prompts.RenderJudgeQuestion(question, evidence)),
	})
	if err != nil {
		return false, fmt.Errorf("judge model: %w", err)
	}
	logUsage("judge", j.modelName, out)

	return parsers.ParseJudgeVerdict(out.Content)
}

var _ model.SufficiencyJudge = (*Judge)(nil)
