package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/schema"

	"github.com/salesight-poc/server/internal/agent/graph/prompts"
	"github.com/salesight-poc/server/internal/agent/model"
	errx "github.com/salesight-poc/server/internal/core/error"
)

// Synthesizer composes the final assistant answer from the dialogue history
// and the gathered context block. Unlike every other capability, a failure
// here is fatal to the conversation turn.
type Synthesizer struct {
	cm        *gemini.ChatModel
	modelName string
}

func NewSynthesizer(cms *ChatModels) *Synthesizer {
	return &Synthesizer{cm: cms.Answer, modelName: cms.AnswerModelName}
}

func (s *Synthesizer) Synthesize(ctx context.Context, history []*schema.Message, question, contextBlock string) (string, error) {
	prompt, err := prompts.RenderAnswerPrompt(ctx, question, contextBlock)
	if err != nil {
		return "", errx.New(err, http.StatusInternalServerError, errx.SynthesisErrorMessage)
	}

	in := make([]*schema.Message, 0, len(history)+1)
	in = append(in, history...)
	in = append(in, schema.UserMessage(prompt))

	out, err := s.cm.Generate(ctx, in)
	if err != nil {
		return "", errx.New(err, http.StatusBadGateway, errx.SynthesisErrorMessage)
	}
	logUsage("answer", s.modelName, out)

	answer := strings.TrimSpace(out.Content)
	if answer == "" {
		return "", errx.New(fmt.Errorf("empty completion"), http.StatusBadGateway, errx.SynthesisErrorMessage)
	}
	return answer, nil
}

var _ model.AnswerSynthesizer = (*Synthesizer)(nil)
