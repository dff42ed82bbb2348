package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed template/router_prompt.txt
var routerSystemPrompt string

//go:embed template/judge_prompt.txt
var judgeSystemPrompt string

//go:embed template/analyst_prompt.txt
var analystPrompt string

//go:embed template/answer_prompt.txt
var answerPrompt string

// RenderRouterSystem renders the routing-controller system prompt via the
// Eino prompt component. This triggers Prompt callbacks and returns the final
// system prompt string.
func RenderRouterSystem(ctx context.Context) (string, error) {
	return renderSystem(ctx, routerSystemPrompt)
}

// RenderJudgeSystem renders the sufficiency-judge system prompt.
func RenderJudgeSystem(ctx context.Context) (string, error) {
	return renderSystem(ctx, judgeSystemPrompt)
}

// RenderJudgeQuestion formats the user turn presented to the judge.
func RenderJudgeQuestion(question, evidence string) string {
	return fmt.Sprintf(
		"Question: %s\n\nRetrieved info: %s\n\nIs this sufficient to answer the question?",
		question, evidence,
	)
}

// RenderAnalystPrompt renders the SQL-generation prompt. On retries the
// previous attempt's execution error is appended so the model can correct
// the statement. Known tokens are replaced directly to avoid interfering
// with the JSON braces inside the template.
func RenderAnalystPrompt(ctx context.Context, question string, maxRows int, priorError string) (string, error) {
	retryCtx := ""
	if priorError != "" {
		retryCtx = fmt.Sprintf(
			"\n\nThe previous SQL failed with error:\n%s\nPlease fix the SQL and regenerate a valid one.",
			priorError,
		)
	}

	content := strings.NewReplacer(
		"{max_rows}", fmt.Sprintf("%d", maxRows),
		"{user_question}", question,
		"{retry_context}", retryCtx,
	).Replace(analystPrompt)

	return renderSystem(ctx, content)
}

// RenderAnswerPrompt renders the synthesis prompt from the question and the
// gathered context block.
func RenderAnswerPrompt(ctx context.Context, question, contextBlock string) (string, error) {
	content := strings.NewReplacer(
		"{user_question}", question,
		"{context}", contextBlock,
	).Replace(answerPrompt)

	return renderSystem(ctx, content)
}

// renderSystem wraps a prepared prompt through the Eino prompt component
// using a messages placeholder, so prompt callbacks fire without the
// component re-interpreting braces in the content.
func renderSystem(ctx context.Context, content string) (string, error) {
	tpl := prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder("system_messages", false),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"system_messages": []*schema.Message{schema.SystemMessage(content)},
	})
	if err != nil {
		return "", fmt.Errorf("prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("prompt render: empty result")
	}
	return msgs[0].Content, nil
}
