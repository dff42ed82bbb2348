package llm

import (
	"github.com/cloudwego/eino/schema"

	"github.com/salesight-poc/server/internal/agent/model"
	logx "github.com/salesight-poc/server/pkg/logger"
)

// logUsage computes and logs the USD cost of one model invocation.
func logUsage(role, modelName string, out *schema.Message) {
	if !model.CostEnabled() || out == nil || out.ResponseMeta == nil || out.ResponseMeta.Usage == nil {
		return
	}

	usage := out.ResponseMeta.Usage
	pricing := model.ResolvePricing(modelName)
	inC, outC, totalC := model.ComputeCost(usage, pricing)

	logx.Debug().
		Str("role", role).
		Str("model", modelName).
		Int("prompt_tokens", usage.PromptTokens).
		Int("completion_tokens", usage.CompletionTokens).
		Int("total_tokens", usage.TotalTokens).
		Float64("input_cost_usd", inC).
		Float64("output_cost_usd", outC).
		Float64("total_cost_usd", totalC).
		Msg("LLM usage")
}
