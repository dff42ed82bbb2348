package nodes

import (
	"encoding/json"
	"strings"

	"github.com/salesight-poc/server/internal/agent/model"
)

const noExternalContext = "No external context available."

// BuildContextBlock assembles the synthesis context from whatever one
// strategy path gathered. Analyst results win outright; otherwise evidence
// and web snippets are concatenated in that fixed order; otherwise a literal
// no-context marker so the model knows it is answering unaided.
func BuildContextBlock(state *model.AgentState) string {
	if state.AnalystResult != nil {
		return formatAnalystBlock(state.AnalystResult)
	}

	var blocks []string
	if state.Evidence != "" {
		blocks = append(blocks, "Knowledge Base Information:\n"+state.Evidence)
	}
	if state.WebSnippets != "" {
		blocks = append(blocks, "Web Search Results:\n"+state.WebSnippets)
	}
	if len(blocks) == 0 {
		return noExternalContext
	}
	return strings.Join(blocks, "\n\n")
}

func formatAnalystBlock(result *model.AnalystResult) string {
	if !result.Success {
		var b strings.Builder
		b.WriteString("No analyst data available.")
		if result.Error != "" {
			b.WriteString(" The analysis could not be completed: ")
			b.WriteString(result.Error)
		}
		return b.String()
	}

	var b strings.Builder
	b.WriteString("Analyst Results:\n")
	if result.Explanation != "" {
		b.WriteString("Explanation: " + result.Explanation + "\n")
	}
	if result.SQL != "" {
		b.WriteString("Query: " + result.SQL + "\n")
	}
	if len(result.Rows) == 0 {
		b.WriteString("Rows: none")
		return b.String()
	}
	rows, err := json.MarshalIndent(result.Rows, "", "  ")
	if err != nil {
		b.WriteString("Rows: unavailable")
		return b.String()
	}
	b.WriteString("Rows:\n")
	b.Write(rows)
	return b.String()
}
