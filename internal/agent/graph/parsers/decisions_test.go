package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesight-poc/server/internal/agent/model"
)

func TestParseRouteDecision(t *testing.T) {
	t.Run("plain json", func(t *testing.T) {
		d, err := ParseRouteDecision(`{"route": "rag", "reply": ""}`)
		require.NoError(t, err)
		assert.Equal(t, model.RouteRAG, d.Route)
		assert.Empty(t, d.Reply)
	})

	t.Run("end route carries reply", func(t *testing.T) {
		d, err := ParseRouteDecision(`{"route": "end", "reply": "Hello there!"}`)
		require.NoError(t, err)
		assert.Equal(t, model.RouteEnd, d.Route)
		assert.Equal(t, "Hello there!", d.Reply)
	})

	t.Run("code fenced json", func(t *testing.T) {
		content := "```json\n{\"route\": \"analyst\", \"reply\": \"\"}\n```"
		d, err := ParseRouteDecision(content)
		require.NoError(t, err)
		assert.Equal(t, model.RouteAnalyst, d.Route)
	})

	t.Run("prose around json", func(t *testing.T) {
		content := "Sure, here is the decision: {\"route\": \"answer\"} hope that helps"
		d, err := ParseRouteDecision(content)
		require.NoError(t, err)
		assert.Equal(t, model.RouteAnswer, d.Route)
	})

	t.Run("uppercase route normalised", func(t *testing.T) {
		d, err := ParseRouteDecision(`{"route": "RAG"}`)
		require.NoError(t, err)
		assert.Equal(t, model.RouteRAG, d.Route)
	})

	t.Run("web is not a valid classification", func(t *testing.T) {
		_, err := ParseRouteDecision(`{"route": "web"}`)
		assert.Error(t, err)
	})

	t.Run("unknown route", func(t *testing.T) {
		_, err := ParseRouteDecision(`{"route": "banana"}`)
		assert.Error(t, err)
	})

	t.Run("no json at all", func(t *testing.T) {
		_, err := ParseRouteDecision("I cannot decide")
		assert.Error(t, err)
	})

	t.Run("unterminated object", func(t *testing.T) {
		_, err := ParseRouteDecision(`{"route": "rag"`)
		assert.Error(t, err)
	})
}

func TestParseJudgeVerdict(t *testing.T) {
	t.Run("sufficient true", func(t *testing.T) {
		ok, err := ParseJudgeVerdict(`{"sufficient": true}`)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("sufficient false", func(t *testing.T) {
		ok, err := ParseJudgeVerdict(`{"sufficient": false}`)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("missing field is an error not a verdict", func(t *testing.T) {
		_, err := ParseJudgeVerdict(`{"verdict": "yes"}`)
		assert.Error(t, err)
	})

	t.Run("fenced output", func(t *testing.T) {
		ok, err := ParseJudgeVerdict("```\n{\"sufficient\": true}\n```")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestParseAnalystQuery(t *testing.T) {
	t.Run("full payload", func(t *testing.T) {
		content := `{
			"sql": "SELECT store_region, SUM(revenue) FROM bronze.sales_data GROUP BY store_region",
			"explanation": "Revenue by region",
			"params": {"p1": "2025-07-01"}
		}`
		q, err := ParseAnalystQuery(content)
		require.NoError(t, err)
		assert.Contains(t, q.SQL, "SELECT store_region")
		assert.Equal(t, "Revenue by region", q.Explanation)
		assert.Equal(t, "2025-07-01", q.Params["p1"])
	})

	t.Run("params default to empty map", func(t *testing.T) {
		q, err := ParseAnalystQuery(`{"sql": "SELECT 1", "explanation": ""}`)
		require.NoError(t, err)
		require.NotNil(t, q.Params)
		assert.Empty(t, q.Params)
	})

	t.Run("empty sql rejected", func(t *testing.T) {
		_, err := ParseAnalystQuery(`{"sql": "  ", "explanation": "nothing"}`)
		assert.Error(t, err)
	})

	t.Run("nested braces inside strings", func(t *testing.T) {
		q, err := ParseAnalystQuery(`{"sql": "SELECT '{\"a\": 1}'::jsonb", "params": {}}`)
		require.NoError(t, err)
		assert.Contains(t, q.SQL, "jsonb")
	})
}
