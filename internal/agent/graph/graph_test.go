package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesight-poc/server/internal/agent/model"
)

type stubClassifier struct {
	decision *model.RouteDecision
	err      error
	calls    int
}

func (s *stubClassifier) Classify(ctx context.Context, messages []*schema.Message) (*model.RouteDecision, error) {
	s.calls++
	return s.decision, s.err
}

type stubJudge struct {
	verdict     bool
	err         error
	calls       int
	gotEvidence string
}

func (s *stubJudge) Judge(ctx context.Context, question, evidence string) (bool, error) {
	s.calls++
	s.gotEvidence = evidence
	return s.verdict, s.err
}

type stubRetriever struct {
	passages []string
	err      error
	calls    int
	gotTopK  int
}

func (s *stubRetriever) Retrieve(ctx context.Context, question, sessionID string, topK int) ([]string, error) {
	s.calls++
	s.gotTopK = topK
	return s.passages, s.err
}

type stubSearcher struct {
	results []model.WebResult
	err     error
	calls   int
	gotMax  int
}

func (s *stubSearcher) Search(ctx context.Context, query string, maxResults int) ([]model.WebResult, error) {
	s.calls++
	s.gotMax = maxResults
	return s.results, s.err
}

type stubAnalyst struct {
	result *model.AnalystResult
	calls  int
}

func (s *stubAnalyst) Run(ctx context.Context, question string) *model.AnalystResult {
	s.calls++
	return s.result
}

type stubSynthesizer struct {
	answer      string
	err         error
	calls       int
	gotQuestion string
	gotContext  string
	gotHistory  []*schema.Message
}

func (s *stubSynthesizer) Synthesize(ctx context.Context, history []*schema.Message, question, contextBlock string) (string, error) {
	s.calls++
	s.gotQuestion = question
	s.gotContext = contextBlock
	s.gotHistory = history
	return s.answer, s.err
}

type testCaps struct {
	classifier *stubClassifier
	judge      *stubJudge
	retriever  *stubRetriever
	searcher   *stubSearcher
	analyst    *stubAnalyst
	synth      *stubSynthesizer
}

func defaultCaps() *testCaps {
	return &testCaps{
		classifier: &stubClassifier{decision: &model.RouteDecision{Route: model.RouteAnswer}},
		judge:      &stubJudge{},
		retriever:  &stubRetriever{},
		searcher:   &stubSearcher{},
		analyst:    &stubAnalyst{result: &model.AnalystResult{Success: true}},
		synth:      &stubSynthesizer{answer: "synthesized answer"},
	}
}

func newTestRunner(t *testing.T, caps *testCaps) Runner {
	t.Helper()
	runnable, err := BuildGraph(context.Background(), &GraphConfig{
		Capabilities: &Capabilities{
			Classifier:  caps.classifier,
			Judge:       caps.judge,
			Retriever:   caps.retriever,
			Searcher:    caps.searcher,
			Analyst:     caps.analyst,
			Synthesizer: caps.synth,
		},
		TopK:          5,
		WebMaxResults: 3,
	})
	require.NoError(t, err)
	return &graphRunner{runnable: runnable}
}

func TestGraphEndRoute(t *testing.T) {
	ctx := context.Background()

	t.Run("greeting short-circuits at the router", func(t *testing.T) {
		caps := defaultCaps()
		caps.classifier.decision = &model.RouteDecision{Route: model.RouteEnd, Reply: "Hello! How can I help?"}
		runner := newTestRunner(t, caps)

		history := []*schema.Message{
			schema.UserMessage("earlier"),
			schema.AssistantMessage("earlier answer", nil),
		}
		result, err := runner.Run(ctx, model.QueryInput{SessionID: "s1", Question: "hi", History: history})
		require.NoError(t, err)

		assert.Equal(t, "Hello! How can I help?", result.Answer)
		require.Len(t, result.Messages, 4)
		assert.Equal(t, "earlier", result.Messages[0].Content)
		assert.Equal(t, "hi", result.Messages[2].Content)
		assert.Equal(t, schema.Assistant, result.Messages[3].Role)

		// nothing past the router runs
		assert.Zero(t, caps.retriever.calls)
		assert.Zero(t, caps.judge.calls)
		assert.Zero(t, caps.searcher.calls)
		assert.Zero(t, caps.analyst.calls)
		assert.Zero(t, caps.synth.calls)
	})

	t.Run("empty end reply gets a greeting", func(t *testing.T) {
		caps := defaultCaps()
		caps.classifier.decision = &model.RouteDecision{Route: model.RouteEnd, Reply: ""}
		runner := newTestRunner(t, caps)

		result, err := runner.Run(ctx, model.QueryInput{SessionID: "s1", Question: "hi"})
		require.NoError(t, err)
		assert.NotEmpty(t, result.Answer)
	})
}

func TestGraphRAGRoute(t *testing.T) {
	ctx := context.Background()

	t.Run("sufficient evidence never touches web search", func(t *testing.T) {
		caps := defaultCaps()
		caps.classifier.decision = &model.RouteDecision{Route: model.RouteRAG}
		caps.retriever.passages = []string{"returns accepted within 30 days", "refunds in 5 business days"}
		caps.judge.verdict = true
		runner := newTestRunner(t, caps)

		result, err := runner.Run(ctx, model.QueryInput{SessionID: "s1", Question: "what is our return policy?"})
		require.NoError(t, err)
		assert.Equal(t, "synthesized answer", result.Answer)

		assert.Equal(t, 1, caps.retriever.calls)
		assert.Equal(t, 5, caps.retriever.gotTopK)
		assert.Equal(t, 1, caps.judge.calls)
		assert.Equal(t, "returns accepted within 30 days\n\nrefunds in 5 business days", caps.judge.gotEvidence)
		assert.Zero(t, caps.searcher.calls)
		assert.Zero(t, caps.analyst.calls)

		assert.Contains(t, caps.synth.gotContext, "Knowledge Base Information:")
		assert.Contains(t, caps.synth.gotContext, "returns accepted within 30 days")
		assert.NotContains(t, caps.synth.gotContext, "Web Search Results:")
	})

	t.Run("insufficient evidence falls back to web before synthesis", func(t *testing.T) {
		caps := defaultCaps()
		caps.classifier.decision = &model.RouteDecision{Route: model.RouteRAG}
		caps.retriever.passages = []string{"partial info"}
		caps.judge.verdict = false
		caps.searcher.results = []model.WebResult{
			{Title: "Policy", Content: "full info", URL: "https://example.com"},
		}
		runner := newTestRunner(t, caps)

		_, err := runner.Run(ctx, model.QueryInput{SessionID: "s1", Question: "policy?"})
		require.NoError(t, err)

		assert.Equal(t, 1, caps.searcher.calls)
		assert.Equal(t, 3, caps.searcher.gotMax)
		assert.Contains(t, caps.synth.gotContext, "Knowledge Base Information:\npartial info")
		assert.Contains(t, caps.synth.gotContext, "Web Search Results:")
		assert.Contains(t, caps.synth.gotContext, "Title: Policy")
	})

	t.Run("zero passages skip the judge and go straight to web", func(t *testing.T) {
		caps := defaultCaps()
		caps.classifier.decision = &model.RouteDecision{Route: model.RouteRAG}
		caps.retriever.passages = nil
		caps.searcher.results = []model.WebResult{{Title: "W", Content: "c", URL: "u"}}
		runner := newTestRunner(t, caps)

		_, err := runner.Run(ctx, model.QueryInput{SessionID: "s1", Question: "anything new?"})
		require.NoError(t, err)

		assert.Zero(t, caps.judge.calls)
		assert.Equal(t, 1, caps.searcher.calls)
		assert.NotContains(t, caps.synth.gotContext, "Knowledge Base Information:")
		assert.Contains(t, caps.synth.gotContext, "Web Search Results:")
	})

	t.Run("retrieval failure degrades to web instead of failing", func(t *testing.T) {
		caps := defaultCaps()
		caps.classifier.decision = &model.RouteDecision{Route: model.RouteRAG}
		caps.retriever.err = errors.New("index unavailable")
		caps.searcher.results = []model.WebResult{{Title: "W", Content: "c", URL: "u"}}
		runner := newTestRunner(t, caps)

		result, err := runner.Run(ctx, model.QueryInput{SessionID: "s1", Question: "q"})
		require.NoError(t, err)
		assert.Equal(t, "synthesized answer", result.Answer)
		assert.Zero(t, caps.judge.calls)
		assert.Equal(t, 1, caps.searcher.calls)
	})

	t.Run("judge failure reads as insufficient", func(t *testing.T) {
		caps := defaultCaps()
		caps.classifier.decision = &model.RouteDecision{Route: model.RouteRAG}
		caps.retriever.passages = []string{"something"}
		caps.judge.err = errors.New("judge model down")
		runner := newTestRunner(t, caps)

		_, err := runner.Run(ctx, model.QueryInput{SessionID: "s1", Question: "q"})
		require.NoError(t, err)
		assert.Equal(t, 1, caps.searcher.calls)
	})

	t.Run("web failure becomes a marker in the context", func(t *testing.T) {
		caps := defaultCaps()
		caps.classifier.decision = &model.RouteDecision{Route: model.RouteRAG}
		caps.judge.verdict = false
		caps.searcher.err = errors.New("tavily timeout")
		runner := newTestRunner(t, caps)

		result, err := runner.Run(ctx, model.QueryInput{SessionID: "s1", Question: "q"})
		require.NoError(t, err)
		assert.Equal(t, "synthesized answer", result.Answer)
		assert.Contains(t, caps.synth.gotContext, "Web search failed:")
		assert.Contains(t, caps.synth.gotContext, "tavily timeout")
	})
}

func TestGraphAnalystRoute(t *testing.T) {
	ctx := context.Background()

	t.Run("analyst result flows into synthesis", func(t *testing.T) {
		caps := defaultCaps()
		caps.classifier.decision = &model.RouteDecision{Route: model.RouteAnalyst}
		caps.analyst.result = &model.AnalystResult{
			Success:     true,
			Attempts:    2,
			SQL:         "SELECT store_region, SUM(revenue) FROM bronze.sales_data GROUP BY store_region",
			Explanation: "Revenue per region",
			Rows:        []map[string]any{{"store_region": "North", "sum": 42.0}},
		}
		runner := newTestRunner(t, caps)

		result, err := runner.Run(ctx, model.QueryInput{SessionID: "s1", Question: "total revenue by region"})
		require.NoError(t, err)
		assert.Equal(t, "synthesized answer", result.Answer)

		assert.Equal(t, 1, caps.analyst.calls)
		assert.Zero(t, caps.retriever.calls)
		assert.Zero(t, caps.searcher.calls)
		assert.Contains(t, caps.synth.gotContext, "Analyst Results:")
		assert.Contains(t, caps.synth.gotContext, "North")
	})

	t.Run("exhausted analyst still produces an answer", func(t *testing.T) {
		caps := defaultCaps()
		caps.classifier.decision = &model.RouteDecision{Route: model.RouteAnalyst}
		caps.analyst.result = &model.AnalystResult{
			Success:  false,
			Attempts: 5,
			Error:    "syntax error at or near FROM",
		}
		runner := newTestRunner(t, caps)

		result, err := runner.Run(ctx, model.QueryInput{SessionID: "s1", Question: "broken question"})
		require.NoError(t, err)
		assert.Equal(t, "synthesized answer", result.Answer)
		assert.Contains(t, caps.synth.gotContext, "No analyst data available.")
		assert.Contains(t, caps.synth.gotContext, "syntax error")
	})
}

func TestGraphAnswerRoute(t *testing.T) {
	ctx := context.Background()

	t.Run("direct synthesis uses no external context", func(t *testing.T) {
		caps := defaultCaps()
		caps.classifier.decision = &model.RouteDecision{Route: model.RouteAnswer}
		runner := newTestRunner(t, caps)

		_, err := runner.Run(ctx, model.QueryInput{SessionID: "s1", Question: "tell me a joke"})
		require.NoError(t, err)

		assert.Equal(t, "No external context available.", caps.synth.gotContext)
		assert.Equal(t, "tell me a joke", caps.synth.gotQuestion)
		assert.Zero(t, caps.retriever.calls)
		assert.Zero(t, caps.analyst.calls)
	})

	t.Run("classifier failure degrades to synthesis", func(t *testing.T) {
		caps := defaultCaps()
		caps.classifier.err = errors.New("model unavailable")
		runner := newTestRunner(t, caps)

		result, err := runner.Run(ctx, model.QueryInput{SessionID: "s1", Question: "q"})
		require.NoError(t, err)
		assert.Equal(t, "synthesized answer", result.Answer)
		assert.Equal(t, 1, caps.synth.calls)
	})

	t.Run("synthesis failure fails the run", func(t *testing.T) {
		caps := defaultCaps()
		caps.synth.err = errors.New("completion failed")
		runner := newTestRunner(t, caps)

		_, err := runner.Run(ctx, model.QueryInput{SessionID: "s1", Question: "q"})
		assert.Error(t, err)
	})

	t.Run("synthesizer sees history without the current question turn", func(t *testing.T) {
		caps := defaultCaps()
		runner := newTestRunner(t, caps)

		history := []*schema.Message{
			schema.UserMessage("first"),
			schema.AssistantMessage("first answer", nil),
		}
		_, err := runner.Run(ctx, model.QueryInput{SessionID: "s1", Question: "second", History: history})
		require.NoError(t, err)

		require.Len(t, caps.synth.gotHistory, 2)
		assert.Equal(t, "first", caps.synth.gotHistory[0].Content)
	})
}

func TestGraphInputValidation(t *testing.T) {
	ctx := context.Background()
	runner := newTestRunner(t, defaultCaps())

	t.Run("empty session id", func(t *testing.T) {
		_, err := runner.Run(ctx, model.QueryInput{SessionID: " ", Question: "q"})
		assert.Error(t, err)
	})

	t.Run("empty question", func(t *testing.T) {
		_, err := runner.Run(ctx, model.QueryInput{SessionID: "s1", Question: ""})
		assert.Error(t, err)
	})
}

func TestGraphRepeatedInvocations(t *testing.T) {
	ctx := context.Background()

	t.Run("runs are independent", func(t *testing.T) {
		caps := defaultCaps()
		caps.classifier.decision = &model.RouteDecision{Route: model.RouteRAG}
		caps.retriever.passages = []string{"kb text"}
		caps.judge.verdict = true
		runner := newTestRunner(t, caps)

		for i := 0; i < 3; i++ {
			result, err := runner.Run(ctx, model.QueryInput{SessionID: "s1", Question: "policy?"})
			require.NoError(t, err)
			require.Len(t, result.Messages, 2)
		}
		assert.Equal(t, 3, caps.retriever.calls)
		assert.Equal(t, 3, caps.synth.calls)
	})
}
