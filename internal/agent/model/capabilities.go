package model

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// Capability contracts the orchestration core consumes. Implementations are
// constructed explicitly and injected into the graph builder so tests can
// substitute deterministic stubs.

// RouteClassifier classifies the dialogue into one of the four router
// outcomes.
type RouteClassifier interface {
	Classify(ctx context.Context, messages []*schema.Message) (*RouteDecision, error)
}

// SufficiencyJudge decides whether retrieved evidence is adequate to answer
// the question. Implementations must be conservative: ambiguity reads as
// insufficient.
type SufficiencyJudge interface {
	Judge(ctx context.Context, question, evidence string) (bool, error)
}

// QueryGenerator turns a question into an executable read-only query. On
// retry, priorError carries the previous attempt's execution error so the
// generator can correct itself.
type QueryGenerator interface {
	Generate(ctx context.Context, question, priorError string) (*AnalystQuery, error)
}

// QueryExecutor runs a generated query with its parameters against the
// structured store.
type QueryExecutor interface {
	Execute(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
}

// AnalystRunner drives the bounded generate-execute-retry loop to a terminal
// result. The result is always a value; exhaustion is not an error.
type AnalystRunner interface {
	Run(ctx context.Context, question string) *AnalystResult
}

// EvidenceRetriever fetches ranked knowledge-base passages scoped to a
// session.
type EvidenceRetriever interface {
	Retrieve(ctx context.Context, question, sessionID string, topK int) ([]string, error)
}

// WebSearcher fetches external search results for a question.
type WebSearcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]WebResult, error)
}

// AnswerSynthesizer composes the final assistant turn from the dialogue and
// whatever context block was gathered.
type AnswerSynthesizer interface {
	Synthesize(ctx context.Context, history []*schema.Message, question, contextBlock string) (string, error)
}
