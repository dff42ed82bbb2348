package model

import (
	"github.com/cloudwego/eino/schema"
)

// Route is the strategy tag governing which node handles a question.
type Route string

const (
	RouteEnd     Route = "end"
	RouteRAG     Route = "rag"
	RouteWeb     Route = "web"
	RouteAnalyst Route = "analyst"
	RouteAnswer  Route = "answer"
)

// ParseRoute normalises a raw classifier value into a Route. Only the four
// router outcomes are accepted; "web" is reachable solely through the
// evidence retriever's fallback and is never a classification result.
func ParseRoute(s string) (Route, bool) {
	switch Route(s) {
	case RouteEnd, RouteRAG, RouteAnalyst, RouteAnswer:
		return Route(s), true
	default:
		return "", false
	}
}

// AgentState stores per-invocation state for the orchestration graph.
// Concurrency model:
//   - This struct is registered as Graph Local State via compose.WithGenLocalState.
//   - All reads/writes happen only inside Eino state handlers:
//     WithStatePreHandler, WithStatePostHandler, or compose.ProcessState.
//   - Eino serializes access to state within these handlers, so no additional
//     mutex/atomic is required as long as you never touch it outside handlers.
//   - State is request-local; nothing here survives across invocations.
type AgentState struct {
	SessionID string
	Question  string
	Messages  []*schema.Message // append-only within a request
	Route     Route

	// At most one of the three strategy payloads is populated per request;
	// WebSnippets only ever joins Evidence after an insufficiency verdict.
	Evidence      string
	WebSnippets   string
	AnalystResult *AnalystResult

	// Reply holds the short direct reply for the end route.
	Reply string
}

// NodeOutcome is the value flowing along graph edges. It carries only the
// routing tag; strategy payloads live in AgentState so that every branch
// target shares one edge type.
type NodeOutcome struct {
	Route Route
}

// QueryInput represents one question scoped to a session, together with the
// prior dialogue loaded by the caller.
type QueryInput struct {
	SessionID string            `json:"session_id"`
	Question  string            `json:"question"`
	History   []*schema.Message `json:"-"`
}

// RunResult is the terminal output of one orchestration run. Messages is the
// full updated dialogue: prior history, the user's turn, and the new
// assistant turn.
type RunResult struct {
	Answer   string
	Messages []*schema.Message
}
