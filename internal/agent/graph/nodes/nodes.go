package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/salesight-poc/server/internal/agent/model"
	"github.com/salesight-poc/server/internal/agent/websearch"
	logx "github.com/salesight-poc/server/pkg/logger"
)

// fallbackGreeting answers an end route whose classifier reply came back
// empty.
const fallbackGreeting = "Hello! How can I help you today?"

// NewRouterPreHandler seeds per-request state before classification runs.
func NewRouterPreHandler() func(context.Context, model.QueryInput, *model.AgentState) (model.QueryInput, error) {
	return func(ctx context.Context, in model.QueryInput, s *model.AgentState) (model.QueryInput, error) {
		s.SessionID = in.SessionID
		s.Question = in.Question
		s.Messages = make([]*schema.Message, 0, len(in.History)+2)
		s.Messages = append(s.Messages, in.History...)
		s.Messages = append(s.Messages, schema.UserMessage(in.Question))
		s.Route = ""
		s.Evidence = ""
		s.WebSnippets = ""
		s.AnalystResult = nil
		s.Reply = ""
		return in, nil
	}
}

// NewRouterNode classifies the dialogue into a strategy route. Classification
// failure degrades to full synthesis rather than failing the request.
func NewRouterNode(classifier model.RouteClassifier) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in model.QueryInput) (model.NodeOutcome, error) {
		var messages []*schema.Message
		if err := compose.ProcessState(ctx, func(_ context.Context, s *model.AgentState) error {
			messages = s.Messages
			return nil
		}); err != nil {
			return model.NodeOutcome{}, fmt.Errorf("failed to access state: %w", err)
		}

		route := model.RouteAnswer
		reply := ""
		decision, err := classifier.Classify(ctx, messages)
		if err != nil {
			logx.Warn().Err(err).Str("session_id", in.SessionID).
				Msg("Route classification failed - falling back to synthesis")
		} else {
			route = decision.Route
			reply = decision.Reply
		}
		if route == model.RouteEnd && strings.TrimSpace(reply) == "" {
			reply = fallbackGreeting
		}

		if err := compose.ProcessState(ctx, func(_ context.Context, s *model.AgentState) error {
			s.Route = route
			s.Reply = reply
			return nil
		}); err != nil {
			return model.NodeOutcome{}, fmt.Errorf("failed to update state: %w", err)
		}

		logx.Debug().Str("session_id", in.SessionID).Str("route", string(route)).Msg("Question routed")
		return model.NodeOutcome{Route: route}, nil
	})
}

// NewRouterCondition maps the router's outcome onto the next node.
func NewRouterCondition() func(context.Context, model.NodeOutcome) (string, error) {
	return func(ctx context.Context, in model.NodeOutcome) (string, error) {
		switch in.Route {
		case model.RouteEnd:
			return NodeDirectReply, nil
		case model.RouteRAG:
			return NodeEvidenceRetriever, nil
		case model.RouteAnalyst:
			return NodeSQLAnalyst, nil
		case model.RouteAnswer:
			return NodeAnswerSynthesizer, nil
		default:
			logx.Warn().Str("route", string(in.Route)).Msg("Unexpected route - continuing to synthesis")
			return NodeAnswerSynthesizer, nil
		}
	}
}

// NewDirectReplyNode emits the router's short reply as the final turn.
func NewDirectReplyNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, _ model.NodeOutcome) (*schema.Message, error) {
		var reply string
		if err := compose.ProcessState(ctx, func(_ context.Context, s *model.AgentState) error {
			reply = s.Reply
			return nil
		}); err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}
		return schema.AssistantMessage(reply, nil), nil
	})
}

// NewEvidenceNode retrieves knowledge-base passages and judges their
// sufficiency. Any retrieval or judging failure reads as insufficient so the
// request falls through to web search instead of dying here.
func NewEvidenceNode(retriever model.EvidenceRetriever, judge model.SufficiencyJudge, topK int) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in model.NodeOutcome) (model.NodeOutcome, error) {
		var sessionID, question string
		if err := compose.ProcessState(ctx, func(_ context.Context, s *model.AgentState) error {
			sessionID = s.SessionID
			question = s.Question
			return nil
		}); err != nil {
			return model.NodeOutcome{}, fmt.Errorf("failed to access state: %w", err)
		}

		passages, err := retriever.Retrieve(ctx, question, sessionID, topK)
		if err != nil {
			logx.Warn().Err(err).Str("session_id", sessionID).
				Msg("Evidence retrieval failed - treating as empty")
			passages = nil
		}
		evidence := strings.Join(passages, "\n\n")

		sufficient := false
		if evidence != "" {
			sufficient, err = judge.Judge(ctx, question, evidence)
			if err != nil {
				logx.Warn().Err(err).Str("session_id", sessionID).
					Msg("Sufficiency judgment failed - treating as insufficient")
				sufficient = false
			}
		}

		route := model.RouteWeb
		if sufficient {
			route = model.RouteAnswer
		}

		if err := compose.ProcessState(ctx, func(_ context.Context, s *model.AgentState) error {
			s.Evidence = evidence
			s.Route = route
			return nil
		}); err != nil {
			return model.NodeOutcome{}, fmt.Errorf("failed to update state: %w", err)
		}

		logx.Debug().
			Str("session_id", sessionID).
			Int("passages", len(passages)).
			Bool("sufficient", sufficient).
			Msg("Evidence retrieved and judged")
		return model.NodeOutcome{Route: route}, nil
	})
}

// NewEvidenceCondition routes on the sufficiency verdict.
func NewEvidenceCondition() func(context.Context, model.NodeOutcome) (string, error) {
	return func(ctx context.Context, in model.NodeOutcome) (string, error) {
		if in.Route == model.RouteAnswer {
			return NodeAnswerSynthesizer, nil
		}
		return NodeWebFallback, nil
	}
}

// NewWebFallbackNode fetches external snippets after insufficient evidence.
// Search failure becomes a marker string in the context rather than an error,
// so synthesis still produces an answer.
func NewWebFallbackNode(searcher model.WebSearcher, maxResults int) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in model.NodeOutcome) (model.NodeOutcome, error) {
		var sessionID, question string
		if err := compose.ProcessState(ctx, func(_ context.Context, s *model.AgentState) error {
			sessionID = s.SessionID
			question = s.Question
			return nil
		}); err != nil {
			return model.NodeOutcome{}, fmt.Errorf("failed to access state: %w", err)
		}

		var snippets string
		results, err := searcher.Search(ctx, question, maxResults)
		if err != nil {
			logx.Warn().Err(err).Str("session_id", sessionID).
				Msg("Web search failed - degrading to marker")
			snippets = fmt.Sprintf("Web search failed: %v", err)
		} else {
			snippets = websearch.FormatResults(results)
		}

		if err := compose.ProcessState(ctx, func(_ context.Context, s *model.AgentState) error {
			s.WebSnippets = snippets
			s.Route = model.RouteAnswer
			return nil
		}); err != nil {
			return model.NodeOutcome{}, fmt.Errorf("failed to update state: %w", err)
		}

		logx.Debug().Str("session_id", sessionID).Int("results", len(results)).Msg("Web fallback completed")
		return model.NodeOutcome{Route: model.RouteAnswer}, nil
	})
}

// NewAnalystNode runs the bounded generate-execute-retry loop. The result is
// always a value; exhaustion flows into synthesis as a failed result.
func NewAnalystNode(runner model.AnalystRunner) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in model.NodeOutcome) (model.NodeOutcome, error) {
		var sessionID, question string
		if err := compose.ProcessState(ctx, func(_ context.Context, s *model.AgentState) error {
			sessionID = s.SessionID
			question = s.Question
			return nil
		}); err != nil {
			return model.NodeOutcome{}, fmt.Errorf("failed to access state: %w", err)
		}

		result := runner.Run(ctx, question)

		if err := compose.ProcessState(ctx, func(_ context.Context, s *model.AgentState) error {
			s.AnalystResult = result
			s.Route = model.RouteAnswer
			return nil
		}); err != nil {
			return model.NodeOutcome{}, fmt.Errorf("failed to update state: %w", err)
		}

		logx.Debug().
			Str("session_id", sessionID).
			Bool("success", result.Success).
			Int("attempts", result.Attempts).
			Msg("Analyst run completed")
		return model.NodeOutcome{Route: model.RouteAnswer}, nil
	})
}

// NewAnswerNode synthesizes the final assistant turn from the gathered
// context. Synthesis failure is the one fatal path: with no answer there is
// nothing to degrade to.
func NewAnswerNode(synth model.AnswerSynthesizer) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in model.NodeOutcome) (*schema.Message, error) {
		var (
			question     string
			history      []*schema.Message
			contextBlock string
		)
		if err := compose.ProcessState(ctx, func(_ context.Context, s *model.AgentState) error {
			question = s.Question
			if n := len(s.Messages); n > 0 {
				history = s.Messages[:n-1]
			}
			contextBlock = BuildContextBlock(s)
			return nil
		}); err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		answer, err := synth.Synthesize(ctx, history, question, contextBlock)
		if err != nil {
			return nil, err
		}
		return schema.AssistantMessage(answer, nil), nil
	})
}

// NewAssistantPostHandler appends the terminal assistant turn to the
// request's message log.
func NewAssistantPostHandler() func(context.Context, *schema.Message, *model.AgentState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, s *model.AgentState) (*schema.Message, error) {
		if out != nil {
			s.Messages = append(s.Messages, out)
		}
		return out, nil
	}
}
