package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salesight-poc/server/internal/agent/analyst"
	"github.com/salesight-poc/server/internal/agent/graph/nodes"
	"github.com/salesight-poc/server/internal/agent/graph/observers"
	"github.com/salesight-poc/server/internal/agent/knowledge"
	"github.com/salesight-poc/server/internal/agent/llm"
	"github.com/salesight-poc/server/internal/agent/model"
	"github.com/salesight-poc/server/internal/agent/warehouse"
	"github.com/salesight-poc/server/internal/agent/websearch"
	logx "github.com/salesight-poc/server/pkg/logger"
)

// Runner executes the compiled graph for one question.
type Runner interface {
	Run(ctx context.Context, in model.QueryInput) (*model.RunResult, error)
}

// Capabilities groups the strategy implementations injected into the graph.
// Each field satisfies one contract from the model package; tests substitute
// deterministic stubs here.
type Capabilities struct {
	Classifier  model.RouteClassifier
	Judge       model.SufficiencyJudge
	Retriever   model.EvidenceRetriever
	Searcher    model.WebSearcher
	Analyst     model.AnalystRunner
	Synthesizer model.AnswerSynthesizer
}

// GraphConfig holds all configuration needed to build the graph.
type GraphConfig struct {
	Capabilities  *Capabilities
	TopK          int
	WebMaxResults int
}

// Config holds everything needed to compose the full orchestration graph
// end-to-end. This is a convenience layer over GraphConfig that also
// constructs the chat models and data stores.
type Config struct {
	APIKey  string
	BaseURL string

	RouterModel  model.RouterModelConfig
	JudgeModel   model.JudgeModelConfig
	AnalystModel model.AnalystModelConfig
	AnswerModel  model.AnswerModelConfig
	Retrieval    model.RetrievalConfig
	WebSearch    websearch.Config

	WarehousePool *pgxpool.Pool
	KnowledgePool *pgxpool.Pool
}

// GraphBuilder handles the construction of the orchestration graph.
type GraphBuilder struct {
	config *GraphConfig
	graph  *compose.Graph[model.QueryInput, *schema.Message]
}

type graphRunner struct {
	runnable compose.Runnable[model.QueryInput, *schema.Message]
}

func (r *graphRunner) Run(ctx context.Context, in model.QueryInput) (*model.RunResult, error) {
	if strings.TrimSpace(in.SessionID) == "" {
		return nil, fmt.Errorf("session id is empty")
	}
	if strings.TrimSpace(in.Question) == "" {
		return nil, fmt.Errorf("question is empty")
	}

	out, err := r.runnable.Invoke(ctx, in, compose.WithCallbacks(observers.NewAllCallbacks()))
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("graph produced no output")
	}

	messages := make([]*schema.Message, 0, len(in.History)+2)
	messages = append(messages, in.History...)
	messages = append(messages, schema.UserMessage(in.Question))
	messages = append(messages, out)

	return &model.RunResult{
		Answer:   out.Content,
		Messages: messages,
	}, nil
}

// BuildOrchestrationGraph composes chat models, stores, and capabilities,
// builds the graph, and returns a Runner.
func BuildOrchestrationGraph(ctx context.Context, cfg Config) (Runner, error) {
	if cfg.WarehousePool == nil {
		return nil, fmt.Errorf("warehouse pool is nil")
	}
	if cfg.KnowledgePool == nil {
		return nil, fmt.Errorf("knowledge pool is nil")
	}

	cms, err := llm.NewChatModels(ctx, llm.ChatModelConfig{
		APIKey:        cfg.APIKey,
		BaseURL:       cfg.BaseURL,
		RouterConfig:  &cfg.RouterModel,
		JudgeConfig:   &cfg.JudgeModel,
		AnalystConfig: &cfg.AnalystModel,
		AnswerConfig:  &cfg.AnswerModel,
	})
	if err != nil {
		return nil, err
	}

	embedder := knowledge.NewGeminiEmbedder(cms.Client, cfg.Retrieval.EmbeddingModel)
	store := knowledge.NewStore(cfg.KnowledgePool, embedder)
	sales := warehouse.NewSalesStore(cfg.WarehousePool, cfg.AnalystModel.MaxRows)
	engine := analyst.NewEngine(
		llm.NewQueryGenerator(cms, cfg.AnalystModel.MaxRows),
		sales,
		cfg.AnalystModel.MaxAttempts,
	)

	runnable, err := BuildGraph(ctx, &GraphConfig{
		Capabilities: &Capabilities{
			Classifier:  llm.NewClassifier(cms),
			Judge:       llm.NewJudge(cms),
			Retriever:   store,
			Searcher:    websearch.NewClient(cfg.WebSearch),
			Analyst:     engine,
			Synthesizer: llm.NewSynthesizer(cms),
		},
		TopK:          cfg.Retrieval.TopK,
		WebMaxResults: cfg.WebSearch.MaxResults,
	})
	if err != nil {
		return nil, err
	}

	logx.Debug().Msg("Orchestration graph built successfully")
	return &graphRunner{runnable: runnable}, nil
}

// BuildGraph constructs and returns the compiled orchestration graph.
func BuildGraph(ctx context.Context, config *GraphConfig) (compose.Runnable[model.QueryInput, *schema.Message], error) {
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	caps := config.Capabilities
	if caps == nil || caps.Classifier == nil || caps.Judge == nil || caps.Retriever == nil ||
		caps.Searcher == nil || caps.Analyst == nil || caps.Synthesizer == nil {
		return nil, fmt.Errorf("capabilities are not properly initialized")
	}

	builder := &GraphBuilder{
		config: config,
		graph: compose.NewGraph[model.QueryInput, *schema.Message](
			compose.WithGenLocalState(func(ctx context.Context) *model.AgentState {
				return &model.AgentState{}
			}),
		),
	}

	builder.addNodes()
	builder.addEdges()

	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	return builder.compile(ctx)
}

// addNodes adds all processing nodes to the graph
func (b *GraphBuilder) addNodes() {
	caps := b.config.Capabilities

	b.graph.AddLambdaNode(nodes.NodeRouter,
		nodes.NewRouterNode(caps.Classifier),
		compose.WithStatePreHandler(nodes.NewRouterPreHandler()),
	)

	b.graph.AddLambdaNode(nodes.NodeDirectReply,
		nodes.NewDirectReplyNode(),
		compose.WithStatePostHandler(nodes.NewAssistantPostHandler()),
	)

	b.graph.AddLambdaNode(nodes.NodeEvidenceRetriever,
		nodes.NewEvidenceNode(caps.Retriever, caps.Judge, b.config.TopK),
	)

	b.graph.AddLambdaNode(nodes.NodeWebFallback,
		nodes.NewWebFallbackNode(caps.Searcher, b.config.WebMaxResults),
	)

	b.graph.AddLambdaNode(nodes.NodeSQLAnalyst,
		nodes.NewAnalystNode(caps.Analyst),
	)

	b.graph.AddLambdaNode(nodes.NodeAnswerSynthesizer,
		nodes.NewAnswerNode(caps.Synthesizer),
		compose.WithStatePostHandler(nodes.NewAssistantPostHandler()),
	)
}

// addEdges creates the unconditional flow connections between nodes
func (b *GraphBuilder) addEdges() {
	edges := [][2]string{
		{compose.START, nodes.NodeRouter},
		{nodes.NodeDirectReply, compose.END},
		{nodes.NodeWebFallback, nodes.NodeAnswerSynthesizer},
		{nodes.NodeSQLAnalyst, nodes.NodeAnswerSynthesizer},
		{nodes.NodeAnswerSynthesizer, compose.END},
	}

	for _, edge := range edges {
		b.graph.AddEdge(edge[0], edge[1])
	}
}

// addBranches creates conditional routing branches
func (b *GraphBuilder) addBranches() error {
	routerBranch := compose.NewGraphBranch(
		nodes.NewRouterCondition(),
		map[string]bool{
			nodes.NodeDirectReply:       true,
			nodes.NodeEvidenceRetriever: true,
			nodes.NodeSQLAnalyst:        true,
			nodes.NodeAnswerSynthesizer: true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeRouter, routerBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding router branch")
		return fmt.Errorf("error adding router branch: %w", err)
	}

	sufficiencyBranch := compose.NewGraphBranch(
		nodes.NewEvidenceCondition(),
		map[string]bool{
			nodes.NodeAnswerSynthesizer: true,
			nodes.NodeWebFallback:       true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeEvidenceRetriever, sufficiencyBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding sufficiency branch")
		return fmt.Errorf("error adding sufficiency branch: %w", err)
	}

	return nil
}

// compile finalizes and compiles the graph
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.QueryInput, *schema.Message], error) {
	// The longest path is router, evidence, web, answer; keep headroom for
	// branch evaluation steps.
	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(10))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}
