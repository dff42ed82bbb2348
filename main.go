package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/salesight-poc/server/internal/agent/graph"
	"github.com/salesight-poc/server/internal/agent/graph/conversations"
	"github.com/salesight-poc/server/internal/agent/model"
	"github.com/salesight-poc/server/internal/agent/repo"
	"github.com/salesight-poc/server/internal/agent/websearch"
	"github.com/salesight-poc/server/internal/core"
	logx "github.com/salesight-poc/server/pkg/logger"
	pkgpostgres "github.com/salesight-poc/server/pkg/postgres"
	pkgredis "github.com/salesight-poc/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the agent example,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"`

	// Infrastructure
	Redis     pkgredis.Config
	Warehouse pkgpostgres.Config `envconfig:"WAREHOUSE"`
	Knowledge pkgpostgres.Config `envconfig:"KNOWLEDGE"`

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	Router    model.RouterModelConfig
	Judge     model.JudgeModelConfig
	Analyst   model.AnalystModelConfig
	Answer    model.AnswerModelConfig
	Retrieval model.RetrievalConfig
	Session   model.SessionConfig
	WebSearch websearch.Config `envconfig:"TAVILY"`
}

func main() {
	ctx := context.Background()

	// Load .env file
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Load structured config from env
	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(envCfg.Environment)})

	rdb, err := envCfg.Redis.New()
	if err != nil {
		log.Fatalf("Failed to initialise Redis client: %v", err)
	}
	defer rdb.Close()

	warehousePool, err := envCfg.Warehouse.New(ctx)
	if err != nil {
		log.Fatalf("Failed to initialise warehouse pool: %v", err)
	}
	defer warehousePool.Close()

	knowledgePool, err := envCfg.Knowledge.New(ctx)
	if err != nil {
		log.Fatalf("Failed to initialise knowledge pool: %v", err)
	}
	defer knowledgePool.Close()

	fmt.Println("Connected to Redis and Postgres successfully")

	// ====================================================
	// Build graph config entirely from env
	runner, err := graph.BuildOrchestrationGraph(ctx, graph.Config{
		APIKey:        envCfg.APIKey,
		BaseURL:       envCfg.BaseURL,
		RouterModel:   envCfg.Router,
		JudgeModel:    envCfg.Judge,
		AnalystModel:  envCfg.Analyst,
		AnswerModel:   envCfg.Answer,
		Retrieval:     envCfg.Retrieval,
		WebSearch:     envCfg.WebSearch,
		WarehousePool: warehousePool,
		KnowledgePool: knowledgePool,
	})
	if err != nil {
		log.Fatalf("Failed to build graph: %v", err)
	}

	sessionRepo := repo.NewRedisSessionRepository(rdb, envCfg.Session.TTL)
	mm := conversations.NewMessagesManager(sessionRepo, envCfg.Session)
	svc := graph.NewService(runner, mm)

	testQueries := []struct {
		description string
		question    string
	}{
		{
			description: "Greeting short-circuits at the router",
			question:    "hi",
		},
		{
			description: "Knowledge-base question",
			question:    "what is our return policy?",
		},
		{
			description: "Analytics question against the warehouse",
			question:    "total revenue by region last month",
		},
	}

	sessionID := "test-session-123451"

	for i, test := range testQueries {
		fmt.Printf("\nTest %d: %s\n", i+1, test.description)
		fmt.Printf("Question: \"%s\"\n", test.question)
		fmt.Println("Processing...")

		result, err := svc.Ask(ctx, sessionID, test.question)
		if err != nil {
			log.Fatalf("Failed to answer question %d: %v", i+1, err)
		}

		fmt.Printf("Answer %d: %s\n", i+1, result.Answer)
		fmt.Println("─────────────────────────────────────────────")

		// slight delay between tests for readability
		time.Sleep(500 * time.Millisecond)
	}

	fmt.Println("All questions answered.")
}
