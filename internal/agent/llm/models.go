package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"google.golang.org/genai"

	"github.com/salesight-poc/server/internal/agent/model"
	logx "github.com/salesight-poc/server/pkg/logger"
)

// ChatModelConfig holds the configuration for chat model creation.
type ChatModelConfig struct {
	APIKey        string
	BaseURL       string
	RouterConfig  *model.RouterModelConfig
	JudgeConfig   *model.JudgeModelConfig
	AnalystConfig *model.AnalystModelConfig
	AnswerConfig  *model.AnswerModelConfig
}

// ChatModels holds one chat model per capability role, sharing a single
// Gemini client. Router, judge, and analyst run with thinking disabled so
// their structured outputs stay deterministic; the answer model keeps a
// thinking budget.
type ChatModels struct {
	Router  *gemini.ChatModel
	Judge   *gemini.ChatModel
	Analyst *gemini.ChatModel
	Answer  *gemini.ChatModel

	RouterModelName  string
	JudgeModelName   string
	AnalystModelName string
	AnswerModelName  string

	// Client is the shared genai client, reused by the embedding layer.
	Client *genai.Client
}

// NewChatModels creates the capability chat models with the given configuration.
func NewChatModels(ctx context.Context, config ChatModelConfig) (*ChatModels, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	router, err := newChatModel(ctx, client, config.RouterConfig.Model,
		config.RouterConfig.Temperature, config.RouterConfig.MaxTokens, 0)
	if err != nil {
		return nil, fmt.Errorf("error creating router model: %w", err)
	}

	judge, err := newChatModel(ctx, client, config.JudgeConfig.Model,
		config.JudgeConfig.Temperature, config.JudgeConfig.MaxTokens, 0)
	if err != nil {
		return nil, fmt.Errorf("error creating judge model: %w", err)
	}

	analyst, err := newChatModel(ctx, client, config.AnalystConfig.Model,
		config.AnalystConfig.Temperature, config.AnalystConfig.MaxTokens, 0)
	if err != nil {
		return nil, fmt.Errorf("error creating analyst model: %w", err)
	}

	answer, err := newChatModel(ctx, client, config.AnswerConfig.Model,
		config.AnswerConfig.Temperature, config.AnswerConfig.MaxTokens, 2000)
	if err != nil {
		return nil, fmt.Errorf("error creating answer model: %w", err)
	}

	return &ChatModels{
		Router:           router,
		Judge:            judge,
		Analyst:          analyst,
		Answer:           answer,
		RouterModelName:  config.RouterConfig.Model,
		JudgeModelName:   config.JudgeConfig.Model,
		AnalystModelName: config.AnalystConfig.Model,
		AnswerModelName:  config.AnswerConfig.Model,
		Client:           client,
	}, nil
}

func newChatModel(ctx context.Context, client *genai.Client, name string, temperature float32, maxTokens int, thinkingBudget int32) (*gemini.ChatModel, error) {
	cfg := &gemini.Config{
		Client:      client,
		Model:       name,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: thinkingBudget > 0,
			ThinkingBudget:  genai.Ptr(thinkingBudget),
		},
	}
	cm, err := gemini.NewChatModel(ctx, cfg)
	if err != nil {
		logx.Error().Err(err).Str("model", name).Msg("Error creating chat model")
		return nil, err
	}
	return cm, nil
}
