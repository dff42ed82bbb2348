package model

import "time"

// ================ Config ================

type RouterModelConfig struct {
	Model       string  `envconfig:"ROUTER_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"ROUTER_MAX_TOKENS" default:"1000"`
	Temperature float32 `envconfig:"ROUTER_TEMPERATURE" default:"0"`
}

type JudgeModelConfig struct {
	Model       string  `envconfig:"JUDGE_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens   int     `envconfig:"JUDGE_MAX_TOKENS" default:"500"`
	Temperature float32 `envconfig:"JUDGE_TEMPERATURE" default:"0"`
}

type AnalystModelConfig struct {
	Model       string  `envconfig:"ANALYST_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"ANALYST_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"ANALYST_TEMPERATURE" default:"0"`
	MaxAttempts int     `envconfig:"ANALYST_MAX_ATTEMPTS" default:"5"`
	MaxRows     int     `envconfig:"ANALYST_MAX_ROWS" default:"100"`
}

type AnswerModelConfig struct {
	Model       string  `envconfig:"ANSWER_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"ANSWER_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"ANSWER_TEMPERATURE" default:"0.7"`
}

type RetrievalConfig struct {
	TopK           int    `envconfig:"RETRIEVAL_TOP_K" default:"5"`
	EmbeddingModel string `envconfig:"RETRIEVAL_EMBEDDING_MODEL" default:"gemini-embedding-001"`
}

type SessionConfig struct {
	TTL      time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	MaxTurns int           `envconfig:"SESSION_MAX_TURNS" default:"20"`
}
