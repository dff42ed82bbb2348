package knowledge

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/salesight-poc/server/internal/agent/model"
	logx "github.com/salesight-poc/server/pkg/logger"
)

const DefaultTopK = 5

// Store retrieves knowledge base passages by vector similarity. Passages are
// scoped to a session so tenants never see each other's documents.
type Store struct {
	pool     *pgxpool.Pool
	embedder Embedder
}

func NewStore(pool *pgxpool.Pool, embedder Embedder) *Store {
	return &Store{pool: pool, embedder: embedder}
}

// EnsureSchema creates the pgvector extension and chunk table if missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS knowledge_chunks (
			id BIGSERIAL PRIMARY KEY,
			session_id TEXT NOT NULL,
			content TEXT NOT NULL,
			embedding vector(3072) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_knowledge_chunks_session
			ON knowledge_chunks (session_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// AddPassages embeds and stores passages under the given session.
func (s *Store) AddPassages(ctx context.Context, sessionID string, passages []string) error {
	for _, passage := range passages {
		if passage == "" {
			continue
		}
		vec, err := s.embedder.EmbedPassage(ctx, passage)
		if err != nil {
			return fmt.Errorf("embed passage: %w", err)
		}
		_, err = s.pool.Exec(ctx,
			`INSERT INTO knowledge_chunks (session_id, content, embedding) VALUES ($1, $2, $3)`,
			sessionID, passage, pgvector.NewVector(vec),
		)
		if err != nil {
			return fmt.Errorf("insert passage: %w", err)
		}
	}
	return nil
}

// Retrieve returns the topK most similar passages for the question within the
// session's corpus, nearest first.
func (s *Store) Retrieve(ctx context.Context, question, sessionID string, topK int) ([]string, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	vec, err := s.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT content FROM knowledge_chunks
		 WHERE session_id = $1
		 ORDER BY embedding <-> $2
		 LIMIT $3`,
		sessionID, pgvector.NewVector(vec), topK,
	)
	if err != nil {
		return nil, fmt.Errorf("similarity query: %w", err)
	}
	defer rows.Close()

	var passages []string
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, fmt.Errorf("scan passage: %w", err)
		}
		passages = append(passages, content)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read passages: %w", err)
	}

	logx.Debug().
		Str("session_id", sessionID).
		Int("top_k", topK).
		Int("found", len(passages)).
		Msg("knowledge retrieval")

	return passages, nil
}

var _ model.EvidenceRetriever = (*Store)(nil)
