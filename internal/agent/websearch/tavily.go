package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/salesight-poc/server/internal/agent/model"
	logx "github.com/salesight-poc/server/pkg/logger"
)

const (
	DefaultEndpoint   = "https://api.tavily.com/search"
	DefaultMaxResults = 3
)

type Config struct {
	APIKey     string        `envconfig:"api_key" required:"true"`
	Endpoint   string        `envconfig:"endpoint" default:"https://api.tavily.com/search"`
	MaxResults int           `envconfig:"max_results" default:"3"`
	Timeout    time.Duration `envconfig:"timeout" default:"15s"`
}

// Client searches the web through the Tavily REST API.
type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

type searchRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
	Topic      string `json:"topic"`
}

type searchResponse struct {
	Results []struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		URL     string `json:"url"`
	} `json:"results"`
}

func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]model.WebResult, error) {
	if maxResults <= 0 {
		maxResults = c.cfg.MaxResults
	}

	body, err := json.Marshal(searchRequest{
		APIKey:     c.cfg.APIKey,
		Query:      query,
		MaxResults: maxResults,
		Topic:      "general",
	})
	if err != nil {
		return nil, fmt.Errorf("encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("search returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	results := make([]model.WebResult, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if len(results) >= maxResults {
			break
		}
		results = append(results, model.WebResult{
			Title:   r.Title,
			Content: r.Content,
			URL:     r.URL,
		})
	}

	logx.Debug().
		Str("query", query).
		Int("results", len(results)).
		Msg("web search")

	return results, nil
}

// FormatResults renders results as titled blocks for the answer prompt.
func FormatResults(results []model.WebResult) string {
	if len(results) == 0 {
		return "No results found"
	}

	blocks := make([]string, 0, len(results))
	for _, r := range results {
		blocks = append(blocks, fmt.Sprintf("Title: %s\nContent: %s\nURL: %s", r.Title, r.Content, r.URL))
	}
	return strings.Join(blocks, "\n\n")
}

var _ model.WebSearcher = (*Client)(nil)
