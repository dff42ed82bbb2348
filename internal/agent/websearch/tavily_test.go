package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesight-poc/server/internal/agent/model"
)

func TestClientSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("sends request and decodes results", func(t *testing.T) {
		var got searchRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

			json.NewEncoder(w).Encode(map[string]any{
				"results": []map[string]string{
					{"title": "Return policies", "content": "30 days", "url": "https://example.com/a"},
					{"title": "More", "content": "details", "url": "https://example.com/b"},
				},
			})
		}))
		defer srv.Close()

		c := NewClient(Config{APIKey: "key", Endpoint: srv.URL})
		results, err := c.Search(ctx, "return policy", 3)
		require.NoError(t, err)

		assert.Equal(t, "key", got.APIKey)
		assert.Equal(t, "return policy", got.Query)
		assert.Equal(t, 3, got.MaxResults)
		assert.Equal(t, "general", got.Topic)

		require.Len(t, results, 2)
		assert.Equal(t, "Return policies", results[0].Title)
		assert.Equal(t, "https://example.com/b", results[1].URL)
	})

	t.Run("truncates to max results", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"results": []map[string]string{
					{"title": "a"}, {"title": "b"}, {"title": "c"}, {"title": "d"},
				},
			})
		}))
		defer srv.Close()

		c := NewClient(Config{APIKey: "key", Endpoint: srv.URL})
		results, err := c.Search(ctx, "q", 2)
		require.NoError(t, err)
		assert.Len(t, results, 2)
	})

	t.Run("non-200 is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		}))
		defer srv.Close()

		c := NewClient(Config{APIKey: "bad", Endpoint: srv.URL})
		_, err := c.Search(ctx, "q", 3)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "401")
	})

	t.Run("zero max falls back to config default", func(t *testing.T) {
		var got searchRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&got)
			json.NewEncoder(w).Encode(map[string]any{"results": []map[string]string{}})
		}))
		defer srv.Close()

		c := NewClient(Config{APIKey: "key", Endpoint: srv.URL})
		_, err := c.Search(ctx, "q", 0)
		require.NoError(t, err)
		assert.Equal(t, DefaultMaxResults, got.MaxResults)
	})
}

func TestFormatResults(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, "No results found", FormatResults(nil))
	})

	t.Run("blocks in order", func(t *testing.T) {
		out := FormatResults([]model.WebResult{
			{Title: "A", Content: "first", URL: "https://a"},
			{Title: "B", Content: "second", URL: "https://b"},
		})
		assert.Equal(t, "Title: A\nContent: first\nURL: https://a\n\nTitle: B\nContent: second\nURL: https://b", out)
	})
}
