package parsers

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/salesight-poc/server/internal/agent/model"
)

// basic safety limits to avoid pathological inputs
const (
	maxContentLen = 64 * 1024 // 64KB of model output
	maxErrSnippet = 200       // limit error snippet size
)

// ParseRouteDecision parses the classifier output into a RouteDecision.
// The route must be one of the four router outcomes; anything else is an
// error so the caller can apply its deterministic fallback.
func ParseRouteDecision(content string) (*model.RouteDecision, error) {
	raw, err := extractJSONObject(content)
	if err != nil {
		return nil, fmt.Errorf("route decision: %w", err)
	}

	var payload struct {
		Route string `json:"route"`
		Reply string `json:"reply"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("route decision unmarshal: %w", err)
	}

	route, ok := model.ParseRoute(strings.ToLower(strings.TrimSpace(payload.Route)))
	if !ok {
		return nil, fmt.Errorf("route decision: unknown route %q", safeSnippet(payload.Route))
	}

	return &model.RouteDecision{
		Route: route,
		Reply: strings.TrimSpace(payload.Reply),
	}, nil
}

// ParseJudgeVerdict parses the sufficiency judge output.
func ParseJudgeVerdict(content string) (bool, error) {
	raw, err := extractJSONObject(content)
	if err != nil {
		return false, fmt.Errorf("judge verdict: %w", err)
	}

	var payload struct {
		Sufficient *bool `json:"sufficient"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return false, fmt.Errorf("judge verdict unmarshal: %w", err)
	}
	if payload.Sufficient == nil {
		return false, fmt.Errorf("judge verdict: missing sufficient field")
	}

	return *payload.Sufficient, nil
}

// ParseAnalystQuery parses the generated structured query. The sql field is
// mandatory; params defaults to an empty map so execution can bind zero
// placeholders without nil checks downstream.
func ParseAnalystQuery(content string) (*model.AnalystQuery, error) {
	raw, err := extractJSONObject(content)
	if err != nil {
		return nil, fmt.Errorf("analyst query: %w", err)
	}

	var payload struct {
		SQL         string         `json:"sql"`
		Explanation string         `json:"explanation"`
		Params      map[string]any `json:"params"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("analyst query unmarshal: %w", err)
	}

	sql := strings.TrimSpace(payload.SQL)
	if sql == "" {
		return nil, fmt.Errorf("analyst query: empty sql field")
	}
	if payload.Params == nil {
		payload.Params = map[string]any{}
	}

	return &model.AnalystQuery{
		SQL:         sql,
		Explanation: strings.TrimSpace(payload.Explanation),
		Params:      payload.Params,
	}, nil
}

// extractJSONObject locates the first balanced JSON object in model output,
// tolerating markdown code fences and prose around it.
func extractJSONObject(content string) (string, error) {
	if len(content) > maxContentLen {
		content = content[:maxContentLen]
	}
	content = stripCodeFences(content)

	start := strings.IndexByte(content, '{')
	if start < 0 {
		return "", fmt.Errorf("no json object in %q", safeSnippet(content))
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		c := content[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return content[start : i+1], nil
			}
		}
	}

	return "", fmt.Errorf("unterminated json object in %q", safeSnippet(content))
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func safeSnippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxErrSnippet {
		return s
	}
	return s[:maxErrSnippet]
}
