package model

// RouteDecision is the classifier's structured output. Reply is filled only
// when Route is end.
type RouteDecision struct {
	Route Route  `json:"route"`
	Reply string `json:"reply,omitempty"`
}

// AnalystQuery is one generated read-only query against the sales warehouse.
type AnalystQuery struct {
	SQL         string         `json:"sql"`
	Explanation string         `json:"explanation"`
	Params      map[string]any `json:"params"`
}

// AnalystResult is the terminal outcome of the structured-query generator.
// Exhaustion is a value, not an error: the graph proceeds to synthesis with
// whatever is here.
type AnalystResult struct {
	Success     bool             `json:"success"`
	Attempts    int              `json:"attempts"`
	SQL         string           `json:"sql,omitempty"`
	Explanation string           `json:"explanation,omitempty"`
	Rows        []map[string]any `json:"data,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// WebResult is a single external search hit.
type WebResult struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url"`
}
