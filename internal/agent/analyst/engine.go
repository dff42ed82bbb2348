package analyst

import (
	"context"

	"github.com/salesight-poc/server/internal/agent/model"
	logx "github.com/salesight-poc/server/pkg/logger"
)

// DefaultMaxAttempts bounds the generate-execute loop.
const DefaultMaxAttempts = 5

// QueryAttempt carries the state of one generate-execute iteration. LastError
// feeds the next attempt's generation prompt, so attempts are strictly
// sequential.
type QueryAttempt struct {
	Number    int // 1-indexed
	Query     string
	Params    map[string]any
	LastError string
}

// Engine drives the structured-query state machine:
// Generating -> Executing -> {Success | Failing -> Generating | Exhausted}.
// A terminal outcome is always a value; exhaustion never aborts the
// conversation turn.
type Engine struct {
	gen         model.QueryGenerator
	exec        model.QueryExecutor
	maxAttempts int
}

func NewEngine(gen model.QueryGenerator, exec model.QueryExecutor, maxAttempts int) *Engine {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Engine{gen: gen, exec: exec, maxAttempts: maxAttempts}
}

// Run executes the bounded retry loop for one question. Generation failures
// and execution failures both consume an attempt and feed their error text
// into the next generation prompt.
func (e *Engine) Run(ctx context.Context, question string) *model.AnalystResult {
	attempt := QueryAttempt{Number: 1}
	var explanation string

	for ; attempt.Number <= e.maxAttempts; attempt.Number++ {
		q, err := e.gen.Generate(ctx, question, attempt.LastError)
		if err != nil {
			attempt.LastError = err.Error()
			logx.Warn().
				Int("attempt", attempt.Number).
				Err(err).
				Msg("query generation failed")
			continue
		}
		attempt.Query = q.SQL
		attempt.Params = q.Params
		explanation = q.Explanation

		rows, err := e.exec.Execute(ctx, q.SQL, q.Params)
		if err != nil {
			attempt.LastError = err.Error()
			logx.Warn().
				Int("attempt", attempt.Number).
				Str("sql", q.SQL).
				Err(err).
				Msg("query execution failed")
			continue
		}

		logx.Debug().
			Int("attempt", attempt.Number).
			Int("row_count", len(rows)).
			Msg("analyst query succeeded")
		return &model.AnalystResult{
			Success:     true,
			Attempts:    attempt.Number,
			SQL:         q.SQL,
			Explanation: explanation,
			Rows:        rows,
		}
	}

	logx.Warn().
		Int("attempts", e.maxAttempts).
		Str("last_error", attempt.LastError).
		Msg("analyst attempts exhausted")
	return &model.AnalystResult{
		Success:     false,
		Attempts:    e.maxAttempts,
		SQL:         attempt.Query,
		Explanation: explanation,
		Error:       attempt.LastError,
	}
}

var _ model.AnalystRunner = (*Engine)(nil)
