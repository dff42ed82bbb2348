package warehouse

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salesight-poc/server/internal/agent/model"
	errx "github.com/salesight-poc/server/internal/core/error"
	logx "github.com/salesight-poc/server/pkg/logger"
)

// DefaultMaxRows is the ceiling applied to unbounded generated queries.
const DefaultMaxRows = 100

// SalesStore executes generated read-only queries against the
// bronze.sales_data analytical table.
type SalesStore struct {
	pool    *pgxpool.Pool
	maxRows int
}

func NewSalesStore(pool *pgxpool.Pool, maxRows int) *SalesStore {
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	return &SalesStore{pool: pool, maxRows: maxRows}
}

// Execute validates, binds, bounds, and runs one generated query. Execution
// errors come back verbatim so the generator's retry prompt can correct the
// statement.
func (s *SalesStore) Execute(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	if err := validateReadOnly(query); err != nil {
		return nil, err
	}

	stmt, args, err := bindNamedParams(query, params)
	if err != nil {
		return nil, err
	}
	stmt = ensureRowLimit(stmt, s.maxRows)

	logx.Debug().
		Str("sql", strings.TrimSpace(stmt)).
		Int("param_count", len(args)).
		Msg("executing analyst query")

	rows, err := s.pool.Query(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var out []map[string]any
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, errx.WrapPostgres(err)
		}
		row := make(map[string]any, len(fields))
		for i, fd := range fields {
			row[fd.Name] = vals[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

var _ model.QueryExecutor = (*SalesStore)(nil)
