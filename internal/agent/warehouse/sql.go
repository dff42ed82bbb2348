package warehouse

import (
	"fmt"
	"regexp"
	"strings"
)

// forbiddenKeywords are statement verbs that must never appear in a generated
// query, even inside a CTE.
var forbiddenKeywords = map[string]struct{}{
	"INSERT": {}, "UPDATE": {}, "DELETE": {}, "DROP": {}, "ALTER": {},
	"TRUNCATE": {}, "CREATE": {}, "GRANT": {}, "REVOKE": {}, "COPY": {},
}

// namedParamPattern matches :p1-style placeholders. The leading group keeps
// Postgres ::type casts from being mistaken for parameters.
var namedParamPattern = regexp.MustCompile(`(^|[^:]):([a-zA-Z_][a-zA-Z0-9_]*)`)

var wordPattern = regexp.MustCompile(`[A-Za-z_]+`)

// validateReadOnly rejects anything that is not a single SELECT (or
// SELECT-producing WITH) statement.
func validateReadOnly(query string) error {
	q := strings.TrimSpace(query)
	q = strings.TrimSuffix(q, ";")
	if q == "" {
		return fmt.Errorf("empty query")
	}
	if strings.Contains(q, ";") {
		return fmt.Errorf("multiple statements are not allowed")
	}

	upper := strings.ToUpper(q)
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return fmt.Errorf("only SELECT statements are allowed")
	}

	for _, word := range wordPattern.FindAllString(upper, -1) {
		if _, bad := forbiddenKeywords[word]; bad {
			return fmt.Errorf("forbidden keyword %s in read-only query", word)
		}
	}
	return nil
}

// bindNamedParams rewrites :name placeholders into positional $n arguments,
// ordered by first appearance. Every placeholder must have a value in params.
func bindNamedParams(query string, params map[string]any) (string, []any, error) {
	var args []any
	positions := map[string]int{}
	var bindErr error

	rewritten := namedParamPattern.ReplaceAllStringFunc(query, func(match string) string {
		sub := namedParamPattern.FindStringSubmatch(match)
		prefix, name := sub[1], sub[2]

		pos, seen := positions[name]
		if !seen {
			val, ok := params[name]
			if !ok {
				if bindErr == nil {
					bindErr = fmt.Errorf("missing value for parameter :%s", name)
				}
				return match
			}
			args = append(args, val)
			pos = len(args)
			positions[name] = pos
		}
		return fmt.Sprintf("%s$%d", prefix, pos)
	})
	if bindErr != nil {
		return "", nil, bindErr
	}

	return rewritten, args, nil
}

// ensureRowLimit appends a LIMIT clause when the generated query carries
// none. The check is a plain keyword scan; a LIMIT in a subquery also counts,
// which errs on the permissive side for already-bounded queries.
func ensureRowLimit(query string, maxRows int) string {
	if maxRows <= 0 {
		return query
	}
	upper := strings.ToUpper(query)
	for _, word := range wordPattern.FindAllString(upper, -1) {
		if word == "LIMIT" {
			return query
		}
	}
	return fmt.Sprintf("%s LIMIT %d", strings.TrimSuffix(strings.TrimSpace(query), ";"), maxRows)
}
