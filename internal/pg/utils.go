package pg

import (
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v5"
)

func parseSql(sql string) (*pg_query.ParseResult, error) {
	ast, err := pg_query.Parse(sql)
	if err != nil {
		return nil, fmt.Errorf(`failed to parse AST: %w`, err)
	}

	return ast, nil
}

func getString(node *pg_query.Node) string {
	return node.GetString_().GetSval()
}

// resolveLine returns the 1-based line of the byte offset `pos` in `sql`.
func resolveLine(sql string, pos int) int {
	if pos > len(sql) {
		pos = len(sql)
	}

	return strings.Count(sql[:max(pos, 0)], "\n") + 1
}
