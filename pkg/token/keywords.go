package token

import "strings"

// keywords is the reserved-word set used for highlighting. It mixes true
// reserved words with common aggregate and window function names, which
// users expect to see emphasized.
var keywords = map[string]struct{}{}

func init() {
	for _, kw := range []string{
		"SELECT", "FROM", "WHERE", "JOIN", "LEFT", "RIGHT", "INNER", "OUTER",
		"ON", "AND", "OR", "NOT", "IN", "EXISTS", "BETWEEN", "LIKE", "IS",
		"NULL", "ORDER", "BY", "GROUP", "HAVING", "LIMIT", "OFFSET", "AS",
		"INSERT", "INTO", "VALUES", "UPDATE", "SET", "DELETE", "CREATE",
		"TABLE", "ALTER", "DROP", "INDEX", "VIEW", "DISTINCT", "COUNT",
		"SUM", "AVG", "MIN", "MAX", "CASE", "WHEN", "THEN", "ELSE", "END",
		"UNION", "ALL", "ASC", "DESC", "WITH", "RECURSIVE", "CROSS", "FULL",
		"NATURAL", "USING", "EXCEPT", "INTERSECT", "TOP", "FETCH", "NEXT",
		"ROWS", "ONLY", "OVER", "PARTITION", "ROW_NUMBER", "RANK", "DENSE_RANK",
	} {
		keywords[kw] = struct{}{}
	}
}

// IsKeyword reports whether s is a reserved word, ignoring case.
func IsKeyword(s string) bool {
	_, ok := keywords[strings.ToUpper(s)]
	return ok
}
