package store

import (
	"fmt"
	"strings"
)

// ListQuery carries the options shared by every list endpoint.
type ListQuery struct {
	Search   string
	Ordering []string
	Limit    int
	Offset   int
}

// sortFields whitelists ordering names against SQL columns.
type sortFields map[string]string

// orderBy turns ordering terms ("-price", "name") into an ORDER BY clause.
// Unknown fields are skipped; an empty result falls back to def. The primary
// key is always appended so pages are stable.
func orderBy(ordering []string, allowed sortFields, def []string, pk string) string {
	clauses := buildOrder(ordering, allowed)
	if len(clauses) == 0 {
		clauses = buildOrder(def, allowed)
	}
	clauses = append(clauses, pk+" ASC")
	return strings.Join(clauses, ", ")
}

func buildOrder(ordering []string, allowed sortFields) []string {
	clauses := make([]string, 0, len(ordering))
	seen := make(map[string]bool, len(ordering))
	for _, term := range ordering {
		term = strings.TrimSpace(term)
		dir := "ASC"
		if strings.HasPrefix(term, "-") {
			dir = "DESC"
			term = term[1:]
		}
		col, ok := allowed[term]
		if !ok || seen[col] {
			continue
		}
		seen[col] = true
		clauses = append(clauses, col+" "+dir)
	}
	return clauses
}

// searchConditions requires every whitespace separated term to match at
// least one of columns (case-insensitive substring).
func searchConditions(search string, columns []string, args map[string]interface{}) []string {
	terms := strings.Fields(search)
	conditions := make([]string, 0, len(terms))
	for i, term := range terms {
		param := fmt.Sprintf("search_%d", i)
		args[param] = "%" + escapeLike(term) + "%"

		ors := make([]string, len(columns))
		for j, col := range columns {
			ors[j] = fmt.Sprintf("%s ILIKE :%s", col, param)
		}
		conditions = append(conditions, "("+strings.Join(ors, " OR ")+")")
	}
	return conditions
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func whereClause(conditions []string) string {
	if len(conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conditions, " AND ")
}

func limitClause(q ListQuery) string {
	if q.Limit <= 0 {
		return ""
	}
	return fmt.Sprintf(" LIMIT %d OFFSET %d", q.Limit, q.Offset)
}
