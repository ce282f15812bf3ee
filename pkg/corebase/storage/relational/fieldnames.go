// Package relational is the PostgreSQL-backed corebase.Storage adapter,
// including the Join Planner that compiles a declarative Operation list
// plus QueryOptions into one round-trip SQL statement.
package relational

import "strings"

// auditColumn maps the underscore-prefixed identity/audit field names to
// their fixed relational column names. These six fields don't follow the
// generic camelCase-to-snake_case rule (naive conversion of "_orgId" would
// yield "_org_id", not "org_id") — the relational adapter special-cases
// them instead.
var auditColumn = map[string]string{
	"_id":        "id",
	"_orgId":     "org_id",
	"_created":   "created",
	"_createdBy": "created_by",
	"_updated":   "updated",
	"_updatedBy": "updated_by",
	"_deleted":   "deleted",
	"_deletedBy": "deleted_by",
}

var columnToWire = reverse(auditColumn)

func reverse(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// toColumn converts a wire field name to its relational column name.
// Underscore-prefixed audit fields use the fixed mapping above; every
// other field is converted camelCase -> snake_case.
func toColumn(wireName string) string {
	if col, ok := auditColumn[wireName]; ok {
		return col
	}
	return camelToSnake(wireName)
}

// toWireName is the inverse of toColumn, used when transforming result
// rows back into the wire shape.
func toWireName(column string) string {
	if wire, ok := columnToWire[column]; ok {
		return wire
	}
	return snakeToCamel(column)
}

func camelToSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func snakeToCamel(s string) string {
	parts := strings.Split(s, "_")
	var b strings.Builder
	for i, p := range parts {
		if p == "" {
			continue
		}
		if i == 0 {
			b.WriteString(p)
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}
