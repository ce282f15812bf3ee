package relational

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corebase/corebase/internal/platform/dberr"
	"github.com/corebase/corebase/pkg/corebase"
)

// runJoinedQuery compiles ops + qo into a single SQL statement against
// root's table, plus a parallel count query, and transforms the flat
// result rows into the nested shape the document backend's aggregation
// pipeline would produce for the same joins.
func runJoinedQuery(ctx context.Context, pool *pgxpool.Pool, root TableSchema, registry map[string]TableSchema, ops []corebase.Operation, qo corebase.QueryOptions) (corebase.PagedResult[map[string]any], error) {
	plan := buildPlan(root, registry, ops)

	sql, args := plan.selectSQL(qo)
	rows, err := pool.Query(ctx, sql, args...)
	if err != nil {
		return corebase.PagedResult[map[string]any]{}, dberr.Wrap(err, "get_joined")
	}
	defer rows.Close()

	entities, err := plan.scanAndTransform(rows)
	if err != nil {
		return corebase.PagedResult[map[string]any]{}, dberr.Wrap(err, "get_joined")
	}

	countSQL, countArgs := plan.countSQL(qo)
	var total int
	if err := pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return corebase.PagedResult[map[string]any]{}, dberr.Wrap(err, "get_joined_count")
	}

	return corebase.NewPagedResult(entities, total, qo.EffectivePage(), qo.PageSize), nil
}

// joinPlan holds everything derived from ops needed to emit SQL and
// transform rows, computed once per call.
type joinPlan struct {
	root     TableSchema
	registry map[string]TableSchema
	ops      []corebase.Operation
	// oneToOne preserves declaration order of LeftJoin/InnerJoin ops.
	oneToOne []corebase.Operation
	// many preserves declaration order of LeftJoinMany ops.
	many []corebase.Operation
}

func buildPlan(root TableSchema, registry map[string]TableSchema, ops []corebase.Operation) *joinPlan {
	p := &joinPlan{root: root, registry: registry, ops: ops}
	for _, op := range ops {
		switch op.Kind {
		case corebase.JoinLeft, corebase.JoinInner:
			p.oneToOne = append(p.oneToOne, op)
		case corebase.JoinLeftMany:
			p.many = append(p.many, op)
		}
	}
	return p
}

func (p *joinPlan) selectColumns() []string {
	cols := selectableColumns(p.root)
	parts := make([]string, 0, len(cols))
	for _, w := range cols {
		parts = append(parts, fmt.Sprintf("%q.%q AS %q", p.root.Table, toColumn(w), w))
	}
	return parts
}

func (p *joinPlan) fromAndJoins() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%q", p.root.Table)
	for _, op := range p.oneToOne {
		joinedSchema := p.registry[op.From]
		keyword := "LEFT JOIN"
		if op.Kind == corebase.JoinInner {
			keyword = "INNER JOIN"
		}
		localExpr := p.resolveSimpleRef(op.LocalField)
		fmt.Fprintf(&b, " %s %q AS %q ON %q.%q = %s", keyword, joinedSchema.Table, op.As, op.As, toColumn(op.ForeignField), localExpr)
		for _, w := range selectableColumns(joinedSchema) {
			fmt.Fprintf(&b, ", %q.%q AS %q", op.As, toColumn(w), op.As+"__"+w)
		}
	}
	return b.String()
}

// resolveSimpleRef resolves a one-to-one join's localField: bare fields
// are on the root table; "alias.field" refers to an earlier one-to-one
// join's table alias. LeftJoinMany aliases can't be referenced here since
// they never appear in the FROM/JOIN clause (they're correlated
// subqueries in the select list).
func (p *joinPlan) resolveSimpleRef(localField string) string {
	if !strings.Contains(localField, ".") {
		return fmt.Sprintf("%q.%q", p.root.Table, toColumn(localField))
	}
	parts := strings.SplitN(localField, ".", 2)
	return fmt.Sprintf("%q.%q", parts[0], toColumn(parts[1]))
}

// manySelectExpr builds the correlated-subquery select expression for one
// LeftJoinMany, aliased "_sub_<As>".
func (p *joinPlan) manySelectExpr(op corebase.Operation) string {
	joinedSchema := p.registry[op.From]
	subAlias := "sub_" + op.As
	buildObjArgs := make([]string, 0, len(selectableColumns(joinedSchema))*2)
	for _, w := range selectableColumns(joinedSchema) {
		buildObjArgs = append(buildObjArgs, fmt.Sprintf("'%s'", toColumn(w)), fmt.Sprintf("%q.%q", subAlias, toColumn(w)))
	}
	condition := p.correlationCondition(subAlias, toColumn(op.ForeignField), op.LocalField)
	inner := fmt.Sprintf(
		`SELECT jsonb_agg(jsonb_build_object(%s)) FROM %q AS %q WHERE %s`,
		strings.Join(buildObjArgs, ", "), joinedSchema.Table, subAlias, condition,
	)
	return fmt.Sprintf(`COALESCE((%s), '[]'::jsonb) AS %q`, inner, "_sub_"+op.As)
}

// correlationCondition resolves the WHERE condition correlating a
// LeftJoinMany subquery (aliased subAlias, matching on foreignCol) back to
// localField. Bare fields and one-to-one aliases produce a direct "=";
// a localField of "alias.field" where alias names an earlier LeftJoinMany
// recurses into a nested IN subquery, per the chained many-to-many rule.
func (p *joinPlan) correlationCondition(subAlias, foreignCol, localField string) string {
	if !strings.Contains(localField, ".") {
		return fmt.Sprintf("%q.%q = %q.%q", subAlias, foreignCol, p.root.Table, toColumn(localField))
	}
	parts := strings.SplitN(localField, ".", 2)
	aliasRef, fieldRef := parts[0], parts[1]

	if priorOp, ok := p.findMany(aliasRef); ok {
		innerSchema := p.registry[priorOp.From]
		innerAlias := "sub_" + priorOp.As
		innerCondition := p.correlationCondition(innerAlias, toColumn(priorOp.ForeignField), priorOp.LocalField)
		inner := fmt.Sprintf(`SELECT %q.%q FROM %q AS %q WHERE %s`, innerAlias, toColumn(fieldRef), innerSchema.Table, innerAlias, innerCondition)
		return fmt.Sprintf("%q.%q IN (%s)", subAlias, foreignCol, inner)
	}
	// one-to-one alias: direct column reference on its join alias.
	return fmt.Sprintf("%q.%q = %q.%q", subAlias, foreignCol, aliasRef, toColumn(fieldRef))
}

func (p *joinPlan) findMany(alias string) (corebase.Operation, bool) {
	for _, op := range p.many {
		if op.As == alias {
			return op, true
		}
	}
	return corebase.Operation{}, false
}

func (p *joinPlan) selectSQL(qo corebase.QueryOptions) (string, []any) {
	cols := p.selectColumns()
	for _, op := range p.many {
		cols = append(cols, p.manySelectExpr(op))
	}
	where, args := buildWhere(p.root, qo.Filters, nil)
	order := buildOrderBy(p.root, qo)
	sql := fmt.Sprintf("SELECT %s FROM %s%s%s", strings.Join(cols, ", "), p.fromAndJoins(), where, order)
	return sql, args
}

func (p *joinPlan) countSQL(qo corebase.QueryOptions) (string, []any) {
	where, args := buildWhere(p.root, qo.Filters, nil)
	sql := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", p.fromAndJoins(), where)
	return sql, args
}

// outputColumnNames mirrors selectSQL's column order for scanning.
func (p *joinPlan) outputColumnNames() []string {
	names := selectableColumns(p.root)
	for _, op := range p.oneToOne {
		joinedSchema := p.registry[op.From]
		for _, w := range selectableColumns(joinedSchema) {
			names = append(names, op.As+"__"+w)
		}
	}
	for _, op := range p.many {
		names = append(names, "_sub_"+op.As)
	}
	return names
}

func (p *joinPlan) scanAndTransform(rows pgx.Rows) ([]map[string]any, error) {
	names := p.outputColumnNames()
	var out []map[string]any
	for rows.Next() {
		dest := make([]any, len(names))
		for i := range dest {
			dest[i] = new(any)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		flat := make(map[string]any, len(names))
		for i, n := range names {
			flat[n] = *(dest[i].(*any))
		}
		out = append(out, p.transformRow(flat))
	}
	return out, rows.Err()
}

// transformRow splits one flat scanned row into root fields plus nested
// objects/arrays per join alias, converting column names back to
// camelCase wire names.
func (p *joinPlan) transformRow(flat map[string]any) map[string]any {
	root := make(map[string]any, len(p.root.Columns)+1)
	for _, w := range selectableColumns(p.root) {
		root[w] = normalizeScanned(w, flat[w])
	}

	for _, op := range p.oneToOne {
		joinedSchema := p.registry[op.From]
		nested := make(map[string]any, len(joinedSchema.Columns)+1)
		allNull := true
		for _, w := range selectableColumns(joinedSchema) {
			v := normalizeScanned(w, flat[op.As+"__"+w])
			if v != nil {
				allNull = false
			}
			nested[w] = v
		}
		if allNull {
			root[op.As] = nil
		} else {
			root[op.As] = nested
		}
	}

	for _, op := range p.many {
		raw := flat["_sub_"+op.As]
		root[op.As] = decodeJSONAgg(raw)
	}

	return root
}

// decodeJSONAgg parses the jsonb_agg(...) payload pgx hands back (either
// already-decoded []any via the jsonb OID path, or raw bytes) into a
// plain []any, translating each object's keys back to camelCase.
func decodeJSONAgg(raw any) []any {
	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case []byte:
		_ = json.Unmarshal(v, &items)
	case string:
		_ = json.Unmarshal([]byte(v), &items)
	}
	out := make([]any, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			out = append(out, item)
			continue
		}
		converted := make(map[string]any, len(obj))
		for k, v := range obj {
			converted[toWireName(k)] = normalizeScannedValue(k, v)
		}
		out = append(out, converted)
	}
	return out
}

func normalizeScannedValue(column string, v any) any {
	if v == nil {
		return nil
	}
	if column == "id" || strings.HasSuffix(column, "_id") {
		switch n := v.(type) {
		case float64:
			return strconv.FormatInt(int64(n), 10)
		case int64:
			return strconv.FormatInt(n, 10)
		}
	}
	return v
}
