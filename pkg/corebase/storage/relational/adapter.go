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

// TableSchema whitelists the columns one table exposes to the adapter.
// Every column name generated into SQL is validated against this list
// (after conversion via toColumn) before being interpolated.
type TableSchema struct {
	Table   string
	Columns []string // wire field names, excluding "_id"
}

func (t TableSchema) allows(wireName string) bool {
	if wireName == "_id" {
		return true
	}
	for _, c := range t.Columns {
		if c == wireName {
			return true
		}
	}
	return false
}

// Adapter is the relational corebase.Storage implementation over pgx.
type Adapter struct {
	pool    *pgxpool.Pool
	schemas map[string]TableSchema
}

// NewAdapter builds an Adapter. schemas is keyed by table name (matching
// the `table` argument every corebase.Storage method receives).
func NewAdapter(pool *pgxpool.Pool, schemas map[string]TableSchema) *Adapter {
	return &Adapter{pool: pool, schemas: schemas}
}

func (a *Adapter) IdSchema() corebase.IdSchema { return corebase.RelationalIdSchema{} }

func (a *Adapter) schemaFor(table string) TableSchema {
	if s, ok := a.schemas[table]; ok {
		return s
	}
	return TableSchema{Table: table}
}

// ExecBatch runs raw DDL/DML as one statement batch — migrations only.
func (a *Adapter) ExecBatch(ctx context.Context, sql string) error {
	_, err := a.pool.Exec(ctx, sql)
	if err != nil {
		return dberr.Wrap(err, "exec_batch")
	}
	return nil
}

// DropTable implements corebase.SchemaDropper for Reset/Down. table is
// already a relational table name, not a wire field — it never goes
// through toColumn's audit/camelCase mapping.
func (a *Adapter) DropTable(ctx context.Context, table string) error {
	_, err := a.pool.Exec(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %q CASCADE`, table))
	if err != nil {
		return dberr.Wrap(err, "drop_table")
	}
	return nil
}

func (a *Adapter) GetAll(ctx context.Context, table string) ([]map[string]any, error) {
	rows, err := a.Find(ctx, table, corebase.QueryOptions{})
	return rows, err
}

func (a *Adapter) Get(ctx context.Context, table string, ops []corebase.Operation, qo corebase.QueryOptions) (corebase.PagedResult[map[string]any], error) {
	return runJoinedQuery(ctx, a.pool, a.schemaFor(table), a.schemas, ops, qo)
}

func (a *Adapter) GetById(ctx context.Context, table string, id corebase.Id) (map[string]any, error) {
	schema := a.schemaFor(table)
	cols := selectableColumns(schema)
	sql := fmt.Sprintf(`SELECT %s FROM %q WHERE "id" = $1`, quoteColumnList(cols), schema.Table)
	row, err := a.pool.Query(ctx, sql, idArg(id))
	if err != nil {
		return nil, dberr.Wrap(err, "get_by_id")
	}
	defer row.Close()
	result, err := scanOne(row, cols)
	if err != nil {
		return nil, dberr.Wrap(err, "get_by_id")
	}
	if result == nil {
		return nil, dberr.ErrNotFound
	}
	return result, nil
}

func (a *Adapter) GetCount(ctx context.Context, table string, qo corebase.QueryOptions) (int, error) {
	schema := a.schemaFor(table)
	where, args := buildWhere(schema, qo.Filters, nil)
	sql := fmt.Sprintf(`SELECT COUNT(*) FROM %q%s`, schema.Table, where)
	var count int
	if err := a.pool.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, dberr.Wrap(err, "get_count")
	}
	return count, nil
}

func (a *Adapter) Create(ctx context.Context, table string, entity map[string]any) (map[string]any, error) {
	schema := a.schemaFor(table)
	cols, args := insertColumns(schema, entity)
	placeholders := make([]string, len(args))
	for i := range args {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	returning := selectableColumns(schema)
	sql := fmt.Sprintf(`INSERT INTO %q (%s) VALUES (%s) RETURNING %s`,
		schema.Table, quoteColumnList(cols), strings.Join(placeholders, ", "), quoteColumnList(returning))
	row, err := a.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "create")
	}
	defer row.Close()
	result, err := scanOne(row, returning)
	if err != nil {
		return nil, dberr.Wrap(err, "create")
	}
	return result, nil
}

func (a *Adapter) CreateMany(ctx context.Context, table string, entities []map[string]any) ([]map[string]any, error) {
	if len(entities) == 0 {
		return nil, nil
	}
	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return nil, dberr.Wrap(err, "create_many")
	}
	defer tx.Rollback(ctx)

	schema := a.schemaFor(table)
	returning := selectableColumns(schema)
	out := make([]map[string]any, 0, len(entities))
	for _, entity := range entities {
		cols, args := insertColumns(schema, entity)
		placeholders := make([]string, len(args))
		for i := range args {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
		}
		sql := fmt.Sprintf(`INSERT INTO %q (%s) VALUES (%s) RETURNING %s`,
			schema.Table, quoteColumnList(cols), strings.Join(placeholders, ", "), quoteColumnList(returning))
		row, err := tx.Query(ctx, sql, args...)
		if err != nil {
			return nil, dberr.Wrap(err, "create_many")
		}
		result, err := scanOne(row, returning)
		row.Close()
		if err != nil {
			return nil, dberr.Wrap(err, "create_many")
		}
		out = append(out, result)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, dberr.Wrap(err, "create_many")
	}
	return out, nil
}

func (a *Adapter) BatchUpdate(ctx context.Context, table string, entities []map[string]any) ([]map[string]any, error) {
	if len(entities) == 0 {
		return nil, nil
	}
	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return nil, dberr.Wrap(err, "batch_update")
	}
	defer tx.Rollback(ctx)

	schema := a.schemaFor(table)
	returning := selectableColumns(schema)
	out := make([]map[string]any, 0, len(entities))
	for _, entity := range entities {
		rawId, ok := entity["_id"]
		if !ok {
			return nil, fmt.Errorf("batch_update: entity missing _id")
		}
		idStr, _ := rawId.(string)
		id, err := corebase.RelationalIdSchema{}.Parse(idStr)
		if err != nil {
			return nil, err
		}
		patch := cloneWithout(entity, "_id")
		setClause, args, err := buildSet(schema, patch, 1)
		if err != nil {
			return nil, err
		}
		if setClause == "" {
			continue
		}
		args = append(args, idArg(id))
		sql := fmt.Sprintf(`UPDATE %q SET %s WHERE "id" = $%d RETURNING %s`,
			schema.Table, setClause, len(args), quoteColumnList(returning))
		row, err := tx.Query(ctx, sql, args...)
		if err != nil {
			return nil, dberr.Wrap(err, "batch_update")
		}
		result, err := scanOne(row, returning)
		row.Close()
		if err != nil {
			return nil, dberr.Wrap(err, "batch_update")
		}
		if result == nil {
			return nil, dberr.ErrNotFound
		}
		out = append(out, result)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, dberr.Wrap(err, "batch_update")
	}
	return out, nil
}

func (a *Adapter) FullUpdateById(ctx context.Context, table string, id corebase.Id, entity map[string]any) (map[string]any, error) {
	return a.updateById(ctx, table, id, entity)
}

func (a *Adapter) PartialUpdateById(ctx context.Context, table string, id corebase.Id, patch map[string]any) (map[string]any, error) {
	return a.updateById(ctx, table, id, patch)
}

func (a *Adapter) updateById(ctx context.Context, table string, id corebase.Id, patch map[string]any) (map[string]any, error) {
	schema := a.schemaFor(table)
	returning := selectableColumns(schema)
	setClause, args, err := buildSet(schema, cloneWithout(patch, "_id"), 1)
	if err != nil {
		return nil, err
	}
	if setClause == "" {
		return a.GetById(ctx, table, id)
	}
	args = append(args, idArg(id))
	sql := fmt.Sprintf(`UPDATE %q SET %s WHERE "id" = $%d RETURNING %s`,
		schema.Table, setClause, len(args), quoteColumnList(returning))
	row, err := a.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "update_by_id")
	}
	defer row.Close()
	result, err := scanOne(row, returning)
	if err != nil {
		return nil, dberr.Wrap(err, "update_by_id")
	}
	if result == nil {
		return nil, dberr.ErrNotFound
	}
	return result, nil
}

func (a *Adapter) Update(ctx context.Context, table string, qo corebase.QueryOptions, patch map[string]any) (int, error) {
	schema := a.schemaFor(table)
	setClause, args, err := buildSet(schema, patch, 1)
	if err != nil {
		return 0, err
	}
	if setClause == "" {
		return 0, nil
	}
	where, whereArgs := buildWhere(schema, qo.Filters, args)
	sql := fmt.Sprintf(`UPDATE %q SET %s%s`, schema.Table, setClause, where)
	tag, err := a.pool.Exec(ctx, sql, whereArgs...)
	if err != nil {
		return 0, dberr.Wrap(err, "update")
	}
	return int(tag.RowsAffected()), nil
}

func (a *Adapter) DeleteById(ctx context.Context, table string, id corebase.Id) (corebase.DeleteResult, error) {
	schema := a.schemaFor(table)
	sql := fmt.Sprintf(`DELETE FROM %q WHERE "id" = $1`, schema.Table)
	tag, err := a.pool.Exec(ctx, sql, idArg(id))
	if err != nil {
		return corebase.DeleteResult{}, dberr.Wrap(err, "delete_by_id")
	}
	count := int(tag.RowsAffected())
	return corebase.DeleteResult{Acked: true, Count: count}, nil
}

func (a *Adapter) DeleteMany(ctx context.Context, table string, qo corebase.QueryOptions) (corebase.DeleteResult, error) {
	schema := a.schemaFor(table)
	where, args := buildWhere(schema, qo.Filters, nil)
	sql := fmt.Sprintf(`DELETE FROM %q%s`, schema.Table, where)
	tag, err := a.pool.Exec(ctx, sql, args...)
	if err != nil {
		return corebase.DeleteResult{}, dberr.Wrap(err, "delete_many")
	}
	return corebase.DeleteResult{Acked: true, Count: int(tag.RowsAffected())}, nil
}

func (a *Adapter) Find(ctx context.Context, table string, qo corebase.QueryOptions) ([]map[string]any, error) {
	schema := a.schemaFor(table)
	cols := selectableColumns(schema)
	where, args := buildWhere(schema, qo.Filters, nil)
	order := buildOrderBy(schema, qo)
	sql := fmt.Sprintf(`SELECT %s FROM %q%s%s`, quoteColumnList(cols), schema.Table, where, order)
	rows, err := a.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "find")
	}
	defer rows.Close()
	return scanAll(rows, cols)
}

func (a *Adapter) FindOne(ctx context.Context, table string, qo corebase.QueryOptions) (map[string]any, error) {
	qo.PageSize = 1
	qo.Page = 1
	schema := a.schemaFor(table)
	cols := selectableColumns(schema)
	where, args := buildWhere(schema, qo.Filters, nil)
	order := buildOrderBy(schema, qo)
	sql := fmt.Sprintf(`SELECT %s FROM %q%s%s LIMIT 1`, quoteColumnList(cols), schema.Table, where, order)
	rows, err := a.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "find_one")
	}
	defer rows.Close()
	return scanOne(rows, cols)
}

// idArg converts a corebase.Id into the value pgx should bind; relational
// ids are stored as native integers.
func idArg(id corebase.Id) int64 {
	v, _ := id.Int64()
	return v
}

func selectableColumns(schema TableSchema) []string {
	cols := []string{"_id"}
	cols = append(cols, schema.Columns...)
	return cols
}

func quoteColumnList(wireNames []string) string {
	parts := make([]string, len(wireNames))
	for i, w := range wireNames {
		parts[i] = fmt.Sprintf("%q AS %q", toColumn(w), w)
	}
	return strings.Join(parts, ", ")
}

func insertColumns(schema TableSchema, entity map[string]any) ([]string, []any) {
	var cols []string
	var args []any
	for wireName, val := range entity {
		if !schema.allows(wireName) {
			continue
		}
		cols = append(cols, toColumn(wireName))
		args = append(args, coerceArg(val))
	}
	return cols, args
}

func buildSet(schema TableSchema, patch map[string]any, startAt int) (string, []any, error) {
	var sets []string
	var args []any
	n := startAt
	for wireName, val := range patch {
		if !schema.allows(wireName) || wireName == "_id" {
			continue
		}
		sets = append(sets, fmt.Sprintf("%q = $%d", toColumn(wireName), n))
		args = append(args, coerceArg(val))
		n++
	}
	return strings.Join(sets, ", "), args, nil
}

func cloneWithout(m map[string]any, skip string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if k == skip {
			continue
		}
		out[k] = v
	}
	return out
}

// coerceArg converts a wire-decoded value into what pgx expects to bind.
// The relational id wire form is a decimal string; pgx wants an int64 for
// integer columns, so _orgId (and any other *Id-typed field) is converted
// here.
func coerceArg(val any) any {
	if s, ok := val.(string); ok {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil && looksLikeId(s) {
			return n
		}
	}
	return val
}

// looksLikeId reports whether s is a non-empty string of decimal digits.
// Every such string is treated as an id needing int64 coercion, whatever
// field or column it is bound to; leading zeros are not rejected.
func looksLikeId(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func buildWhere(schema TableSchema, filters map[string]corebase.Predicate, existingArgs []any) (string, []any) {
	if len(filters) == 0 {
		return "", existingArgs
	}
	args := existingArgs
	var clauses []string
	for wireName, pred := range filters {
		if !schema.allows(wireName) {
			continue
		}
		col := fmt.Sprintf("%q", toColumn(wireName))
		switch pred.Op {
		case corebase.OpEq:
			args = append(args, coerceArg(pred.Value))
			clauses = append(clauses, fmt.Sprintf("%s = $%d", col, len(args)))
		case corebase.OpNe:
			args = append(args, coerceArg(pred.Value))
			clauses = append(clauses, fmt.Sprintf("%s != $%d", col, len(args)))
		case corebase.OpIn:
			values, _ := pred.Value.([]any)
			if len(values) == 0 {
				clauses = append(clauses, "FALSE")
				continue
			}
			placeholders := make([]string, len(values))
			for i, v := range values {
				args = append(args, coerceArg(v))
				placeholders[i] = fmt.Sprintf("$%d", len(args))
			}
			clauses = append(clauses, fmt.Sprintf("%s IN (%s)", col, strings.Join(placeholders, ", ")))
		case corebase.OpGt:
			args = append(args, coerceArg(pred.Value))
			clauses = append(clauses, fmt.Sprintf("%s > $%d", col, len(args)))
		case corebase.OpGte:
			args = append(args, coerceArg(pred.Value))
			clauses = append(clauses, fmt.Sprintf("%s >= $%d", col, len(args)))
		case corebase.OpLt:
			args = append(args, coerceArg(pred.Value))
			clauses = append(clauses, fmt.Sprintf("%s < $%d", col, len(args)))
		case corebase.OpLte:
			args = append(args, coerceArg(pred.Value))
			clauses = append(clauses, fmt.Sprintf("%s <= $%d", col, len(args)))
		case corebase.OpContains:
			s, _ := pred.Value.(string)
			args = append(args, "%"+s+"%")
			clauses = append(clauses, fmt.Sprintf("%s ILIKE $%d", col, len(args)))
		}
	}
	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func buildOrderBy(schema TableSchema, qo corebase.QueryOptions) string {
	var paging string
	if qo.Paginated() {
		offset := (qo.EffectivePage() - 1) * qo.PageSize
		paging = fmt.Sprintf(" LIMIT %d OFFSET %d", qo.PageSize, offset)
	}

	if qo.OrderBy == "" || !schema.allows(qo.OrderBy) {
		return paging
	}
	dir := "ASC"
	if qo.SortDirection == corebase.SortDesc {
		dir = "DESC"
	}
	return fmt.Sprintf(` ORDER BY %q %s%s`, toColumn(qo.OrderBy), dir, paging)
}

// scanOne scans the first row of rows, or returns nil when there is none.
// scanRow below builds the shape pgx.Rows.Scan needs: one *any per
// selected column.
func scanOne(rows pgx.Rows, wireNames []string) (map[string]any, error) {
	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanRow(rows, wireNames)
}

func scanAll(rows pgx.Rows, wireNames []string) ([]map[string]any, error) {
	var out []map[string]any
	for rows.Next() {
		row, err := scanRow(rows, wireNames)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func scanRow(rows pgx.Rows, wireNames []string) (map[string]any, error) {
	dest := make([]any, len(wireNames))
	for i := range dest {
		dest[i] = new(any)
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}
	out := make(map[string]any, len(wireNames))
	for i, w := range wireNames {
		out[w] = normalizeScanned(w, *(dest[i].(*any)))
	}
	return out, nil
}

// normalizeScanned renders a scanned column value into its wire form: the
// id column becomes a decimal string, JSON/jsonb columns are already
// map[string]any or []any via pgx's default decoding.
func normalizeScanned(wireName string, val any) any {
	if val == nil {
		return nil
	}
	if wireName == "_id" || wireName == "_orgId" || strings.HasSuffix(wireName, "Id") {
		switch v := val.(type) {
		case int64:
			return strconv.FormatInt(v, 10)
		case int32:
			return strconv.FormatInt(int64(v), 10)
		}
	}
	if raw, ok := val.([]byte); ok {
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err == nil {
			return decoded
		}
		return string(raw)
	}
	return val
}
