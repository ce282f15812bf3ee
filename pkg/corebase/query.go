package corebase

import "math"

// PredicateOp is the comparison a QueryOptions filter applies to a field.
type PredicateOp string

const (
	OpEq       PredicateOp = "eq"
	OpNe       PredicateOp = "ne"
	OpIn       PredicateOp = "in"
	OpGt       PredicateOp = "gt"
	OpGte      PredicateOp = "gte"
	OpLt       PredicateOp = "lt"
	OpLte      PredicateOp = "lte"
	OpContains PredicateOp = "contains" // case-insensitive substring
)

// Predicate is one filter condition against a single field.
type Predicate struct {
	Op    PredicateOp
	Value any // []any for OpIn; scalar otherwise
}

// Eq, Ne, In, Gt, Gte, Lt, Lte, Contains build a [Predicate] of the
// matching kind. Kept as free functions so filter maps read linearly:
//
//	QueryOptions{Filters: map[string]Predicate{"status": corebase.Eq("active")}}
func Eq(v any) Predicate       { return Predicate{Op: OpEq, Value: v} }
func Ne(v any) Predicate       { return Predicate{Op: OpNe, Value: v} }
func In(v ...any) Predicate    { return Predicate{Op: OpIn, Value: v} }
func Gt(v any) Predicate       { return Predicate{Op: OpGt, Value: v} }
func Gte(v any) Predicate      { return Predicate{Op: OpGte, Value: v} }
func Lt(v any) Predicate       { return Predicate{Op: OpLt, Value: v} }
func Lte(v any) Predicate      { return Predicate{Op: OpLte, Value: v} }
func Contains(v string) Predicate { return Predicate{Op: OpContains, Value: v} }

// SortDirection orders a QueryOptions.OrderBy clause.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// QueryOptions describes a filtered, sorted, paginated read. Field names
// are wire-form (the entity's JSON field names, camelCase); adapters
// convert to their backend's native naming (snake_case columns, or field
// names verbatim for the document backend) during translation.
type QueryOptions struct {
	Filters       map[string]Predicate
	OrderBy       string // empty means unordered
	SortDirection SortDirection
	// Page and PageSize are both optional. Pagination is disabled (no
	// LIMIT/OFFSET, no $skip/$limit) unless PageSize is set; Page defaults to 1
	// when PageSize is set but Page is zero.
	Page     int
	PageSize int
}

// Paginated reports whether q has an effective page size.
func (q QueryOptions) Paginated() bool { return q.PageSize > 0 }

// EffectivePage returns the 1-based page number, defaulting to 1.
func (q QueryOptions) EffectivePage() int {
	if q.Page <= 0 {
		return 1
	}
	return q.Page
}

// PagedResult is the uniform shape returned by Service.get and
// Storage.get: a page of entities plus the metadata needed to render
// pagination controls.
type PagedResult[T any] struct {
	Entities   []T
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// NewPagedResult computes TotalPages from total/pageSize (ceil division)
// and assembles the result. When pageSize is 0, pagination is disabled:
// TotalPages is 1 and Total equals len(entities) by construction.
func NewPagedResult[T any](entities []T, total, page, pageSize int) PagedResult[T] {
	r := PagedResult[T]{Entities: entities, Total: total, Page: page, PageSize: pageSize}
	if pageSize > 0 {
		r.TotalPages = int(math.Ceil(float64(total) / float64(pageSize)))
	} else {
		r.TotalPages = 1
	}
	return r
}

// JoinKind distinguishes the three join edges the planner understands.
type JoinKind string

const (
	JoinLeft      JoinKind = "left"       // one-to-one, as: object|null
	JoinInner     JoinKind = "inner"      // one-to-one, drops unmatched rows
	JoinLeftMany  JoinKind = "left_many"  // one-to-many, as: array
)

// Operation is a declarative join edge in a query graph. LocalField may
// reference an earlier join's alias as "alias.field" (chained many-to-many);
// see the relational Join Planner for how that's resolved.
type Operation struct {
	Kind         JoinKind
	From         string // foreign table/collection name
	LocalField   string // field on the root (or an earlier alias) to match
	ForeignField string // field on From to match against
	As           string // alias the joined data is attached under
}

// LeftJoin builds a one-to-one left join operation.
func LeftJoin(from, localField, foreignField, as string) Operation {
	return Operation{Kind: JoinLeft, From: from, LocalField: localField, ForeignField: foreignField, As: as}
}

// InnerJoin builds a one-to-one inner join operation.
func InnerJoin(from, localField, foreignField, as string) Operation {
	return Operation{Kind: JoinInner, From: from, LocalField: localField, ForeignField: foreignField, As: as}
}

// LeftJoinMany builds a one-to-many join operation. localField may be
// "alias.field" to chain off an earlier LeftJoinMany.
func LeftJoinMany(from, localField, foreignField, as string) Operation {
	return Operation{Kind: JoinLeftMany, From: from, LocalField: localField, ForeignField: foreignField, As: as}
}
