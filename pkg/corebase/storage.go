package corebase

import "context"

// DeleteResult reports the outcome of a delete operation.
type DeleteResult struct {
	Acked bool
	Count int
}

// Storage is the backend-agnostic persistence contract both adapters
// (document, relational) implement identically in observable behavior.
// Entities cross this boundary as map[string]any, already
// decoded/coerced by the caller's ModelSpec — Storage itself is schema-
// agnostic; it only needs to know the collection/table name. The interface
// has no preprocess/postprocess hook methods: each adapter rewrites id
// fields to and from its native form internally on every read and write.
type Storage interface {
	// GetAll returns every row/document, unfiltered and unpaginated.
	// Intended for bounded reference sets, not general listing.
	GetAll(ctx context.Context, table string) ([]map[string]any, error)

	// Get applies ops (joins), queryOptions (filters/sort/pagination) and
	// returns a page of nested results.
	Get(ctx context.Context, table string, ops []Operation, queryOptions QueryOptions) (PagedResult[map[string]any], error)

	// GetById fetches a single row by id. Returns NotFound if absent.
	GetById(ctx context.Context, table string, id Id) (map[string]any, error)

	// GetCount returns the row count honoring whatever filter the caller
	// (typically MultiTenantService) has injected via queryOptions.
	GetCount(ctx context.Context, table string, queryOptions QueryOptions) (int, error)

	// Create inserts one row and returns it with backend-assigned fields
	// populated (id, defaults).
	Create(ctx context.Context, table string, entity map[string]any) (map[string]any, error)

	// CreateMany inserts all rows. The relational adapter runs every insert
	// in one transaction, so a failure leaves no row behind; the document
	// adapter issues one ordered InsertMany, which stops at the first
	// failure and keeps the documents inserted before it.
	CreateMany(ctx context.Context, table string, entities []map[string]any) ([]map[string]any, error)

	// BatchUpdate applies one partial set per id, where each entity map
	// must carry "_id". All-or-nothing within the backend's transactional
	// guarantees.
	BatchUpdate(ctx context.Context, table string, entities []map[string]any) ([]map[string]any, error)

	// FullUpdateById replaces every field of the row (_created/_createdBy
	// are preserved by the caller before this is invoked).
	FullUpdateById(ctx context.Context, table string, id Id, entity map[string]any) (map[string]any, error)

	// PartialUpdateById applies only the fields present in patch.
	PartialUpdateById(ctx context.Context, table string, id Id, patch map[string]any) (map[string]any, error)

	// Update applies patch to every row matching queryOptions' filters.
	Update(ctx context.Context, table string, queryOptions QueryOptions, patch map[string]any) (int, error)

	// DeleteById removes the row with id. A missing row is not an error:
	// the result's Count is 0 (GenericService turns that into NotFound).
	DeleteById(ctx context.Context, table string, id Id) (DeleteResult, error)

	// DeleteMany removes every row matching queryOptions' filters.
	DeleteMany(ctx context.Context, table string, queryOptions QueryOptions) (DeleteResult, error)

	// Find returns every row matching queryOptions, unpaginated.
	Find(ctx context.Context, table string, queryOptions QueryOptions) ([]map[string]any, error)

	// FindOne returns the first row matching queryOptions, or nil.
	FindOne(ctx context.Context, table string, queryOptions QueryOptions) (map[string]any, error)

	// IdSchema returns the backend's id schema, used by the controller to
	// parse path ids before invoking a Service operation.
	IdSchema() IdSchema
}
