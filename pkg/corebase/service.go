package corebase

import (
	"context"
	"strings"
	"time"

	"github.com/corebase/corebase/internal/platform/apperr"
)

// Hooks holds the optional before/after callbacks GenericService invokes
// around create/update/delete. Hooks receive already-preprocessed input
// (stripped, audited, decoded) and may return a modified value; they run
// once per high-level operation, not per entity in a batch — batch hooks
// see the whole slice.
type Hooks[T any] struct {
	BeforeCreate func(ctx context.Context, uc UserContext, entities []T) ([]T, error)
	AfterCreate  func(ctx context.Context, uc UserContext, entities []T) ([]T, error)
	BeforeUpdate func(ctx context.Context, uc UserContext, entities []T) ([]T, error)
	AfterUpdate  func(ctx context.Context, uc UserContext, entities []T) ([]T, error)
	BeforeDelete func(ctx context.Context, uc UserContext, ids []Id) ([]Id, error)
	AfterDelete  func(ctx context.Context, uc UserContext, ids []Id) error
}

// Scoper is the composition point MultiTenantService uses to inject tenant
// enforcement into GenericService without subclassing it. The zero value
// (passThroughScoper) is a no-op, matching a single-tenant deployment.
type Scoper interface {
	// PrepareQuery injects tenant filtering into qo for reads/deletes.
	PrepareQuery(uc UserContext, qo QueryOptions) (QueryOptions, error)
	// PrepareWrite validates/injects the tenant field into an outgoing
	// wire entity for create/update.
	PrepareWrite(uc UserContext, wire map[string]any) (map[string]any, error)
	// CheckRead rejects (NotFound) a fetched-by-id entity whose tenant
	// doesn't match the context.
	CheckRead(uc UserContext, entity map[string]any) error
}

type passThroughScoper struct{}

func (passThroughScoper) PrepareQuery(_ UserContext, qo QueryOptions) (QueryOptions, error) {
	return qo, nil
}
func (passThroughScoper) PrepareWrite(_ UserContext, wire map[string]any) (map[string]any, error) {
	return wire, nil
}
func (passThroughScoper) CheckRead(UserContext, map[string]any) error { return nil }

// GenericService orchestrates the preprocess -> storage -> postprocess
// pipeline for one entity type T against one table/collection. It is the
// uniform operation surface Controllers drive; tenant enforcement is layered
// on top by MultiTenantService rather than built in.
type GenericService[T any] struct {
	Table   string
	Storage Storage
	Spec    *ModelSpec[T]
	Clock   Clock
	Logger  Logger
	Hooks   Hooks[T]
	scoper  Scoper
}

// NewGenericService constructs a single-tenant GenericService. clock and
// logger default to SystemClock and NopLogger when nil.
func NewGenericService[T any](table string, storage Storage, spec *ModelSpec[T], clock Clock, logger Logger, hooks Hooks[T]) *GenericService[T] {
	if clock == nil {
		clock = SystemClock
	}
	if logger == nil {
		logger = NopLogger{}
	}
	return &GenericService[T]{
		Table:   table,
		Storage: storage,
		Spec:    spec,
		Clock:   clock,
		Logger:  logger,
		Hooks:   hooks,
		scoper:  passThroughScoper{},
	}
}

// preprocess implements the algorithm from the ModelSpec contract: clone,
// strip underscore-prefixed fields (except _orgId, and _id when allowId),
// stamp audit fields, decode. isSystem bypasses stripping entirely — the
// only channel allowed to set audit fields directly (migrations).
func (s *GenericService[T]) preprocess(uc UserContext, wire map[string]any, isCreate, allowId bool) map[string]any {
	out := cloneMap(wire)
	if !uc.IsSystem {
		for k := range out {
			if !strings.HasPrefix(k, "_") {
				continue
			}
			if k == "_orgId" {
				continue
			}
			if allowId && k == "_id" {
				continue
			}
			delete(out, k)
		}
	}
	if s.Spec.Auditable {
		now := s.Clock.Now().Format(time.RFC3339)
		actor := uc.User.String()
		if isCreate {
			out["_created"] = now
			out["_updated"] = now
			out["_createdBy"] = actor
			out["_updatedBy"] = actor
		} else {
			out["_updated"] = now
			out["_updatedBy"] = actor
		}
	}
	return out
}

// decodeValidate runs Decode then Validate, returning the first error of
// either stage.
func (s *GenericService[T]) decodeValidate(wire map[string]any, partial bool) (T, error) {
	value, present, err := s.Spec.Decode(wire, partial)
	if err != nil {
		var zero T
		return zero, err
	}
	if errs := s.Spec.Validate(value, partial, present...); len(errs) > 0 {
		var zero T
		return zero, apperr.ValidationError(s.Spec.Name+" failed validation", errs...)
	}
	return value, nil
}

func (s *GenericService[T]) toStorage(value T) (map[string]any, error) {
	return s.Spec.Encode(value)
}

func (s *GenericService[T]) fromStorage(row map[string]any) (T, error) {
	value, _, err := s.Spec.Decode(row, false)
	return value, err
}

// GetAll returns every row, unfiltered and unpaginated.
func (s *GenericService[T]) GetAll(ctx context.Context, uc UserContext) ([]T, error) {
	qo, err := s.scoper.PrepareQuery(uc, QueryOptions{})
	if err != nil {
		return nil, err
	}
	rows, err := s.Storage.Find(ctx, s.Table, qo)
	if err != nil {
		return nil, err
	}
	return decodeRows(s, rows)
}

// Get applies filters/sort/pagination and returns a page of T.
func (s *GenericService[T]) Get(ctx context.Context, uc UserContext, ops []Operation, qo QueryOptions) (PagedResult[T], error) {
	scoped, err := s.scoper.PrepareQuery(uc, qo)
	if err != nil {
		return PagedResult[T]{}, err
	}
	page, err := s.Storage.Get(ctx, s.Table, ops, scoped)
	if err != nil {
		return PagedResult[T]{}, err
	}
	entities, err := decodeRows(s, page.Entities)
	if err != nil {
		return PagedResult[T]{}, err
	}
	return NewPagedResult(entities, page.Total, page.Page, page.PageSize), nil
}

// GetById fetches one row by id, NotFound if absent or tenant-mismatched.
func (s *GenericService[T]) GetById(ctx context.Context, uc UserContext, id Id) (T, error) {
	var zero T
	row, err := s.Storage.GetById(ctx, s.Table, id)
	if err != nil {
		return zero, err
	}
	if err := s.scoper.CheckRead(uc, row); err != nil {
		return zero, err
	}
	return s.fromStorage(row)
}

// GetCount returns the row count honoring the current tenant scope.
func (s *GenericService[T]) GetCount(ctx context.Context, uc UserContext, qo QueryOptions) (int, error) {
	scoped, err := s.scoper.PrepareQuery(uc, qo)
	if err != nil {
		return 0, err
	}
	return s.Storage.GetCount(ctx, s.Table, scoped)
}

// Create validates the full schema and inserts one row.
func (s *GenericService[T]) Create(ctx context.Context, uc UserContext, wire map[string]any) (T, error) {
	var zero T
	pre := s.preprocess(uc, wire, true, false)
	pre, err := s.scoper.PrepareWrite(uc, pre)
	if err != nil {
		return zero, err
	}
	value, err := s.decodeValidate(pre, false)
	if err != nil {
		return zero, err
	}
	entities := []T{value}
	if s.Hooks.BeforeCreate != nil {
		if entities, err = s.Hooks.BeforeCreate(ctx, uc, entities); err != nil {
			return zero, err
		}
	}
	row, err := s.toStorage(entities[0])
	if err != nil {
		return zero, err
	}
	stored, err := s.Storage.Create(ctx, s.Table, row)
	if err != nil {
		return zero, err
	}
	result, err := s.fromStorage(stored)
	if err != nil {
		return zero, err
	}
	results := []T{result}
	if s.Hooks.AfterCreate != nil {
		if results, err = s.Hooks.AfterCreate(ctx, uc, results); err != nil {
			return zero, err
		}
	}
	s.Logger.Info(s.Table+"_created", "id", stored["_id"])
	return results[0], nil
}

// CreateMany inserts every entity through Storage.CreateMany; see that
// method for how each backend handles a failure partway through.
func (s *GenericService[T]) CreateMany(ctx context.Context, uc UserContext, wires []map[string]any) ([]T, error) {
	values := make([]T, 0, len(wires))
	for _, w := range wires {
		pre := s.preprocess(uc, w, true, false)
		pre, err := s.scoper.PrepareWrite(uc, pre)
		if err != nil {
			return nil, err
		}
		v, err := s.decodeValidate(pre, false)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	var err error
	if s.Hooks.BeforeCreate != nil {
		if values, err = s.Hooks.BeforeCreate(ctx, uc, values); err != nil {
			return nil, err
		}
	}
	rows := make([]map[string]any, 0, len(values))
	for _, v := range values {
		row, err := s.toStorage(v)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	stored, err := s.Storage.CreateMany(ctx, s.Table, rows)
	if err != nil {
		return nil, err
	}
	results, err := decodeRows(s, stored)
	if err != nil {
		return nil, err
	}
	if s.Hooks.AfterCreate != nil {
		if results, err = s.Hooks.AfterCreate(ctx, uc, results); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// BatchUpdate partial-validates each entity (which must carry "_id") and
// applies a single set per id. Ids are preserved on the result (the v2
// contract, per the normalized Open Question).
func (s *GenericService[T]) BatchUpdate(ctx context.Context, uc UserContext, wires []map[string]any) ([]T, error) {
	values := make([]T, 0, len(wires))
	for _, w := range wires {
		rawId, ok := w["_id"]
		if !ok {
			return nil, apperr.BadRequest("batch entry missing _id")
		}
		idStr, _ := rawId.(string)
		id, err := s.Spec.IdSchema.Parse(idStr)
		if err != nil {
			return nil, err
		}
		existing, err := s.Storage.GetById(ctx, s.Table, id)
		if err != nil {
			return nil, err
		}
		if err := s.scoper.CheckRead(uc, existing); err != nil {
			return nil, err
		}
		pre := s.preprocess(uc, w, false, true)
		pre, err = s.scoper.PrepareWrite(uc, pre)
		if err != nil {
			return nil, err
		}
		v, err := s.decodeValidate(pre, true)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	var err error
	if s.Hooks.BeforeUpdate != nil {
		if values, err = s.Hooks.BeforeUpdate(ctx, uc, values); err != nil {
			return nil, err
		}
	}
	rows := make([]map[string]any, 0, len(values))
	for _, v := range values {
		row, err := s.toStorage(v)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	stored, err := s.Storage.BatchUpdate(ctx, s.Table, rows)
	if err != nil {
		return nil, err
	}
	results, err := decodeRows(s, stored)
	if err != nil {
		return nil, err
	}
	if s.Hooks.AfterUpdate != nil {
		if results, err = s.Hooks.AfterUpdate(ctx, uc, results); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// FullUpdateById replaces every field. For auditable specs,
// _created/_createdBy are copied from the existing row into the outgoing
// entity before validation (preprocess with isCreate=false never stamps
// them), so they survive the replace unchanged; the storage layer itself
// never mutates columns not present in entity.
func (s *GenericService[T]) FullUpdateById(ctx context.Context, uc UserContext, id Id, wire map[string]any) (T, error) {
	var zero T
	existing, err := s.Storage.GetById(ctx, s.Table, id)
	if err != nil {
		return zero, err
	}
	if err := s.scoper.CheckRead(uc, existing); err != nil {
		return zero, err
	}
	pre := s.preprocess(uc, wire, false, false)
	if s.Spec.Auditable {
		pre["_created"] = existing["_created"]
		pre["_createdBy"] = existing["_createdBy"]
	}
	pre, err = s.scoper.PrepareWrite(uc, pre)
	if err != nil {
		return zero, err
	}
	value, err := s.decodeValidate(pre, false)
	if err != nil {
		return zero, err
	}
	entities := []T{value}
	if s.Hooks.BeforeUpdate != nil {
		if entities, err = s.Hooks.BeforeUpdate(ctx, uc, entities); err != nil {
			return zero, err
		}
	}
	row, err := s.toStorage(entities[0])
	if err != nil {
		return zero, err
	}
	stored, err := s.Storage.FullUpdateById(ctx, s.Table, id, row)
	if err != nil {
		return zero, err
	}
	result, err := s.fromStorage(stored)
	if err != nil {
		return zero, err
	}
	results := []T{result}
	if s.Hooks.AfterUpdate != nil {
		if results, err = s.Hooks.AfterUpdate(ctx, uc, results); err != nil {
			return zero, err
		}
	}
	s.Logger.Info(s.Table+"_updated", "id", id.String())
	return results[0], nil
}

// PartialUpdateById partial-validates and applies only the supplied fields.
func (s *GenericService[T]) PartialUpdateById(ctx context.Context, uc UserContext, id Id, wire map[string]any) (T, error) {
	var zero T
	existing, err := s.Storage.GetById(ctx, s.Table, id)
	if err != nil {
		return zero, err
	}
	if err := s.scoper.CheckRead(uc, existing); err != nil {
		return zero, err
	}
	pre := s.preprocess(uc, wire, false, false)
	pre, err = s.scoper.PrepareWrite(uc, pre)
	if err != nil {
		return zero, err
	}
	value, err := s.decodeValidate(pre, true)
	if err != nil {
		return zero, err
	}
	entities := []T{value}
	if s.Hooks.BeforeUpdate != nil {
		if entities, err = s.Hooks.BeforeUpdate(ctx, uc, entities); err != nil {
			return zero, err
		}
	}
	row, err := s.toStorage(entities[0])
	if err != nil {
		return zero, err
	}
	stored, err := s.Storage.PartialUpdateById(ctx, s.Table, id, row)
	if err != nil {
		return zero, err
	}
	result, err := s.fromStorage(stored)
	if err != nil {
		return zero, err
	}
	results := []T{result}
	if s.Hooks.AfterUpdate != nil {
		if results, err = s.Hooks.AfterUpdate(ctx, uc, results); err != nil {
			return zero, err
		}
	}
	s.Logger.Info(s.Table+"_updated", "id", id.String())
	return results[0], nil
}

// DeleteById removes the row, NotFound if it doesn't exist.
func (s *GenericService[T]) DeleteById(ctx context.Context, uc UserContext, id Id) (DeleteResult, error) {
	existing, err := s.Storage.GetById(ctx, s.Table, id)
	if err != nil {
		return DeleteResult{}, err
	}
	if err := s.scoper.CheckRead(uc, existing); err != nil {
		return DeleteResult{}, err
	}
	ids := []Id{id}
	if s.Hooks.BeforeDelete != nil {
		if ids, err = s.Hooks.BeforeDelete(ctx, uc, ids); err != nil {
			return DeleteResult{}, err
		}
	}
	res, err := s.Storage.DeleteById(ctx, s.Table, ids[0])
	if err != nil {
		return DeleteResult{}, err
	}
	if res.Count == 0 {
		return DeleteResult{}, apperr.NotFound(s.Spec.Name)
	}
	if s.Hooks.AfterDelete != nil {
		if err := s.Hooks.AfterDelete(ctx, uc, ids); err != nil {
			return DeleteResult{}, err
		}
	}
	s.Logger.Info(s.Table+"_deleted", "id", id.String())
	return res, nil
}

// DeleteMany removes every row matching qo, tenant-scoped.
func (s *GenericService[T]) DeleteMany(ctx context.Context, uc UserContext, qo QueryOptions) (DeleteResult, error) {
	scoped, err := s.scoper.PrepareQuery(uc, qo)
	if err != nil {
		return DeleteResult{}, err
	}
	return s.Storage.DeleteMany(ctx, s.Table, scoped)
}

// Find returns every row matching qo, unpaginated.
func (s *GenericService[T]) Find(ctx context.Context, uc UserContext, qo QueryOptions) ([]T, error) {
	scoped, err := s.scoper.PrepareQuery(uc, qo)
	if err != nil {
		return nil, err
	}
	rows, err := s.Storage.Find(ctx, s.Table, scoped)
	if err != nil {
		return nil, err
	}
	return decodeRows(s, rows)
}

// FindOne returns the first row matching qo, or nil.
func (s *GenericService[T]) FindOne(ctx context.Context, uc UserContext, qo QueryOptions) (*T, error) {
	scoped, err := s.scoper.PrepareQuery(uc, qo)
	if err != nil {
		return nil, err
	}
	row, err := s.Storage.FindOne(ctx, s.Table, scoped)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	v, err := s.fromStorage(row)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func decodeRows[T any](s *GenericService[T], rows []map[string]any) ([]T, error) {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		v, err := s.fromStorage(r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
