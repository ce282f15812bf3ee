package corebase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebase/corebase/internal/platform/apperr"
	"github.com/corebase/corebase/pkg/corebase"
)

// tenantWidget is a minimal tenant-scoped entity used only to exercise
// GenericService/MultiTenantService without pulling in a real storage
// backend.
type tenantWidget struct {
	Id    corebase.Id `json:"_id"`
	OrgId corebase.Id `json:"_orgId"`
	Name  string      `json:"name" validate:"required"`
}

func tenantWidgetSpec() *corebase.ModelSpec[tenantWidget] {
	fields := []corebase.FieldSpec{
		{WireName: "_id", GoName: "Id", Kind: corebase.KindId, Projected: true},
		{WireName: "_orgId", GoName: "OrgId", Kind: corebase.KindId, Projected: true},
		{WireName: "name", GoName: "Name", Projected: true},
	}
	return corebase.NewModelSpec[tenantWidget]("widgets", corebase.RelationalIdSchema{}, false, fields)
}

// memStorage is an in-memory corebase.Storage fake, keyed by the
// relational id rendered as a decimal string.
type memStorage struct {
	rows map[string]map[string]any
}

func newMemStorage() *memStorage { return &memStorage{rows: map[string]map[string]any{}} }

func (m *memStorage) GetAll(ctx context.Context, table string) ([]map[string]any, error) {
	return nil, nil
}

func (m *memStorage) Get(ctx context.Context, table string, ops []corebase.Operation, qo corebase.QueryOptions) (corebase.PagedResult[map[string]any], error) {
	return corebase.PagedResult[map[string]any]{}, nil
}

func (m *memStorage) GetById(ctx context.Context, table string, id corebase.Id) (map[string]any, error) {
	row, ok := m.rows[id.String()]
	if !ok {
		return nil, apperr.NotFound(table)
	}
	return cloneRow(row), nil
}

func (m *memStorage) GetCount(ctx context.Context, table string, qo corebase.QueryOptions) (int, error) {
	return len(m.rows), nil
}

func (m *memStorage) Create(ctx context.Context, table string, entity map[string]any) (map[string]any, error) {
	return nil, nil
}

func (m *memStorage) CreateMany(ctx context.Context, table string, entities []map[string]any) ([]map[string]any, error) {
	return nil, nil
}

func (m *memStorage) BatchUpdate(ctx context.Context, table string, entities []map[string]any) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(entities))
	for _, e := range entities {
		idStr, _ := e["_id"].(string)
		existing, ok := m.rows[idStr]
		if !ok {
			return nil, apperr.NotFound(table)
		}
		for k, v := range e {
			existing[k] = v
		}
		m.rows[idStr] = existing
		out = append(out, cloneRow(existing))
	}
	return out, nil
}

func (m *memStorage) FullUpdateById(ctx context.Context, table string, id corebase.Id, entity map[string]any) (map[string]any, error) {
	return nil, nil
}

func (m *memStorage) PartialUpdateById(ctx context.Context, table string, id corebase.Id, patch map[string]any) (map[string]any, error) {
	return nil, nil
}

func (m *memStorage) Update(ctx context.Context, table string, qo corebase.QueryOptions, patch map[string]any) (int, error) {
	return 0, nil
}

func (m *memStorage) DeleteById(ctx context.Context, table string, id corebase.Id) (corebase.DeleteResult, error) {
	return corebase.DeleteResult{}, nil
}

func (m *memStorage) DeleteMany(ctx context.Context, table string, qo corebase.QueryOptions) (corebase.DeleteResult, error) {
	return corebase.DeleteResult{}, nil
}

func (m *memStorage) Find(ctx context.Context, table string, qo corebase.QueryOptions) ([]map[string]any, error) {
	return nil, nil
}

func (m *memStorage) FindOne(ctx context.Context, table string, qo corebase.QueryOptions) (map[string]any, error) {
	return nil, nil
}

func (m *memStorage) IdSchema() corebase.IdSchema { return corebase.RelationalIdSchema{} }

func cloneRow(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

func TestBatchUpdate_RejectsWriteToRowOutsideCallerOrg(t *testing.T) {
	storage := newMemStorage()
	storage.rows["1"] = map[string]any{"_id": "1", "_orgId": "99", "name": "victim"}

	inner := corebase.NewGenericService[tenantWidget]("widgets", storage, tenantWidgetSpec(), nil, nil, corebase.Hooks[tenantWidget]{})
	svc := corebase.NewMultiTenantService[tenantWidget](inner, corebase.NewRelationalId(0))

	attacker := corebase.UserContext{}.WithOrg(corebase.NewRelationalId(7))

	_, err := svc.BatchUpdate(context.Background(), attacker, []map[string]any{
		{"_id": "1", "name": "hijacked"},
	})
	require.Error(t, err)

	assert.Equal(t, "99", storage.rows["1"]["_orgId"])
	assert.Equal(t, "victim", storage.rows["1"]["name"])
}

func TestBatchUpdate_AllowsWriteToRowInCallerOrg(t *testing.T) {
	storage := newMemStorage()
	storage.rows["1"] = map[string]any{"_id": "1", "_orgId": "7", "name": "old"}

	inner := corebase.NewGenericService[tenantWidget]("widgets", storage, tenantWidgetSpec(), nil, nil, corebase.Hooks[tenantWidget]{})
	svc := corebase.NewMultiTenantService[tenantWidget](inner, corebase.NewRelationalId(0))

	owner := corebase.UserContext{}.WithOrg(corebase.NewRelationalId(7))

	out, err := svc.BatchUpdate(context.Background(), owner, []map[string]any{
		{"_id": "1", "name": "new"},
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "new", out[0].Name)
}
