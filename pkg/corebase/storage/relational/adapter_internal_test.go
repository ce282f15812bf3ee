package relational

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/corebase/corebase/pkg/corebase"
)

func TestBuildOrderBy_PaginationAppliesWithoutOrderBy(t *testing.T) {
	schema := TableSchema{Table: "widgets", Columns: []string{"name"}}
	qo := corebase.QueryOptions{Page: 2, PageSize: 10}

	got := buildOrderBy(schema, qo)
	assert.Equal(t, " LIMIT 10 OFFSET 10", got)
}

func TestBuildOrderBy_PaginationAppliesWithDisallowedOrderBy(t *testing.T) {
	schema := TableSchema{Table: "widgets", Columns: []string{"name"}}
	qo := corebase.QueryOptions{Page: 1, PageSize: 5, OrderBy: "not_a_real_column"}

	got := buildOrderBy(schema, qo)
	assert.Equal(t, " LIMIT 5 OFFSET 0", got)
}

func TestBuildOrderBy_NoPaginationNoOrderByIsEmpty(t *testing.T) {
	schema := TableSchema{Table: "widgets", Columns: []string{"name"}}
	got := buildOrderBy(schema, corebase.QueryOptions{})
	assert.Equal(t, "", got)
}

func TestBuildOrderBy_OrderByAndPaginationTogether(t *testing.T) {
	schema := TableSchema{Table: "widgets", Columns: []string{"name"}}
	qo := corebase.QueryOptions{Page: 1, PageSize: 20, OrderBy: "name", SortDirection: corebase.SortDesc}

	got := buildOrderBy(schema, qo)
	assert.Equal(t, ` ORDER BY "name" DESC LIMIT 20 OFFSET 0`, got)
}

func TestBuildOrderBy_OrderByWithoutPagination(t *testing.T) {
	schema := TableSchema{Table: "widgets", Columns: []string{"name"}}
	qo := corebase.QueryOptions{OrderBy: "name"}

	got := buildOrderBy(schema, qo)
	assert.Equal(t, ` ORDER BY "name" ASC`, got)
}
