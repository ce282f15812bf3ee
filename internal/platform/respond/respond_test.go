package respond_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebase/corebase/internal/platform/apperr"
	"github.com/corebase/corebase/internal/platform/respond"
	"github.com/corebase/corebase/pkg/pagination"
)

func TestOK_WritesSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	respond.OK(rec, map[string]string{"name": "widget"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var body respond.SuccessEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string]any{"name": "widget"}, body.Data)
}

func TestCreated_Writes201(t *testing.T) {
	rec := httptest.NewRecorder()
	respond.Created(rec, map[string]string{"id": "1"})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestNoContent_Writes204WithEmptyBody(t *testing.T) {
	rec := httptest.NewRecorder()
	respond.NoContent(rec)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.Bytes())
}

func TestPaginated_WritesDataAndMeta(t *testing.T) {
	rec := httptest.NewRecorder()
	meta := pagination.Meta{Total: 10, Page: 1, Limit: 5}
	respond.Paginated(rec, []int{1, 2, 3}, meta)

	var body respond.PaginatedEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 10, body.Meta.Total)
}

func TestError_AppErrorWritesItsOwnStatusAndCode(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/widgets/1", nil)

	respond.Error(rec, req, apperr.NotFound("Widget"))

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body respond.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "NOT_FOUND", body.Code)
	assert.Equal(t, "Widget not found", body.Error)
}

func TestError_PlainErrorBecomesInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/widgets/1", nil)

	respond.Error(rec, req, errors.New("driver: connection reset"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body respond.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL_ERROR", body.Code)
	assert.NotContains(t, body.Error, "driver")
}

func TestNotImplemented_Writes501(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/not-done", nil)

	respond.NotImplemented(rec, req)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}
