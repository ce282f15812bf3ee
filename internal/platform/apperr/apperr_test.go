package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/corebase/corebase/internal/platform/apperr"
)

func TestConstructors_SetExpectedStatusAndCode(t *testing.T) {
	cases := []struct {
		name   string
		err    *apperr.AppError
		status int
		code   string
	}{
		{"NotFound", apperr.NotFound("Widget"), http.StatusNotFound, "NOT_FOUND"},
		{"Unauthorized", apperr.Unauthorized("nope"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"Forbidden", apperr.Forbidden("nope"), http.StatusForbidden, "FORBIDDEN"},
		{"Conflict", apperr.Conflict("dup"), http.StatusConflict, "CONFLICT"},
		{"ValidationError", apperr.ValidationError("bad"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"BadRequest", apperr.BadRequest("bad"), http.StatusBadRequest, "BAD_REQUEST"},
		{"RateLimited", apperr.RateLimited(5), http.StatusTooManyRequests, "RATE_LIMITED"},
		{"Unprocessable", apperr.Unprocessable("bad"), http.StatusUnprocessableEntity, "UNPROCESSABLE"},
		{"Internal", apperr.Internal(errors.New("boom")), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"ServiceUnavailable", apperr.ServiceUnavailable("down"), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.status, c.err.HTTPStatus)
			assert.Equal(t, c.code, c.err.Code)
			assert.Equal(t, c.code, c.err.Kind())
		})
	}
}

func TestNotFound_MessageIncludesResource(t *testing.T) {
	err := apperr.NotFound("Comic")
	assert.Equal(t, "Comic not found", err.Error())
}

func TestRateLimited_MessageIncludesRetryAfter(t *testing.T) {
	err := apperr.RateLimited(30)
	assert.Contains(t, err.Message, "30s")
}

func TestInternal_CausePreservedButNotInMessage(t *testing.T) {
	cause := errors.New("pq: connection refused")
	err := apperr.Internal(cause)

	assert.Equal(t, "An unexpected error occurred", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestValidationError_CarriesFieldDetails(t *testing.T) {
	err := apperr.ValidationError("invalid input",
		apperr.FieldError{Field: "email", Message: "required"},
		apperr.FieldError{Field: "age", Message: "must be positive"},
	)
	assert.Len(t, err.Details, 2)
	assert.Equal(t, "email", err.Details[0].Field)
}

func TestIsAppError_AndAs(t *testing.T) {
	wrapped := fmt.Errorf("context: %w", apperr.NotFound("Widget"))

	assert.True(t, apperr.IsAppError(wrapped))
	assert.False(t, apperr.IsAppError(errors.New("plain")))

	ae := apperr.As(wrapped)
	assert.NotNil(t, ae)
	assert.Equal(t, "NOT_FOUND", ae.Code)

	assert.Nil(t, apperr.As(errors.New("plain")))
}
