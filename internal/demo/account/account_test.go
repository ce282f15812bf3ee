package account_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebase/corebase/internal/demo/account"
	"github.com/corebase/corebase/pkg/corebase"
)

func TestSpec_Project_OmitsPasswordAndHash(t *testing.T) {
	spec := account.Spec(corebase.RelationalIdSchema{})

	a := account.Account{
		Id:           corebase.NewRelationalId(1),
		Email:        "a@example.com",
		Password:     "supersecret",
		PasswordHash: "$2a$10$somehash",
	}

	projected, err := spec.Project(a)
	require.NoError(t, err)

	assert.Equal(t, "a@example.com", projected["email"])
	_, hasPassword := projected["password"]
	assert.False(t, hasPassword)
	_, hasHash := projected["passwordHash"]
	assert.False(t, hasHash)
}

func TestSpec_Validate_RequiresEmail(t *testing.T) {
	spec := account.Spec(corebase.RelationalIdSchema{})

	errs := spec.Validate(account.Account{}, false)
	assert.NotEmpty(t, errs)

	errs = spec.Validate(account.Account{Email: "a@example.com"}, false)
	assert.Empty(t, errs)
}

func TestSpec_Validate_RejectsShortPassword(t *testing.T) {
	spec := account.Spec(corebase.RelationalIdSchema{})

	errs := spec.Validate(account.Account{Email: "a@example.com", Password: "short"}, false)
	assert.NotEmpty(t, errs)
}

func TestNewController_MountsAccountsSlugAndProjectsHash(t *testing.T) {
	svc := account.NewService(nil, corebase.RelationalIdSchema{}, corebase.Id{})
	ctrl := account.NewController(svc, corebase.RelationalIdSchema{}, nil)
	assert.Equal(t, "accounts", ctrl.Slug)

	projected, err := ctrl.Project(account.Account{Email: "a@example.com", PasswordHash: "hash"})
	require.NoError(t, err)
	_, hasHash := projected["passwordHash"]
	assert.False(t, hasHash)
}
