package role_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebase/corebase/internal/demo/role"
	"github.com/corebase/corebase/pkg/corebase"
)

func TestSpec_EncodeDecodeRoundTrip(t *testing.T) {
	spec := role.Spec(corebase.RelationalIdSchema{})

	r := role.Role{Id: corebase.NewRelationalId(1), OrgId: corebase.NewRelationalId(2), Name: "admin"}

	encoded, err := spec.Encode(r)
	require.NoError(t, err)
	assert.Equal(t, "admin", encoded["name"])

	decoded, _, err := spec.Decode(encoded, false)
	require.NoError(t, err)
	assert.Equal(t, r.Name, decoded.Name)
	assert.Equal(t, "2", decoded.OrgId.String())
}

func TestSpec_Validate_RequiresName(t *testing.T) {
	spec := role.Spec(corebase.RelationalIdSchema{})

	errs := spec.Validate(role.Role{}, false)
	assert.NotEmpty(t, errs)

	errs = spec.Validate(role.Role{Name: "admin"}, false)
	assert.Empty(t, errs)
}

func TestNewController_MountsRolesSlug(t *testing.T) {
	svc := role.NewService(nil, corebase.RelationalIdSchema{}, corebase.Id{})
	ctrl := role.NewController(svc, corebase.RelationalIdSchema{}, nil)
	assert.Equal(t, "roles", ctrl.Slug)
}
