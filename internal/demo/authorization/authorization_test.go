package authorization_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebase/corebase/internal/demo/authorization"
	"github.com/corebase/corebase/pkg/corebase"
)

func TestSpec_EncodeDecodeRoundTrip(t *testing.T) {
	spec := authorization.Spec(corebase.RelationalIdSchema{})

	a := authorization.Authorization{
		Id:        corebase.NewRelationalId(1),
		RoleId:    corebase.NewRelationalId(2),
		FeatureId: corebase.NewRelationalId(3),
	}

	encoded, err := spec.Encode(a)
	require.NoError(t, err)
	assert.Equal(t, "2", encoded["roleId"])
	assert.Equal(t, "3", encoded["featureId"])

	decoded, _, err := spec.Decode(encoded, false)
	require.NoError(t, err)
	assert.Equal(t, "2", decoded.RoleId.String())
	assert.Equal(t, "3", decoded.FeatureId.String())
}

func TestSpec_Validate_RequiresRoleAndFeature(t *testing.T) {
	spec := authorization.Spec(corebase.RelationalIdSchema{})

	errs := spec.Validate(authorization.Authorization{}, false)
	assert.NotEmpty(t, errs)

	errs = spec.Validate(authorization.Authorization{
		RoleId:    corebase.NewRelationalId(1),
		FeatureId: corebase.NewRelationalId(2),
	}, false)
	assert.Empty(t, errs)
}

func TestJoinOps_AttachesRoleAndFeature(t *testing.T) {
	ops := authorization.JoinOps()
	require.Len(t, ops, 2)
}

func TestNewController_MountsAuthorizationsSlug(t *testing.T) {
	svc := authorization.NewService(nil, corebase.RelationalIdSchema{})
	ctrl := authorization.NewController(svc, corebase.RelationalIdSchema{}, nil)
	assert.Equal(t, "authorizations", ctrl.Slug)
}
