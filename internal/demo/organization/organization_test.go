package organization_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebase/corebase/internal/demo/organization"
	"github.com/corebase/corebase/pkg/corebase"
)

func TestSpec_EncodeDecodeRoundTrip(t *testing.T) {
	spec := organization.Spec(corebase.RelationalIdSchema{})

	org := organization.Organization{
		Id:        corebase.NewRelationalId(1),
		Name:      "Acme",
		Code:      "acme",
		IsMetaOrg: true,
	}

	encoded, err := spec.Encode(org)
	require.NoError(t, err)
	assert.Equal(t, "Acme", encoded["name"])
	assert.Equal(t, "acme", encoded["code"])
	assert.Equal(t, true, encoded["isMetaOrg"])

	decoded, _, err := spec.Decode(encoded, false)
	require.NoError(t, err)
	assert.Equal(t, org.Name, decoded.Name)
	assert.Equal(t, org.Code, decoded.Code)
	assert.Equal(t, org.IsMetaOrg, decoded.IsMetaOrg)
}

func TestSpec_Validate_RequiresNameAndCode(t *testing.T) {
	spec := organization.Spec(corebase.RelationalIdSchema{})

	errs := spec.Validate(organization.Organization{}, false)
	assert.NotEmpty(t, errs)

	errs = spec.Validate(organization.Organization{Name: "Acme", Code: "acme"}, false)
	assert.Empty(t, errs)
}

func TestNewController_MountsOrganizationsSlug(t *testing.T) {
	svc := organization.NewService(nil, corebase.RelationalIdSchema{})
	ctrl := organization.NewController(svc, corebase.RelationalIdSchema{}, nil)
	assert.Equal(t, "organizations", ctrl.Slug)
}
