package feature_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebase/corebase/internal/demo/feature"
	"github.com/corebase/corebase/pkg/corebase"
)

func TestSpec_EncodeDecodeRoundTrip(t *testing.T) {
	spec := feature.Spec(corebase.RelationalIdSchema{})

	f := feature.Feature{Id: corebase.NewRelationalId(1), Slug: "dark-mode", Description: "Dark theme"}

	encoded, err := spec.Encode(f)
	require.NoError(t, err)
	assert.Equal(t, "dark-mode", encoded["slug"])

	decoded, _, err := spec.Decode(encoded, false)
	require.NoError(t, err)
	assert.Equal(t, f.Slug, decoded.Slug)
	assert.Equal(t, f.Description, decoded.Description)
}

func TestSpec_Validate_RequiresSlug(t *testing.T) {
	spec := feature.Spec(corebase.RelationalIdSchema{})

	errs := spec.Validate(feature.Feature{}, false)
	assert.NotEmpty(t, errs)

	errs = spec.Validate(feature.Feature{Slug: "dark-mode"}, false)
	assert.Empty(t, errs)
}

func TestNewController_MountsFeaturesSlug(t *testing.T) {
	svc := feature.NewService(nil, corebase.RelationalIdSchema{})
	ctrl := feature.NewController(svc, corebase.RelationalIdSchema{}, nil)
	assert.Equal(t, "features", ctrl.Slug)
}
