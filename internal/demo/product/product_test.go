package product_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebase/corebase/internal/demo/product"
	"github.com/corebase/corebase/pkg/corebase"
	"github.com/corebase/corebase/pkg/pointer"
)

func TestSpec_EncodeDecodeRoundTrip(t *testing.T) {
	spec := product.Spec(corebase.RelationalIdSchema{})

	p := product.Product{
		Id:          corebase.NewRelationalId(1),
		OrgId:       corebase.NewRelationalId(9),
		Name:        "Widget",
		Description: "A fine widget",
		PriceCents:  1999,
		CategoryId:  pointer.To(corebase.NewRelationalId(4)),
	}

	encoded, err := spec.Encode(p)
	require.NoError(t, err)
	assert.Equal(t, "4", encoded["categoryId"])

	decoded, _, err := spec.Decode(encoded, false)
	require.NoError(t, err)
	require.NotNil(t, decoded.CategoryId)
	assert.Equal(t, "4", decoded.CategoryId.String())
	assert.Equal(t, p.Name, decoded.Name)
	assert.Equal(t, p.PriceCents, decoded.PriceCents)
}

func TestSpec_Encode_NilCategoryIdOmitted(t *testing.T) {
	spec := product.Spec(corebase.RelationalIdSchema{})

	p := product.Product{Id: corebase.NewRelationalId(1), Name: "Widget"}
	encoded, err := spec.Encode(p)
	require.NoError(t, err)
	assert.Nil(t, encoded["categoryId"])
}

func TestSpec_Validate_RequiresName(t *testing.T) {
	spec := product.Spec(corebase.RelationalIdSchema{})

	errs := spec.Validate(product.Product{}, false)
	assert.NotEmpty(t, errs)

	errs = spec.Validate(product.Product{Name: "Widget"}, false)
	assert.Empty(t, errs)
}

func TestJoinOps_AttachesCategoryAndTags(t *testing.T) {
	ops := product.JoinOps()
	require.Len(t, ops, 3)
}

func TestNewController_MountsProductsSlug(t *testing.T) {
	svc := product.NewService(nil, corebase.RelationalIdSchema{}, corebase.Id{})
	ctrl := product.NewController(svc, corebase.RelationalIdSchema{}, nil)
	assert.Equal(t, "products", ctrl.Slug)
}
