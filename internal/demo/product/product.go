// Package product is the demo entity that exercises the Join Planner's
// full one-to-one and many-to-many machinery: a one-to-one Category join
// plus a chained many-to-many Tags join through the product_tags table.
package product

import (
	"time"

	"github.com/corebase/corebase/internal/platform/database/schema"
	"github.com/corebase/corebase/pkg/corebase"
)

// Product is the wire/domain shape of one row in products.
type Product struct {
	Id        corebase.Id `json:"_id"`
	OrgId     corebase.Id `json:"_orgId"`
	Created   time.Time   `json:"_created"`
	CreatedBy corebase.Id `json:"_createdBy"`
	Updated   time.Time   `json:"_updated"`
	UpdatedBy corebase.Id `json:"_updatedBy"`

	Name        string       `json:"name" validate:"required,max=200"`
	Description string       `json:"description,omitempty" validate:"max=2000"`
	PriceCents  int64        `json:"priceCents" validate:"min=0"`
	CategoryId  *corebase.Id `json:"categoryId,omitempty"`
}

// Category is the one-to-one join target attached under the "category"
// alias by OpsForGet.
type Category struct {
	Id   corebase.Id `json:"_id"`
	Name string      `json:"name"`
}

// Tag is one element of the "tags" many-join array attached by OpsForGet.
type Tag struct {
	Id    corebase.Id `json:"_id"`
	Label string      `json:"label"`
}

// Spec builds the ModelSpec for Product.
func Spec(idSchema corebase.IdSchema) *corebase.ModelSpec[Product] {
	fields := append(corebase.AuditFieldSpecs(),
		corebase.FieldSpec{WireName: "name", GoName: "Name", Projected: true},
		corebase.FieldSpec{WireName: "description", GoName: "Description", Projected: true},
		corebase.FieldSpec{WireName: "priceCents", GoName: "PriceCents", Projected: true},
		corebase.FieldSpec{WireName: "categoryId", GoName: "CategoryId", Kind: corebase.KindId, Projected: true},
	)
	return corebase.NewModelSpec[Product](schema.Products, idSchema, true, fields)
}

// NewService builds the tenant-scoped Product service.
func NewService(storage corebase.Storage, idSchema corebase.IdSchema, metaOrgId corebase.Id) *corebase.MultiTenantService[Product] {
	inner := corebase.NewGenericService[Product](schema.Products, storage, Spec(idSchema), nil, nil, corebase.Hooks[Product]{})
	return corebase.NewMultiTenantService[Product](inner, metaOrgId)
}

// JoinOps is the join graph the list route compiles: Product -> Category
// (one-to-one, via categoryId) and Product -> ProductTags -> Tags
// (chained many-to-many, via the product_tags join table), attached under
// "category" and "tags" respectively.
func JoinOps() []corebase.Operation {
	return []corebase.Operation{
		corebase.LeftJoin(schema.Categories, "categoryId", "_id", "category"),
		corebase.LeftJoinMany(schema.ProductTags, "_id", "productId", "productTags"),
		corebase.LeftJoinMany(schema.Tags, "productTags.tagId", "_id", "tags"),
	}
}

// NewController builds the REST controller, wiring JoinOps into the list
// route so GET /api/products returns each product's category and tags
// inline.
func NewController(svc *corebase.MultiTenantService[Product], idSchema corebase.IdSchema, authenticator corebase.Authenticator) *corebase.Controller[Product] {
	return &corebase.Controller[Product]{
		Slug:          "products",
		Service:       svc,
		IdSchema:      idSchema,
		Authenticator: authenticator,
		Project:       Spec(idSchema).Project,
		OpsForGet:     JoinOps(),
	}
}
