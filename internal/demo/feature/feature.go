// Package feature wires corebase over the features table: a global,
// non-tenant-scoped catalog of gateable capabilities (slug + description)
// that authorization rows grant to a role.
package feature

import (
	"context"

	"github.com/corebase/corebase/internal/platform/database/schema"
	"github.com/corebase/corebase/pkg/corebase"
	"github.com/corebase/corebase/pkg/slug"
)

// Feature is the wire/domain shape of one row in features. Like
// organizations, it carries no _orgId: a feature is a platform-wide
// capability, not owned by any one tenant.
type Feature struct {
	Id corebase.Id `json:"_id"`

	Slug        string `json:"slug" validate:"required,max=100"`
	Description string `json:"description,omitempty" validate:"max=500"`
}

// Spec builds the ModelSpec for Feature.
func Spec(idSchema corebase.IdSchema) *corebase.ModelSpec[Feature] {
	fields := []corebase.FieldSpec{
		{WireName: "_id", GoName: "Id", Kind: corebase.KindId, Projected: true},
		{WireName: "slug", GoName: "Slug", Projected: true},
		{WireName: "description", GoName: "Description", Projected: true},
	}
	return corebase.NewModelSpec[Feature](schema.Features, idSchema, false, fields)
}

// slugifyHook implements Hooks.BeforeCreate/BeforeUpdate: whatever slug an
// inbound feature carries is re-derived through slug.From, so "Dark Mode"
// and "dark-mode" both land on the same row instead of two.
func slugifyHook(_ context.Context, _ corebase.UserContext, features []Feature) ([]Feature, error) {
	for i, f := range features {
		features[i].Slug = slug.From(f.Slug)
	}
	return features, nil
}

// NewService builds the Feature GenericService.
func NewService(storage corebase.Storage, idSchema corebase.IdSchema) *corebase.GenericService[Feature] {
	return corebase.NewGenericService[Feature](schema.Features, storage, Spec(idSchema), nil, nil, corebase.Hooks[Feature]{
		BeforeCreate: slugifyHook,
		BeforeUpdate: slugifyHook,
	})
}

// NewController builds the REST controller.
func NewController(svc *corebase.GenericService[Feature], idSchema corebase.IdSchema, authenticator corebase.Authenticator) *corebase.Controller[Feature] {
	return &corebase.Controller[Feature]{
		Slug:          "features",
		Service:       svc,
		IdSchema:      idSchema,
		Authenticator: authenticator,
		Project:       Spec(idSchema).Project,
	}
}
