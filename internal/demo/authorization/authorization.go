// Package authorization wires corebase over the authorizations table: a
// grant entity tying one role to one feature, the role/feature-facing
// half of the RBAC join graph that account.JoinOps's user_roles chain
// feeds into from the account side.
package authorization

import (
	"github.com/corebase/corebase/internal/platform/database/schema"
	"github.com/corebase/corebase/pkg/corebase"
)

// Authorization is the wire/domain shape of one row in authorizations:
// "role RoleId may use feature FeatureId". Like Feature, it carries no
// _orgId of its own since the grant is scoped through RoleId's own org.
type Authorization struct {
	Id        corebase.Id `json:"_id"`
	RoleId    corebase.Id `json:"roleId" validate:"required"`
	FeatureId corebase.Id `json:"featureId" validate:"required"`
}

// RoleRef is the one-to-one join target attached under the "role" alias.
type RoleRef struct {
	Id   corebase.Id `json:"_id"`
	Name string      `json:"name"`
}

// FeatureRef is the one-to-one join target attached under the "feature"
// alias.
type FeatureRef struct {
	Id   corebase.Id `json:"_id"`
	Slug string      `json:"slug"`
}

// Spec builds the ModelSpec for Authorization.
func Spec(idSchema corebase.IdSchema) *corebase.ModelSpec[Authorization] {
	fields := []corebase.FieldSpec{
		{WireName: "_id", GoName: "Id", Kind: corebase.KindId, Projected: true},
		{WireName: "roleId", GoName: "RoleId", Kind: corebase.KindId, Projected: true},
		{WireName: "featureId", GoName: "FeatureId", Kind: corebase.KindId, Projected: true},
	}
	return corebase.NewModelSpec[Authorization](schema.Authorizations, idSchema, false, fields)
}

// NewService builds the Authorization GenericService.
func NewService(storage corebase.Storage, idSchema corebase.IdSchema) *corebase.GenericService[Authorization] {
	return corebase.NewGenericService[Authorization](schema.Authorizations, storage, Spec(idSchema), nil, nil, corebase.Hooks[Authorization]{})
}

// JoinOps attaches the granted role and feature inline under "role" and
// "feature" respectively.
func JoinOps() []corebase.Operation {
	return []corebase.Operation{
		corebase.LeftJoin(schema.Roles, "roleId", "_id", "role"),
		corebase.LeftJoin(schema.Features, "featureId", "_id", "feature"),
	}
}

// NewController builds the REST controller, wiring JoinOps into the list
// route so GET /api/authorizations returns each grant's role and feature
// inline.
func NewController(svc *corebase.GenericService[Authorization], idSchema corebase.IdSchema, authenticator corebase.Authenticator) *corebase.Controller[Authorization] {
	return &corebase.Controller[Authorization]{
		Slug:          "authorizations",
		Service:       svc,
		IdSchema:      idSchema,
		Authenticator: authenticator,
		Project:       Spec(idSchema).Project,
		OpsForGet:     JoinOps(),
	}
}
