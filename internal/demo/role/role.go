// Package role wires corebase over the roles table: an org-scoped,
// named permission group, and the join target account.JoinOps chains
// through user_roles to attach a user's roles inline.
package role

import (
	"github.com/corebase/corebase/internal/platform/database/schema"
	"github.com/corebase/corebase/pkg/corebase"
)

// Role is the wire/domain shape of one row in roles. It carries no audit
// quintuple: the bootstrap DDL that seeds it predates the audit columns
// the later demo tables carry.
type Role struct {
	Id    corebase.Id `json:"_id"`
	OrgId corebase.Id `json:"_orgId"`

	Name string `json:"name" validate:"required,max=100"`
}

// Spec builds the ModelSpec for Role.
func Spec(idSchema corebase.IdSchema) *corebase.ModelSpec[Role] {
	fields := []corebase.FieldSpec{
		{WireName: "_id", GoName: "Id", Kind: corebase.KindId, Projected: true},
		{WireName: "_orgId", GoName: "OrgId", Kind: corebase.KindId, Projected: true},
		{WireName: "name", GoName: "Name", Projected: true},
	}
	return corebase.NewModelSpec[Role](schema.Roles, idSchema, false, fields)
}

// NewService builds the tenant-scoped Role service.
func NewService(storage corebase.Storage, idSchema corebase.IdSchema, metaOrgId corebase.Id) *corebase.MultiTenantService[Role] {
	inner := corebase.NewGenericService[Role](schema.Roles, storage, Spec(idSchema), nil, nil, corebase.Hooks[Role]{})
	return corebase.NewMultiTenantService[Role](inner, metaOrgId)
}

// NewController builds the REST controller.
func NewController(svc *corebase.MultiTenantService[Role], idSchema corebase.IdSchema, authenticator corebase.Authenticator) *corebase.Controller[Role] {
	return &corebase.Controller[Role]{
		Slug:          "roles",
		Service:       svc,
		IdSchema:      idSchema,
		Authenticator: authenticator,
		Project:       Spec(idSchema).Project,
	}
}
