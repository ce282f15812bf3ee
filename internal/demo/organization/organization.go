// Package organization wires corebase over the tenant-root entity: the
// organizations table the synthetic migration bootstraps. It is the one
// demo entity that is never itself tenant-scoped (an organization can't
// belong to another organization), so it's backed by a plain
// GenericService rather than a MultiTenantService.
package organization

import (
	"github.com/corebase/corebase/internal/platform/database/schema"
	"github.com/corebase/corebase/pkg/corebase"
)

// Organization is the wire/domain shape of one row in organizations. It
// carries no audit quintuple and no _orgId: an organization is the tenant
// root, it doesn't belong to one, and the bootstrap DDL that creates it
// predates the audit columns the other demo tables carry.
type Organization struct {
	Id corebase.Id `json:"_id"`

	Name      string `json:"name" validate:"required,max=200"`
	Code      string `json:"code" validate:"required,max=50"`
	IsMetaOrg bool   `json:"isMetaOrg"`
}

// Spec builds the ModelSpec for Organization. idSchema is backend-selected
// (corebase.RelationalIdSchema{} or corebase.DocumentIdSchema{}).
func Spec(idSchema corebase.IdSchema) *corebase.ModelSpec[Organization] {
	fields := []corebase.FieldSpec{
		{WireName: "_id", GoName: "Id", Kind: corebase.KindId, Projected: true},
		{WireName: "name", GoName: "Name", Projected: true},
		{WireName: "code", GoName: "Code", Projected: true},
		{WireName: "isMetaOrg", GoName: "IsMetaOrg", Projected: true},
	}
	return corebase.NewModelSpec[Organization](schema.Organizations, idSchema, false, fields)
}

// NewService builds the organization GenericService.
func NewService(storage corebase.Storage, idSchema corebase.IdSchema) *corebase.GenericService[Organization] {
	return corebase.NewGenericService[Organization](schema.Organizations, storage, Spec(idSchema), nil, nil, corebase.Hooks[Organization]{})
}

// NewController builds the REST controller, projecting the full schema
// (organizations carry no secret fields).
func NewController(svc *corebase.GenericService[Organization], idSchema corebase.IdSchema, authenticator corebase.Authenticator) *corebase.Controller[Organization] {
	return &corebase.Controller[Organization]{
		Slug:          "organizations",
		Service:       svc,
		IdSchema:      idSchema,
		Authenticator: authenticator,
		Project:       Spec(idSchema).Project,
	}
}
