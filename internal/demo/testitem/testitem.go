// Package testitem is a minimal tenant-scoped entity kept deliberately
// simple: it exists to drive the cross-cutting behaviors (duplicate-key
// conflicts on the unique label, tamper rejection via PrepareWrite,
// projection stripping of the secret field) rather than to model a real
// business concept.
package testitem

import (
	"time"

	"github.com/corebase/corebase/internal/platform/database/schema"
	"github.com/corebase/corebase/pkg/corebase"
)

// TestItem is the wire/domain shape of one row in testitems. Secret is
// never projected, exercising the same write-but-don't-return path as
// Account.PasswordHash without needing a hashing hook.
type TestItem struct {
	Id        corebase.Id `json:"_id"`
	OrgId     corebase.Id `json:"_orgId"`
	Created   time.Time   `json:"_created"`
	CreatedBy corebase.Id `json:"_createdBy"`
	Updated   time.Time   `json:"_updated"`
	UpdatedBy corebase.Id `json:"_updatedBy"`

	Label  string `json:"label" validate:"required,max=200"`
	Secret string `json:"secret,omitempty"`
}

// Spec builds the ModelSpec for TestItem.
func Spec(idSchema corebase.IdSchema) *corebase.ModelSpec[TestItem] {
	fields := append(corebase.AuditFieldSpecs(),
		corebase.FieldSpec{WireName: "label", GoName: "Label", Projected: true},
		corebase.FieldSpec{WireName: "secret", GoName: "Secret", Projected: false},
	)
	return corebase.NewModelSpec[TestItem](schema.TestItems, idSchema, true, fields)
}

// NewService builds the tenant-scoped TestItem service.
func NewService(storage corebase.Storage, idSchema corebase.IdSchema, metaOrgId corebase.Id) *corebase.MultiTenantService[TestItem] {
	inner := corebase.NewGenericService[TestItem](schema.TestItems, storage, Spec(idSchema), nil, nil, corebase.Hooks[TestItem]{})
	return corebase.NewMultiTenantService[TestItem](inner, metaOrgId)
}

// NewController builds the REST controller.
func NewController(svc *corebase.MultiTenantService[TestItem], idSchema corebase.IdSchema, authenticator corebase.Authenticator) *corebase.Controller[TestItem] {
	return &corebase.Controller[TestItem]{
		Slug:          "testitems",
		Service:       svc,
		IdSchema:      idSchema,
		Authenticator: authenticator,
		Project:       Spec(idSchema).Project,
	}
}
