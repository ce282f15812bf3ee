// Package account wires corebase over the users table: the one demo
// entity whose create path needs a hook, turning an inbound plaintext
// password into a bcrypt hash before anything reaches storage.
package account

import (
	"context"
	"time"

	"github.com/corebase/corebase/internal/platform/apperr"
	"github.com/corebase/corebase/internal/platform/database/schema"
	"github.com/corebase/corebase/internal/platform/sec"
	"github.com/corebase/corebase/pkg/corebase"
)

// Account is the wire/domain shape of one row in users. Password is
// write-only: present on create/update requests, never stored or
// returned; PasswordHash is the stored form and is never projected.
type Account struct {
	Id        corebase.Id `json:"_id"`
	OrgId     corebase.Id `json:"_orgId"`
	Created   time.Time   `json:"_created"`
	CreatedBy corebase.Id `json:"_createdBy"`
	Updated   time.Time   `json:"_updated"`
	UpdatedBy corebase.Id `json:"_updatedBy"`

	Email        string `json:"email" validate:"required,email,max=200"`
	Password     string `json:"password,omitempty" validate:"omitempty,min=8"`
	PasswordHash string `json:"passwordHash,omitempty"`
}

// Spec builds the ModelSpec for Account.
func Spec(idSchema corebase.IdSchema) *corebase.ModelSpec[Account] {
	fields := append(corebase.AuditFieldSpecs(),
		corebase.FieldSpec{WireName: "email", GoName: "Email", Projected: true},
		corebase.FieldSpec{WireName: "passwordHash", GoName: "PasswordHash", Projected: false},
	)
	return corebase.NewModelSpec[Account](schema.Users, idSchema, true, fields)
}

// hashPasswordHook implements Hooks.BeforeCreate/BeforeUpdate: any account
// carrying a plaintext Password is rehashed into PasswordHash, and the
// plaintext is discarded so it's never encoded onto the wire or persisted.
func hashPasswordHook(_ context.Context, _ corebase.UserContext, accounts []Account) ([]Account, error) {
	for i, a := range accounts {
		if a.Password == "" {
			continue
		}
		hash, err := sec.HashPassword(a.Password)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		accounts[i].PasswordHash = hash
		accounts[i].Password = ""
	}
	return accounts, nil
}

// NewService builds the tenant-scoped Account service.
func NewService(storage corebase.Storage, idSchema corebase.IdSchema, metaOrgId corebase.Id) *corebase.MultiTenantService[Account] {
	inner := corebase.NewGenericService[Account](schema.Users, storage, Spec(idSchema), nil, nil, corebase.Hooks[Account]{
		BeforeCreate: hashPasswordHook,
		BeforeUpdate: hashPasswordHook,
	})
	return corebase.NewMultiTenantService[Account](inner, metaOrgId)
}

// JoinOps is the join graph the list route compiles: Account ->
// UserRoles -> Roles, a chained many-to-many attached under "roles" so
// GET /api/accounts returns each account's granted roles inline.
func JoinOps() []corebase.Operation {
	return []corebase.Operation{
		corebase.LeftJoinMany(schema.UserRoles, "_id", "userId", "userRoles"),
		corebase.LeftJoinMany(schema.Roles, "userRoles.roleId", "_id", "roles"),
	}
}

// NewController builds the REST controller. Project always strips
// passwordHash (and the write-only password, which is never Projected
// either) from responses.
func NewController(svc *corebase.MultiTenantService[Account], idSchema corebase.IdSchema, authenticator corebase.Authenticator) *corebase.Controller[Account] {
	return &corebase.Controller[Account]{
		Slug:          "accounts",
		Service:       svc,
		IdSchema:      idSchema,
		Authenticator: authenticator,
		Project:       Spec(idSchema).Project,
		OpsForGet:     JoinOps(),
	}
}
