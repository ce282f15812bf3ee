package corebase

import (
	"sync"
)

// ActingUser is the minimal identity a [UserContext] carries. Concrete
// deployments may hold a richer user record elsewhere; the pipeline only
// ever needs the id for audit stamping and authorization checks.
type ActingUser struct {
	Id    Id
	Email string
}

// UserContext carries the acting identity, tenant, and system flag through
// every Service/Storage call. It is request-scoped: constructed once by the
// Authenticator collaborator (or, for the system path, by migrations/
// bootstrap code) and passed by value for the lifetime of one request. It
// is never persisted.
type UserContext struct {
	User Id
	// OrgId is the tenant scope. Zero value means "no tenant" (single-
	// tenant deployments, or the system path before a meta-org exists).
	OrgId Id
	// hasOrg distinguishes an explicitly-set zero-valued OrgId from "no
	// tenant configured", since Id's zero value is itself meaningful for
	// relational ids.
	hasOrg bool
	// IsSystem is true only when this context was obtained through the
	// system-bootstrap path (migrations, process startup). External
	// requests can never set it; the Authenticator collaborator has no
	// way to produce a UserContext with IsSystem true.
	IsSystem bool
}

// HasOrg reports whether this context carries a tenant scope.
func (u UserContext) HasOrg() bool { return u.hasOrg }

// NewUserContext builds a request-scoped, non-system UserContext for an
// authenticated user with no tenant. Use WithOrg to attach a tenant.
func NewUserContext(user Id) UserContext {
	return UserContext{User: user}
}

// WithOrg returns a copy of u scoped to orgId.
func (u UserContext) WithOrg(orgId Id) UserContext {
	u.OrgId = orgId
	u.hasOrg = true
	return u
}

var (
	systemCtx UserContext
	systemSet bool
	systemMu  sync.RWMutex
)

// InitializeSystemUserContext sets the process-wide SystemUserContext
// exactly once. Subsequent calls panic: per the design, this cell is
// read-only after startup and must never be reinitialized from a request
// path. Callers are migrations (after creating the meta-org) or, in
// single-tenant deployments, explicit process startup code run before any
// admin-user migration.
func InitializeSystemUserContext(ctx UserContext) {
	systemMu.Lock()
	defer systemMu.Unlock()
	if systemSet {
		panic("corebase: SystemUserContext already initialized")
	}
	ctx.IsSystem = true
	systemCtx = ctx
	systemSet = true
}

// IsSystemUserContextInitialized reports whether InitializeSystemUserContext
// has run yet.
func IsSystemUserContextInitialized() bool {
	systemMu.RLock()
	defer systemMu.RUnlock()
	return systemSet
}

// SystemUserContext returns the process-wide system context. It panics if
// called before initialization — the engine is required to fail loudly
// rather than lazily initialize from a request path.
func SystemUserContext() UserContext {
	systemMu.RLock()
	defer systemMu.RUnlock()
	if !systemSet {
		panic("corebase: SystemUserContext accessed before initialization")
	}
	return systemCtx
}

// resetSystemUserContextForTest clears the singleton. Test-only; never
// called from production code paths.
func resetSystemUserContextForTest() {
	systemMu.Lock()
	defer systemMu.Unlock()
	systemSet = false
	systemCtx = UserContext{}
}
