package corebase

import "github.com/corebase/corebase/internal/platform/apperr"

// tenantScoper is the Scoper MultiTenantService installs: it forces
// _orgId = userContext.OrgId into every read filter, write set, and
// delete selector, and rejects (Forbidden) any write whose wire entity
// names a different tenant. When the context is system-scoped to the
// meta-org, enforcement is bypassed entirely — the only path allowed to
// write across tenants (migrations, cross-org admin bootstrap).
type tenantScoper struct {
	metaOrgId Id
}

func (t tenantScoper) bypassed(uc UserContext) bool {
	return uc.IsSystem && uc.HasOrg() && uc.OrgId.String() == t.metaOrgId.String()
}

func (t tenantScoper) PrepareQuery(uc UserContext, qo QueryOptions) (QueryOptions, error) {
	if t.bypassed(uc) {
		return qo, nil
	}
	if !uc.HasOrg() {
		return qo, apperr.Forbidden("tenant-scoped operation requires an organization context")
	}
	out := qo
	filters := make(map[string]Predicate, len(qo.Filters)+1)
	for k, v := range qo.Filters {
		filters[k] = v
	}
	filters["_orgId"] = Eq(uc.OrgId.String())
	out.Filters = filters
	return out, nil
}

func (t tenantScoper) PrepareWrite(uc UserContext, wire map[string]any) (map[string]any, error) {
	if t.bypassed(uc) {
		return wire, nil
	}
	if !uc.HasOrg() {
		return wire, apperr.Forbidden("tenant-scoped operation requires an organization context")
	}
	out := cloneMap(wire)
	if existing, ok := out["_orgId"]; ok {
		if s, _ := existing.(string); s != "" && s != uc.OrgId.String() {
			return nil, apperr.Forbidden("cannot write an entity belonging to another organization")
		}
	}
	out["_orgId"] = uc.OrgId.String()
	return out, nil
}

func (t tenantScoper) CheckRead(uc UserContext, entity map[string]any) error {
	if t.bypassed(uc) {
		return nil
	}
	if !uc.HasOrg() {
		return apperr.Forbidden("tenant-scoped operation requires an organization context")
	}
	if entity == nil {
		return nil
	}
	orgId, _ := entity["_orgId"].(string)
	if orgId != "" && orgId != uc.OrgId.String() {
		return apperr.NotFound("Resource")
	}
	return nil
}

// MultiTenantService wraps a GenericService and enforces tenant isolation
// on every operation by installing tenantScoper as its Scoper. Every
// GenericService method is available unmodified via embedding; only the
// scoping strategy differs, composition rather than inheritance per the
// ModelSpec design note.
type MultiTenantService[T any] struct {
	*GenericService[T]
}

// NewMultiTenantService wraps inner with tenant enforcement. metaOrgId is
// the organization whose system-scoped context bypasses scoping (used by
// migrations and cross-tenant admin bootstrap).
func NewMultiTenantService[T any](inner *GenericService[T], metaOrgId Id) *MultiTenantService[T] {
	inner.scoper = tenantScoper{metaOrgId: metaOrgId}
	return &MultiTenantService[T]{GenericService: inner}
}
