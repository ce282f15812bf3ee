package corebase

// cloneMap returns a shallow copy of m, never nil.
func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// AuditFieldSpecs returns the FieldSpec entries for the standard identity
// and audit quintuple (_id, _orgId, _created, _createdBy, _updated,
// _updatedBy) that every auditable ModelSpec embeds. Callers append these
// to their own field list rather than declaring them by hand each time;
// they assume the entity struct declares Go fields named Id, OrgId,
// Created, CreatedBy, Updated, UpdatedBy of the matching types.
func AuditFieldSpecs() []FieldSpec {
	return []FieldSpec{
		{WireName: "_id", GoName: "Id", Kind: KindId, Projected: true},
		{WireName: "_orgId", GoName: "OrgId", Kind: KindId, Projected: false},
		{WireName: "_created", GoName: "Created", Kind: KindTime, Projected: true},
		{WireName: "_createdBy", GoName: "CreatedBy", Kind: KindId, Projected: true},
		{WireName: "_updated", GoName: "Updated", Kind: KindTime, Projected: true},
		{WireName: "_updatedBy", GoName: "UpdatedBy", Kind: KindId, Projected: true},
	}
}
