// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # System Roles
//
// corebase's actual authorization model is dynamic: roles, features and
// authorizations are ModelSpec-backed entities (internal/demo/role,
// internal/demo/feature, internal/demo/authorization) whose tables the
// synthetic migration creates, resolved per-request against the
// authenticated UserContext. UserRole here is only the coarse, fixed
// distinction the bootstrap process and the Authenticator collaborator
// need before any dynamic role has been loaded — system vs. ordinary.

// UserRole represents a coarse authorization level, independent of the
// dynamic role/feature grant system.
type UserRole string

const (
	// RoleSystem is the bootstrap/meta-org operator level — see
	// corebase.SystemUserContext.
	RoleSystem UserRole = "system"

	// RoleMember is the default level for an authenticated tenant user.
	RoleMember UserRole = "member"
)

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r UserRole) level() int {
	switch r {
	case RoleSystem:
		return 40
	case RoleMember:
		return 10
	default:
		return 0
	}
}
