// Package authz holds the pure authorization predicates for workspace
// membership operations. None of these touch the store; store-aware
// checks live in the API guards.
package authz

import "teamspace/internal/entity"

// CanAccessOwnResource reports whether the actor may touch the target
// user's resources: self-access or a superuser override.
func CanAccessOwnResource(actorID, targetUserID string, isSuperuser bool) bool {
	return isSuperuser || (actorID != "" && actorID == targetUserID)
}

// IsWorkspaceAdmin reports whether the role carries administrative power
// inside a workspace.
func IsWorkspaceAdmin(role entity.Role) bool {
	return role == entity.RoleAdmin || role == entity.RoleOwner
}

// CanPromoteToAdmin reports whether the actor's role permits elevating a
// member to admin. Only the owner can.
func CanPromoteToAdmin(actorRole entity.Role) bool {
	return actorRole == entity.RoleOwner
}

// CanChangeRole reports whether a member currently holding currentRole
// may be moved to requestedRole. The owner role is immutable via the
// role-update path.
func CanChangeRole(currentRole, requestedRole entity.Role) bool {
	if currentRole == entity.RoleOwner && requestedRole != entity.RoleOwner {
		return false
	}
	return true
}

// CanRemoveMember reports whether a member holding memberRole may be
// removed. The owner can never be removed through this path.
func CanRemoveMember(memberRole entity.Role) bool {
	return memberRole != entity.RoleOwner
}
