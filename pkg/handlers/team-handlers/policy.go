/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package teamhandlers

import (
	dbclient "github.com/AMD-AIG-AIMA/clearvoice/pkg/database/client"
	cverrors "github.com/AMD-AIG-AIMA/clearvoice/pkg/errors"
	"github.com/AMD-AIG-AIMA/clearvoice/pkg/handlers/authority"
)

/*
   The team policy is a pure function of the actor's and target's roles.
   Owner outranks everyone and is immutable through this surface: every
   workspace keeps exactly one owner at all times.
*/

// CanInvite checks that the actor may issue an invitation with the given
// role.
func CanInvite(actorRole, inviteeRole string) error {
	if inviteeRole == dbclient.RoleOwner {
		return cverrors.NewForbiddenWithReason(cverrors.CannotModifyOwner, "cannot invite an owner")
	}
	if authority.RoleRank(actorRole) < authority.RoleRank(dbclient.RoleAdmin) {
		return cverrors.NewForbiddenWithReason(cverrors.InsufficientPermissions, "inviting requires the admin role")
	}
	if authority.RoleRank(inviteeRole) >= authority.RoleRank(actorRole) {
		return cverrors.NewForbiddenWithReason(cverrors.InsufficientPermissions, "cannot invite at or above your own role")
	}
	return nil
}

// CanChangeRole checks that the actor may move the target to newRole.
func CanChangeRole(actorRole, actorId, targetRole, targetId, newRole string) error {
	if targetId == actorId {
		return cverrors.NewForbiddenWithReason(cverrors.CannotModifySelf, "cannot change your own role")
	}
	if targetRole == dbclient.RoleOwner || newRole == dbclient.RoleOwner {
		return cverrors.NewForbiddenWithReason(cverrors.CannotModifyOwner, "the owner role cannot be granted or taken here")
	}
	if authority.RoleRank(actorRole) < authority.RoleRank(dbclient.RoleAdmin) {
		return cverrors.NewForbiddenWithReason(cverrors.InsufficientPermissions, "changing roles requires the admin role")
	}
	if authority.RoleRank(targetRole) >= authority.RoleRank(actorRole) {
		return cverrors.NewForbiddenWithReason(cverrors.InsufficientPermissions, "cannot change a role at or above your own")
	}
	if authority.RoleRank(newRole) >= authority.RoleRank(actorRole) {
		return cverrors.NewForbiddenWithReason(cverrors.InsufficientPermissions, "cannot grant a role at or above your own")
	}
	return nil
}

// CanRemove checks that the actor may remove the target membership.
// Everyone but the owner may leave; removal of others needs a strictly
// higher rank.
func CanRemove(actorRole, actorId, targetRole, targetId string) error {
	if targetRole == dbclient.RoleOwner {
		return cverrors.NewForbiddenWithReason(cverrors.CannotRemoveOwner, "the owner cannot be removed")
	}
	if targetId == actorId {
		return nil
	}
	if authority.RoleRank(actorRole) < authority.RoleRank(dbclient.RoleAdmin) {
		return cverrors.NewForbiddenWithReason(cverrors.InsufficientPermissions, "removing members requires the admin role")
	}
	if authority.RoleRank(targetRole) >= authority.RoleRank(actorRole) {
		return cverrors.NewForbiddenWithReason(cverrors.InsufficientPermissions, "cannot remove a member at or above your own role")
	}
	return nil
}

// CanManageInvites checks that the actor may list or revoke invitations.
func CanManageInvites(actorRole string) error {
	if authority.RoleRank(actorRole) < authority.RoleRank(dbclient.RoleAdmin) {
		return cverrors.NewForbiddenWithReason(cverrors.InsufficientPermissions, "managing invitations requires the admin role")
	}
	return nil
}

// IsAssignableRole reports whether a role may appear on an invitation or a
// role change.
func IsAssignableRole(role string) bool {
	switch role {
	case dbclient.RoleAdmin, dbclient.RoleMember, dbclient.RoleViewer:
		return true
	}
	return false
}
