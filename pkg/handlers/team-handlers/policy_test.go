/*
 * Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package teamhandlers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	dbclient "github.com/AMD-AIG-AIMA/clearvoice/pkg/database/client"
	cverrors "github.com/AMD-AIG-AIMA/clearvoice/pkg/errors"
)

func reasonOf(t *testing.T, err error) string {
	t.Helper()
	if err == nil {
		return ""
	}
	reason := cverrors.ReasonForError(err)
	if reason == "" {
		t.Fatalf("unexpected error type %T", err)
	}
	return reason
}

func TestCanInvite(t *testing.T) {
	tests := []struct {
		name       string
		actor      string
		invitee    string
		wantReason string
	}{
		{"owner invites admin", dbclient.RoleOwner, dbclient.RoleAdmin, ""},
		{"owner invites viewer", dbclient.RoleOwner, dbclient.RoleViewer, ""},
		{"owner invites owner", dbclient.RoleOwner, dbclient.RoleOwner, cverrors.CannotModifyOwner},
		{"admin invites member", dbclient.RoleAdmin, dbclient.RoleMember, ""},
		{"admin invites viewer", dbclient.RoleAdmin, dbclient.RoleViewer, ""},
		{"admin invites admin", dbclient.RoleAdmin, dbclient.RoleAdmin, cverrors.InsufficientPermissions},
		{"member invites viewer", dbclient.RoleMember, dbclient.RoleViewer, cverrors.InsufficientPermissions},
		{"viewer invites viewer", dbclient.RoleViewer, dbclient.RoleViewer, cverrors.InsufficientPermissions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanInvite(tt.actor, tt.invitee)
			if tt.wantReason == "" {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, tt.wantReason, reasonOf(t, err))
			}
		})
	}
}

func TestCanChangeRole(t *testing.T) {
	tests := []struct {
		name       string
		actor      string
		target     string
		newRole    string
		wantReason string
	}{
		{"owner promotes member to admin", dbclient.RoleOwner, dbclient.RoleMember, dbclient.RoleAdmin, ""},
		{"owner demotes admin to viewer", dbclient.RoleOwner, dbclient.RoleAdmin, dbclient.RoleViewer, ""},
		{"owner grants owner", dbclient.RoleOwner, dbclient.RoleAdmin, dbclient.RoleOwner, cverrors.CannotModifyOwner},
		{"owner changes owner", dbclient.RoleOwner, dbclient.RoleOwner, dbclient.RoleAdmin, cverrors.CannotModifyOwner},
		{"admin demotes member", dbclient.RoleAdmin, dbclient.RoleMember, dbclient.RoleViewer, ""},
		{"admin touches admin", dbclient.RoleAdmin, dbclient.RoleAdmin, dbclient.RoleMember, cverrors.InsufficientPermissions},
		{"admin promotes to admin", dbclient.RoleAdmin, dbclient.RoleMember, dbclient.RoleAdmin, cverrors.InsufficientPermissions},
		{"member changes viewer", dbclient.RoleMember, dbclient.RoleViewer, dbclient.RoleMember, cverrors.InsufficientPermissions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanChangeRole(tt.actor, "usr_actor", tt.target, "usr_target", tt.newRole)
			if tt.wantReason == "" {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, tt.wantReason, reasonOf(t, err))
			}
		})
	}
}

func TestCanChangeRoleRejectsSelf(t *testing.T) {
	err := CanChangeRole(dbclient.RoleOwner, "usr_1", dbclient.RoleAdmin, "usr_1", dbclient.RoleMember)
	assert.Equal(t, cverrors.CannotModifySelf, reasonOf(t, err))
}

func TestCanRemove(t *testing.T) {
	tests := []struct {
		name       string
		actor      string
		actorId    string
		target     string
		targetId   string
		wantReason string
	}{
		{"owner removes admin", dbclient.RoleOwner, "usr_1", dbclient.RoleAdmin, "usr_2", ""},
		{"owner removes self", dbclient.RoleOwner, "usr_1", dbclient.RoleOwner, "usr_1", cverrors.CannotRemoveOwner},
		{"admin removes owner", dbclient.RoleAdmin, "usr_1", dbclient.RoleOwner, "usr_2", cverrors.CannotRemoveOwner},
		{"admin removes member", dbclient.RoleAdmin, "usr_1", dbclient.RoleMember, "usr_2", ""},
		{"admin removes admin", dbclient.RoleAdmin, "usr_1", dbclient.RoleAdmin, "usr_2", cverrors.InsufficientPermissions},
		{"admin leaves", dbclient.RoleAdmin, "usr_1", dbclient.RoleAdmin, "usr_1", ""},
		{"member leaves", dbclient.RoleMember, "usr_1", dbclient.RoleMember, "usr_1", ""},
		{"viewer leaves", dbclient.RoleViewer, "usr_1", dbclient.RoleViewer, "usr_1", ""},
		{"member removes viewer", dbclient.RoleMember, "usr_1", dbclient.RoleViewer, "usr_2", cverrors.InsufficientPermissions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanRemove(tt.actor, tt.actorId, tt.target, tt.targetId)
			if tt.wantReason == "" {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, tt.wantReason, reasonOf(t, err))
			}
		})
	}
}

func TestIsAssignableRole(t *testing.T) {
	assert.True(t, IsAssignableRole(dbclient.RoleAdmin))
	assert.True(t, IsAssignableRole(dbclient.RoleViewer))
	assert.False(t, IsAssignableRole(dbclient.RoleOwner))
	assert.False(t, IsAssignableRole("superuser"))
}
