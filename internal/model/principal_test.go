// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"testing"

	"github.com/olegiv/oblog-go/internal/store"
)

func principalWith(mask Permission) *CurrentUser {
	return &CurrentUser{
		User: store.User{ID: 1},
		Role: store.Role{Permissions: int64(mask)},
	}
}

func TestCan(t *testing.T) {
	tests := []struct {
		name string
		mask Permission
		p    Permission
		want bool
	}{
		{"user can follow", RoleUserPermissions, PermissionFollow, true},
		{"user can comment", RoleUserPermissions, PermissionComment, true},
		{"user can write", RoleUserPermissions, PermissionWriteArticles, true},
		{"user cannot moderate", RoleUserPermissions, PermissionModerateComments, false},
		{"user cannot administer", RoleUserPermissions, PermissionAdminister, false},
		{"moderator can moderate", RoleModeratorPermissions, PermissionModerateComments, true},
		{"moderator cannot administer", RoleModeratorPermissions, PermissionAdminister, false},
		{"union mask requires every bit", RoleUserPermissions, PermissionFollow | PermissionModerateComments, false},
		{"union mask satisfied", RoleModeratorPermissions, PermissionFollow | PermissionModerateComments, true},
		{"empty role grants nothing", 0, PermissionFollow, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := principalWith(tt.mask).Can(tt.p); got != tt.want {
				t.Errorf("Can(%#x) with mask %#x = %v, want %v", int64(tt.p), int64(tt.mask), got, tt.want)
			}
		})
	}
}

// An administrator holds a superset of every defined permission bit.
func TestCan_AdministratorSupersetOfAll(t *testing.T) {
	admin := principalWith(RoleAdministratorPermissions)
	if !admin.IsAdministrator() {
		t.Fatal("administrator mask does not satisfy ADMINISTER")
	}

	all := []Permission{
		PermissionFollow,
		PermissionComment,
		PermissionWriteArticles,
		PermissionModerateComments,
		PermissionAdminister,
	}
	for _, p := range all {
		if !admin.Can(p) {
			t.Errorf("administrator lacks permission %#x", int64(p))
		}
	}
	if !admin.Can(PermissionsAll) {
		t.Error("administrator lacks the full mask")
	}
}

func TestCan_AnonymousPrincipal(t *testing.T) {
	var anon *CurrentUser

	if anon.Can(PermissionFollow) {
		t.Error("anonymous principal satisfied FOLLOW")
	}
	if anon.Can(0) {
		t.Error("anonymous principal satisfied the empty mask")
	}
	if anon.IsAdministrator() {
		t.Error("anonymous principal is an administrator")
	}
	if anon.IsModerator() {
		t.Error("anonymous principal is a moderator")
	}
	if anon.CanWrite() {
		t.Error("anonymous principal can write")
	}
	if anon.ID() != 0 {
		t.Errorf("anonymous ID = %d, want 0", anon.ID())
	}
}

func TestRoleShortcuts(t *testing.T) {
	mod := principalWith(RoleModeratorPermissions)
	if !mod.IsModerator() {
		t.Error("moderator mask does not satisfy IsModerator")
	}
	if !mod.CanWrite() {
		t.Error("moderator mask does not satisfy CanWrite")
	}
	if mod.IsAdministrator() {
		t.Error("moderator mask satisfies IsAdministrator")
	}
}
