// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain types shared across the application:
// the permission bit mask, the current-user principal, and event log
// constants.
package model

// Permission is a single bit (or a union of bits) in a role's
// permission mask. The mask is 8 bits wide; three bits are reserved
// for future use.
type Permission int64

// Permission bits.
const (
	PermissionFollow           Permission = 0x01 // follow other users
	PermissionComment          Permission = 0x02 // comment on posts
	PermissionWriteArticles    Permission = 0x04 // write and edit own posts
	PermissionModerateComments Permission = 0x08 // disable/enable any comment
	PermissionAdminister       Permission = 0x80 // full site administration
)

// PermissionsAll is the mask held by the administrator role.
const PermissionsAll Permission = 0xFF

// HasAll reports whether mask grants every bit of p. The test is a
// bitwise superset check, not equality: a role with more bits than
// requested still passes.
func (p Permission) HasAll(mask int64) bool {
	return Permission(mask)&p == p
}

// Permission masks held by the provisioned roles.
const (
	RoleUserPermissions          = PermissionFollow | PermissionComment | PermissionWriteArticles
	RoleModeratorPermissions     = RoleUserPermissions | PermissionModerateComments
	RoleAdministratorPermissions = PermissionsAll
)

// Role names provisioned by store.Seed. The anonymous "role" is not a
// database row; unauthenticated principals simply hold no permissions.
const (
	RoleNameUser          = "User"
	RoleNameModerator     = "Moderator"
	RoleNameAdministrator = "Administrator"
)
