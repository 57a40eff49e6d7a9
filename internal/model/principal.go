// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "github.com/olegiv/oblog-go/internal/store"

// CurrentUser is the authenticated principal for a request: the user row
// together with its loaded role. A nil *CurrentUser is the anonymous
// principal — every permission check on it fails, so handlers never need
// a separate anonymous type.
type CurrentUser struct {
	User store.User
	Role store.Role
}

// Can reports whether the principal's role grants every bit of p.
// Anonymous (nil) principals can do nothing.
func (u *CurrentUser) Can(p Permission) bool {
	if u == nil {
		return false
	}
	return p.HasAll(u.Role.Permissions)
}

// IsAdministrator reports whether the principal holds the ADMINISTER bit.
func (u *CurrentUser) IsAdministrator() bool {
	return u.Can(PermissionAdminister)
}

// IsModerator reports whether the principal may moderate comments.
// Administrators qualify since their mask is a superset.
func (u *CurrentUser) IsModerator() bool {
	return u.Can(PermissionModerateComments)
}

// CanWrite reports whether the principal may publish posts.
func (u *CurrentUser) CanWrite() bool {
	return u.Can(PermissionWriteArticles)
}

// ID returns the user's ID, or 0 for the anonymous principal.
func (u *CurrentUser) ID() int64 {
	if u == nil {
		return 0
	}
	return u.User.ID
}
