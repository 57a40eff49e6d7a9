// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/oblog-go/internal/model"
	"github.com/olegiv/oblog-go/internal/store"
)

// withUser returns req with a principal of the given role mask in context.
func withUser(req *http.Request, id int64, roleName string, permissions model.Permission, confirmed int64) *http.Request {
	principal := &model.CurrentUser{
		User: store.User{ID: id, Email: "test@example.com", Username: "test", Confirmed: confirmed},
		Role: store.Role{Name: roleName, Permissions: int64(permissions)},
	}
	ctx := context.WithValue(req.Context(), ContextKeyUser, principal)
	return req.WithContext(ctx)
}

func TestGetUser(t *testing.T) {
	t.Run("no user in context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		user := GetUser(req)
		if user != nil {
			t.Errorf("GetUser() = %v, want nil", user)
		}
	})

	t.Run("user in context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = withUser(req, 123, "User", model.RoleUserPermissions, 1)

		user := GetUser(req)
		if user == nil {
			t.Fatal("GetUser() = nil, want user")
		}
		if user.ID() != 123 {
			t.Errorf("GetUser().ID() = %d, want 123", user.ID())
		}
		if user.User.Email != "test@example.com" {
			t.Errorf("GetUser().User.Email = %q, want %q", user.User.Email, "test@example.com")
		}
	})
}

func TestGetUserID(t *testing.T) {
	t.Run("no user in context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		id := GetUserID(req)
		if id != 0 {
			t.Errorf("GetUserID() = %d, want 0", id)
		}
	})

	t.Run("user in context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = withUser(req, 456, "User", model.RoleUserPermissions, 1)

		id := GetUserID(req)
		if id != 456 {
			t.Errorf("GetUserID() = %d, want 456", id)
		}
	})
}

func TestGetUserIDPtr(t *testing.T) {
	t.Run("no user in context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		idPtr := GetUserIDPtr(req)
		if idPtr != nil {
			t.Errorf("GetUserIDPtr() = %v, want nil", idPtr)
		}
	})

	t.Run("user in context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = withUser(req, 789, "User", model.RoleUserPermissions, 1)

		idPtr := GetUserIDPtr(req)
		if idPtr == nil {
			t.Fatal("GetUserIDPtr() = nil, want pointer")
		}
		if *idPtr != 789 {
			t.Errorf("*GetUserIDPtr() = %d, want 789", *idPtr)
		}
	})
}

func TestRequestPath(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := GetRequestPath(r.Context())
		_, _ = w.Write([]byte(path))
	})

	wrapped := RequestPath(handler)

	req := httptest.NewRequest(http.MethodGet, "/moderate/comments", nil)
	rr := httptest.NewRecorder()

	wrapped.ServeHTTP(rr, req)

	if body := rr.Body.String(); body != "/moderate/comments" {
		t.Errorf("GetRequestPath() = %q, want %q", body, "/moderate/comments")
	}
}

func TestGetRequestPath(t *testing.T) {
	t.Run("no path in context", func(t *testing.T) {
		ctx := context.Background()
		path := GetRequestPath(ctx)
		if path != "" {
			t.Errorf("GetRequestPath() = %q, want empty", path)
		}
	})

	t.Run("path in context", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), ContextKeyRequestPath, "/test/path")
		path := GetRequestPath(ctx)
		if path != "/test/path" {
			t.Errorf("GetRequestPath() = %q, want %q", path, "/test/path")
		}
	})
}

func TestRequirePermission(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name           string
		required       model.Permission
		rolePerms      model.Permission
		anonymous      bool
		expectRedirect bool
		expectForbid   bool
	}{
		{"user can write articles", model.PermissionWriteArticles, model.RoleUserPermissions, false, false, false},
		{"user cannot moderate", model.PermissionModerateComments, model.RoleUserPermissions, false, false, true},
		{"moderator can moderate", model.PermissionModerateComments, model.RoleModeratorPermissions, false, false, false},
		{"moderator is not admin", model.PermissionAdminister, model.RoleModeratorPermissions, false, false, true},
		{"administrator passes everything", model.PermissionAdminister, model.RoleAdministratorPermissions, false, false, false},
		{"combined mask requires every bit", model.PermissionWriteArticles | model.PermissionModerateComments, model.RoleUserPermissions, false, false, true},
		{"anonymous redirects to login", model.PermissionFollow, 0, true, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw := RequirePermission(tt.required)

			req := httptest.NewRequest("GET", "/some/path", nil)
			if !tt.anonymous {
				req = withUser(req, 1, "test-role", tt.rolePerms, 1)
			}

			rr := httptest.NewRecorder()
			mw(handler).ServeHTTP(rr, req)

			switch {
			case tt.expectRedirect:
				if rr.Code != http.StatusSeeOther {
					t.Errorf("expected redirect (303), got %d", rr.Code)
				}
				if location := rr.Header().Get("Location"); location != "/auth/login" {
					t.Errorf("expected redirect to /auth/login, got %s", location)
				}
			case tt.expectForbid:
				if rr.Code != http.StatusForbidden {
					t.Errorf("expected forbidden (403), got %d", rr.Code)
				}
			default:
				if rr.Code != http.StatusOK {
					t.Errorf("expected OK (200), got %d", rr.Code)
				}
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mw := RequireAdmin()

	tests := []struct {
		name       string
		perms      model.Permission
		expectCode int
	}{
		{"administrator allowed", model.RoleAdministratorPermissions, http.StatusOK},
		{"moderator forbidden", model.RoleModeratorPermissions, http.StatusForbidden},
		{"user forbidden", model.RoleUserPermissions, http.StatusForbidden},
		{"empty mask forbidden", 0, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/admin/users", nil)
			req = withUser(req, 1, "test-role", tt.perms, 1)
			rr := httptest.NewRecorder()
			mw(handler).ServeHTTP(rr, req)
			if rr.Code != tt.expectCode {
				t.Errorf("got %d, want %d", rr.Code, tt.expectCode)
			}
		})
	}
}

func TestRequireModerator(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mw := RequireModerator()

	tests := []struct {
		name       string
		perms      model.Permission
		expectCode int
	}{
		{"administrator allowed", model.RoleAdministratorPermissions, http.StatusOK},
		{"moderator allowed", model.RoleModeratorPermissions, http.StatusOK},
		{"user forbidden", model.RoleUserPermissions, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/moderate", nil)
			req = withUser(req, 1, "test-role", tt.perms, 1)
			rr := httptest.NewRecorder()
			mw(handler).ServeHTTP(rr, req)
			if rr.Code != tt.expectCode {
				t.Errorf("got %d, want %d", rr.Code, tt.expectCode)
			}
		})
	}
}

func TestRequirePermission_ForbiddenMessage(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mw := RequireAdmin()
	req := httptest.NewRequest("GET", "/admin/users", nil)
	req = withUser(req, 1, "Moderator", model.RoleModeratorPermissions, 1)
	rr := httptest.NewRecorder()
	mw(handler).ServeHTTP(rr, req)

	if rr.Body.String() == "" {
		t.Error("expected non-empty error message in response body")
	}
	if rr.Code != http.StatusForbidden {
		t.Errorf("expected 403 Forbidden, got %d", rr.Code)
	}
}

func TestRequireConfirmed(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mw := RequireConfirmed()

	t.Run("confirmed user passes", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/write", nil)
		req = withUser(req, 1, "User", model.RoleUserPermissions, 1)
		rr := httptest.NewRecorder()
		mw(handler).ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Errorf("got %d, want 200", rr.Code)
		}
	})

	t.Run("unconfirmed user diverted", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/write", nil)
		req = withUser(req, 1, "User", model.RoleUserPermissions, 0)
		rr := httptest.NewRecorder()
		mw(handler).ServeHTTP(rr, req)
		if rr.Code != http.StatusSeeOther {
			t.Errorf("got %d, want 303", rr.Code)
		}
		if location := rr.Header().Get("Location"); location != "/auth/unconfirmed" {
			t.Errorf("expected redirect to /auth/unconfirmed, got %s", location)
		}
	})

	t.Run("anonymous passes through", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		rr := httptest.NewRecorder()
		mw(handler).ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Errorf("got %d, want 200", rr.Code)
		}
	})
}

// sessionRequest returns req with a loaded session context holding the
// given user ID (zero means no user key is set).
func sessionRequest(t *testing.T, sm *scs.SessionManager, userID int64) *http.Request {
	t.Helper()
	req := httptest.NewRequest("GET", "/", nil)
	ctx, err := sm.Load(req.Context(), "")
	if err != nil {
		t.Fatalf("loading session: %v", err)
	}
	if userID != 0 {
		sm.Put(ctx, SessionKeyUserID, userID)
	}
	return req.WithContext(ctx)
}

func TestLoadUser(t *testing.T) {
	db := testDB(t)
	queries := store.New(db)
	sm := scs.New()
	mw := LoadUser(sm, db)

	var seen *model.CurrentUser
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUser(r)
		w.WriteHeader(http.StatusOK)
	})

	t.Run("anonymous request has no principal", func(t *testing.T) {
		seen = nil
		req := sessionRequest(t, sm, 0)
		rr := httptest.NewRecorder()
		mw(handler).ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Errorf("got %d, want 200", rr.Code)
		}
		if seen != nil {
			t.Errorf("principal = %v, want nil", seen)
		}
	})

	t.Run("loads principal and refreshes last seen", func(t *testing.T) {
		seen = nil
		user := createAPITestUser(t, db, "load@example.com", "loaduser", 1)

		stale := time.Now().Add(-24 * time.Hour)
		if err := queries.TouchUserLastSeen(context.Background(), store.TouchUserLastSeenParams{
			LastSeen: stale,
			ID:       user.ID,
		}); err != nil {
			t.Fatalf("backdating last seen: %v", err)
		}

		req := sessionRequest(t, sm, user.ID)
		rr := httptest.NewRecorder()
		mw(handler).ServeHTTP(rr, req)

		if seen == nil {
			t.Fatal("principal = nil, want user")
		}
		if seen.ID() != user.ID {
			t.Errorf("principal ID = %d, want %d", seen.ID(), user.ID)
		}
		if seen.Role.Name != "User" {
			t.Errorf("principal role = %q, want %q", seen.Role.Name, "User")
		}

		refreshed, err := queries.GetUserByID(context.Background(), user.ID)
		if err != nil {
			t.Fatalf("GetUserByID: %v", err)
		}
		if !refreshed.LastSeen.After(stale.Add(time.Hour)) {
			t.Errorf("last seen not refreshed: %v", refreshed.LastSeen)
		}
	})

	t.Run("stale session destroyed, request continues anonymous", func(t *testing.T) {
		seen = &model.CurrentUser{}
		req := sessionRequest(t, sm, 424242)
		rr := httptest.NewRecorder()
		mw(handler).ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("got %d, want 200", rr.Code)
		}
		if seen != nil {
			t.Errorf("principal = %v, want nil", seen)
		}
		if got := sm.GetInt64(req.Context(), SessionKeyUserID); got != 0 {
			t.Errorf("session user id = %d, want 0 after destroy", got)
		}
	})
}
