// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, and request context handling.
package middleware

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/oblog-go/internal/model"
	"github.com/olegiv/oblog-go/internal/service"
	"github.com/olegiv/oblog-go/internal/store"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for user data.
const (
	ContextKeyUser        ContextKey = "user"
	ContextKeyRequestPath ContextKey = "request_path"
)

// SessionKeyUserID stores the authenticated user's ID in the session.
const SessionKeyUserID = "user_id"

// Auth creates middleware that requires authentication.
// It checks for a valid user session and redirects to login if not authenticated.
func Auth(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sm.GetInt64(r.Context(), SessionKeyUserID)
			if userID == 0 {
				http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// LoadUser creates middleware that loads the current principal (user plus
// role) into the request context and refreshes the user's last-seen
// timestamp. A stale session pointing at a deleted user is destroyed.
// Anonymous requests continue with no principal in context.
func LoadUser(sm *scs.SessionManager, db *sql.DB) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sm.GetInt64(r.Context(), SessionKeyUserID)
			if userID == 0 {
				next.ServeHTTP(w, r)
				return
			}

			user, err := queries.GetUserByID(r.Context(), userID)
			if err != nil {
				_ = sm.Destroy(r.Context())
				next.ServeHTTP(w, r)
				return
			}
			role, err := queries.GetRoleByID(r.Context(), user.RoleID)
			if err != nil {
				slog.Error("loading role", "user_id", user.ID, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			if err := queries.TouchUserLastSeen(r.Context(), store.TouchUserLastSeenParams{
				LastSeen: time.Now(),
				ID:       user.ID,
			}); err != nil {
				slog.Error("refreshing last seen", "user_id", user.ID, "error", err)
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, &model.CurrentUser{User: user, Role: role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser retrieves the current principal from the request context.
// Returns nil for anonymous requests; nil is safe to use directly in
// permission checks.
func GetUser(r *http.Request) *model.CurrentUser {
	user, ok := r.Context().Value(ContextKeyUser).(*model.CurrentUser)
	if !ok {
		return nil
	}
	return user
}

// GetUserID returns the current user's ID from context, or 0 if not found.
// Safe to use in logging where a zero-value is acceptable.
func GetUserID(r *http.Request) int64 {
	return GetUser(r).ID()
}

// GetUserIDPtr returns a pointer to the current user's ID from context, or nil if not found.
// Useful for optional user ID parameters in event logging.
func GetUserIDPtr(r *http.Request) *int64 {
	if user := GetUser(r); user != nil {
		id := user.User.ID
		return &id
	}
	return nil
}

// RequestPath creates middleware that stores the request path in the context.
// This is used by the logging handler to include the URL in error logs.
func RequestPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ContextKeyRequestPath, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestPath retrieves the request path from the context.
func GetRequestPath(ctx context.Context) string {
	path, ok := ctx.Value(ContextKeyRequestPath).(string)
	if !ok {
		return ""
	}
	return path
}

// RequirePermission creates middleware that requires every bit of p.
// Anonymous users are redirected to login; authenticated users lacking
// the permission get 403.
func RequirePermission(p model.Permission) func(http.Handler) http.Handler {
	return RequirePermissionWithEventLog(p, nil)
}

// RequirePermissionWithEventLog is RequirePermission with 403s mirrored to
// the event log for the admin panel.
func RequirePermissionWithEventLog(p model.Permission, eventService *service.EventService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r)
			if user == nil {
				http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
				return
			}

			if !user.Can(p) {
				slog.Warn("access denied",
					"status", http.StatusForbidden,
					"method", r.Method,
					"path", r.URL.Path,
					"user_id", user.ID(),
					"user_role", user.Role.Name,
					"required_permission", int64(p),
					"remote_addr", r.RemoteAddr,
				)

				if eventService != nil {
					userID := user.ID()
					metadata := map[string]any{
						"method":              r.Method,
						"status":              http.StatusForbidden,
						"path":                r.URL.Path,
						"user_role":           user.Role.Name,
						"required_permission": int64(p),
					}
					_ = eventService.LogAuthEvent(r.Context(), "warning", "Access denied: insufficient permissions", &userID, r.RemoteAddr, metadata)
				}

				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin creates middleware that requires the ADMINISTER bit.
// Shorthand for RequirePermission(model.PermissionAdminister).
func RequireAdmin() func(http.Handler) http.Handler {
	return RequirePermission(model.PermissionAdminister)
}

// RequireModerator creates middleware that requires comment moderation.
// Administrators pass as well since their mask is a superset.
func RequireModerator() func(http.Handler) http.Handler {
	return RequirePermission(model.PermissionModerateComments)
}

// RequireConfirmed creates middleware that diverts authenticated but
// unconfirmed users to the confirmation interstitial. Anonymous requests
// pass through untouched; Auth handles those.
func RequireConfirmed() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r)
			if user != nil && user.User.Confirmed != 1 {
				http.Redirect(w, r, "/auth/unconfirmed", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
