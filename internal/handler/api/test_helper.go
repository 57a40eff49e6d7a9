package api

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/oblog-go/internal/auth"
	"github.com/olegiv/oblog-go/internal/middleware"
	"github.com/olegiv/oblog-go/internal/model"
	"github.com/olegiv/oblog-go/internal/store"
)

const testTokenSecret = "api-test-secret-32-bytes!!!!!!!!"

// newTestHandler creates a migrated test database and an API handler
// over it with small page sizes.
func newTestHandler(t *testing.T) (*Handler, *sql.DB) {
	t.Helper()

	f, err := os.CreateTemp("", "oblog-api-test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp database: %v", err)
	}
	path := f.Name()
	_ = f.Close()

	db, err := store.NewDB(path)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := store.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	if err := store.SeedRoles(context.Background(), store.New(db)); err != nil {
		t.Fatalf("failed to seed roles: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
		_ = os.Remove(path)
	})

	tokens := auth.NewTokenIssuer(testTokenSecret, time.Hour)
	return NewHandler(db, tokens, time.Hour, 20), db
}

// createTestUser creates a confirmed user holding the named role, with a
// self-follow edge.
func createTestUser(t *testing.T, db *sql.DB, email, username, roleName string) store.User {
	t.Helper()

	ctx := context.Background()
	queries := store.New(db)

	role, err := queries.GetRoleByName(ctx, roleName)
	if err != nil {
		t.Fatalf("failed to look up role %s: %v", roleName, err)
	}

	hash, err := auth.HashPassword("password1")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	now := time.Now()
	user, err := queries.CreateUser(ctx, store.CreateUserParams{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		RoleID:       role.ID,
		Confirmed:    1,
		AvatarHash:   auth.GravatarHash(email),
		MemberSince:  now,
		LastSeen:     now,
	})
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	if err := queries.CreateFollow(ctx, store.CreateFollowParams{
		FollowerID: user.ID,
		FollowedID: user.ID,
		CreatedAt:  now,
	}); err != nil {
		t.Fatalf("failed to create self follow: %v", err)
	}

	return user
}

// requestWithUser stores a principal in the request context, as the API
// authentication middleware would.
func requestWithUser(t *testing.T, db *sql.DB, r *http.Request, user store.User) *http.Request {
	t.Helper()
	role, err := store.New(db).GetRoleByID(r.Context(), user.RoleID)
	if err != nil {
		t.Fatalf("failed to look up role: %v", err)
	}
	ctx := context.WithValue(r.Context(), middleware.ContextKeyUser,
		&model.CurrentUser{User: user, Role: role})
	return r.WithContext(ctx)
}

// requestWithTokenAuth marks the request as token-authenticated.
func requestWithTokenAuth(r *http.Request) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.ContextKeyTokenAuth, true))
}

// requestWithURLParams adds chi URL parameters to a request.
func requestWithURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
