package handler

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"testing"
	"testing/fstest"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/olegiv/oblog-go/internal/auth"
	"github.com/olegiv/oblog-go/internal/middleware"
	"github.com/olegiv/oblog-go/internal/model"
	"github.com/olegiv/oblog-go/internal/render"
	"github.com/olegiv/oblog-go/internal/store"
)

// testDB creates a migrated and seeded SQLite database for testing.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "oblog-handler-test-*.db")
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

	return db
}

// testTemplates returns a minimal in-memory template tree covering every
// page the handlers render.
func testTemplates() fstest.MapFS {
	fsys := fstest.MapFS{
		"layouts/base.html": &fstest.MapFile{Data: []byte(
			`{{define "base"}}<html><title>{{.Title}}</title><body>{{template "content" .}}</body></html>{{end}}`,
		)},
	}
	pages := []string{
		"pages/index.html", "pages/post.html", "pages/write.html", "pages/edit.html",
		"pages/user.html", "pages/edit_profile.html", "pages/follows.html",
		"pages/moderate.html", "pages/admin_users.html", "pages/admin_edit_user.html",
		"pages/admin_events.html", "pages/error.html",
		"auth/login.html", "auth/register.html", "auth/reset_request.html",
		"auth/reset.html", "auth/change_email.html", "auth/change_password.html",
		"auth/unconfirmed.html",
	}
	for _, p := range pages {
		fsys[p] = &fstest.MapFile{Data: []byte(`{{define "content"}}<main>{{.Title}}</main>{{end}}`)}
	}
	return fsys
}

// testRenderer creates a renderer over the in-memory templates.
func testRenderer(t *testing.T, sm *scs.SessionManager) *render.Renderer {
	t.Helper()
	r, err := render.New(render.Config{TemplatesFS: testTemplates(), SessionManager: sm, IsDev: true})
	if err != nil {
		t.Fatalf("failed to create renderer: %v", err)
	}
	return r
}

// testSessionManager creates an in-memory session manager for testing.
func testSessionManager(t *testing.T) *scs.SessionManager {
	t.Helper()
	sm := scs.New()
	sm.Lifetime = 24 * time.Hour
	return sm
}

// createTestUser creates a confirmed-or-not user holding the named role,
// with password "password1" and a self-follow edge.
func createTestUser(t *testing.T, db *sql.DB, email, username, roleName string, confirmed int64) store.User {
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
		Confirmed:    confirmed,
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

// principalFor loads a user's role and builds the request principal.
func principalFor(t *testing.T, db *sql.DB, user store.User) *model.CurrentUser {
	t.Helper()
	role, err := store.New(db).GetRoleByID(context.Background(), user.RoleID)
	if err != nil {
		t.Fatalf("failed to look up role: %v", err)
	}
	return &model.CurrentUser{User: user, Role: role}
}

// requestWithUser stores a principal in the request context, as the
// session middleware would.
func requestWithUser(r *http.Request, cu *model.CurrentUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.ContextKeyUser, cu))
}

// requestWithURLParams adds chi URL parameters to a request.
func requestWithURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// requestWithSession wraps a request with loaded session context.
func requestWithSession(t *testing.T, sm *scs.SessionManager, r *http.Request) *http.Request {
	t.Helper()
	ctx, err := sm.Load(r.Context(), "")
	if err != nil {
		t.Fatalf("failed to load session: %v", err)
	}
	return r.WithContext(ctx)
}

// assertStatus checks if the response status code matches the expected value.
func assertStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status = %d; want %d", got, want)
	}
}

// assertRedirect checks the response is a 303 redirect to the expected location.
func assertRedirect(t *testing.T, rr interface {
	Result() *http.Response
}, want string) {
	t.Helper()
	res := rr.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d; want %d", res.StatusCode, http.StatusSeeOther)
	}
	if got := res.Header.Get("Location"); got != want {
		t.Errorf("Location = %q; want %q", got, want)
	}
}
