// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/olegiv/oblog-go/internal/auth"
	"github.com/olegiv/oblog-go/internal/model"
	"github.com/olegiv/oblog-go/internal/store"
)

const testTokenSecret = "middleware-test-secret-32-bytes!!"

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "oblog-middleware-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}
	if err := store.Migrate(db); err != nil {
		db.Close()
		os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}
	if err := store.SeedRoles(context.Background(), store.New(db)); err != nil {
		db.Close()
		os.Remove(dbPath)
		t.Fatalf("SeedRoles: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})
	return db
}

// createAPITestUser inserts a user with the default role and password
// "password1".
func createAPITestUser(t *testing.T, db *sql.DB, email, username string, confirmed int64) store.User {
	t.Helper()
	ctx := context.Background()
	queries := store.New(db)

	role, err := queries.GetDefaultRole(ctx)
	if err != nil {
		t.Fatalf("GetDefaultRole: %v", err)
	}
	hash, err := auth.HashPassword("password1")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
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
		t.Fatalf("CreateUser: %v", err)
	}
	return user
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func decodeAPIError(t *testing.T, rr *httptest.ResponseRecorder) APIError {
	t.Helper()
	var apiErr APIError
	if err := json.NewDecoder(rr.Body).Decode(&apiErr); err != nil {
		t.Fatalf("decoding error envelope: %v", err)
	}
	return apiErr
}

func TestAPIAuth_BearerToken(t *testing.T) {
	db := testDB(t)
	tokens := auth.NewTokenIssuer(testTokenSecret, time.Hour)
	user := createAPITestUser(t, db, "api@example.com", "apiuser", 1)

	token, err := tokens.GenerateAPI(user.ID, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAPI: %v", err)
	}

	var gotUser *model.CurrentUser
	var gotTokenAuth bool
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = GetUser(r)
		gotTokenAuth = IsTokenAuth(r)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/api/v1/posts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	APIAuth(db, tokens)(handler).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rr.Code, rr.Body.String())
	}
	if gotUser == nil || gotUser.ID() != user.ID {
		t.Errorf("principal not loaded into context")
	}
	if !gotTokenAuth {
		t.Error("IsTokenAuth() = false, want true for Bearer auth")
	}
}

func TestAPIAuth_BasicCredentials(t *testing.T) {
	db := testDB(t)
	tokens := auth.NewTokenIssuer(testTokenSecret, time.Hour)
	user := createAPITestUser(t, db, "api@example.com", "apiuser", 1)

	var gotUser *model.CurrentUser
	var gotTokenAuth bool
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = GetUser(r)
		gotTokenAuth = IsTokenAuth(r)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/api/v1/posts", nil)
	req.SetBasicAuth("api@example.com", "password1")
	rr := httptest.NewRecorder()
	APIAuth(db, tokens)(handler).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rr.Code, rr.Body.String())
	}
	if gotUser == nil || gotUser.ID() != user.ID {
		t.Errorf("principal not loaded into context")
	}
	if gotTokenAuth {
		t.Error("IsTokenAuth() = true, want false for Basic auth")
	}
}

func TestAPIAuth_Rejections(t *testing.T) {
	db := testDB(t)
	tokens := auth.NewTokenIssuer(testTokenSecret, time.Hour)
	user := createAPITestUser(t, db, "api@example.com", "apiuser", 1)

	expiredToken, err := tokens.GenerateAPI(user.ID, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateAPI: %v", err)
	}
	wrongSecretToken, err := auth.NewTokenIssuer("another-secret-32-bytes-long!!!!", time.Hour).GenerateAPI(user.ID, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAPI: %v", err)
	}

	tests := []struct {
		name       string
		setup      func(*http.Request)
		expectCode string
	}{
		{"missing header", func(r *http.Request) {}, "unauthorized"},
		{"malformed header", func(r *http.Request) { r.Header.Set("Authorization", "Token abc") }, "unauthorized"},
		{"expired token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+expiredToken) }, "invalid_token"},
		{"wrong secret", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+wrongSecretToken) }, "invalid_token"},
		{"garbage token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer garbage") }, "invalid_token"},
		{"unknown email", func(r *http.Request) { r.SetBasicAuth("nobody@example.com", "password1") }, "invalid_credentials"},
		{"wrong password", func(r *http.Request) { r.SetBasicAuth("api@example.com", "wrong") }, "invalid_credentials"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/posts", nil)
			tt.setup(req)
			rr := httptest.NewRecorder()
			APIAuth(db, tokens)(okHandler()).ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rr.Code)
			}
			if apiErr := decodeAPIError(t, rr); apiErr.Error.Code != tt.expectCode {
				t.Errorf("error code = %q, want %q", apiErr.Error.Code, tt.expectCode)
			}
		})
	}
}

func TestAPIAuth_UnconfirmedForbidden(t *testing.T) {
	db := testDB(t)
	tokens := auth.NewTokenIssuer(testTokenSecret, time.Hour)
	createAPITestUser(t, db, "new@example.com", "newuser", 0)

	req := httptest.NewRequest("GET", "/api/v1/posts", nil)
	req.SetBasicAuth("new@example.com", "password1")
	rr := httptest.NewRecorder()
	APIAuth(db, tokens)(okHandler()).ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rr.Code)
	}
	if apiErr := decodeAPIError(t, rr); apiErr.Error.Code != "unconfirmed" {
		t.Errorf("error code = %q, want %q", apiErr.Error.Code, "unconfirmed")
	}
}

func TestAPIRequirePermission(t *testing.T) {
	mw := APIRequirePermission(model.PermissionModerateComments)

	t.Run("no principal", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/comments", nil)
		rr := httptest.NewRecorder()
		mw(okHandler()).ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rr.Code)
		}
	})

	t.Run("insufficient mask", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/comments", nil)
		req = withUser(req, 1, "User", model.RoleUserPermissions, 1)
		rr := httptest.NewRecorder()
		mw(okHandler()).ServeHTTP(rr, req)
		if rr.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rr.Code)
		}
	})

	t.Run("sufficient mask", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/comments", nil)
		req = withUser(req, 1, "Moderator", model.RoleModeratorPermissions, 1)
		rr := httptest.NewRecorder()
		mw(okHandler()).ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rr.Code)
		}
	})
}

func TestAPIRateLimit(t *testing.T) {
	mw := APIRateLimit(1, 2)

	var okCount, limitedCount int
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest("GET", "/api/v1/posts", nil)
		req = withUser(req, 42, "User", model.RoleUserPermissions, 1)
		rr := httptest.NewRecorder()
		mw(okHandler()).ServeHTTP(rr, req)
		switch rr.Code {
		case http.StatusOK:
			okCount++
		case http.StatusTooManyRequests:
			limitedCount++
		default:
			t.Fatalf("unexpected status %d", rr.Code)
		}
	}

	if okCount != 2 {
		t.Errorf("allowed = %d, want 2 (burst)", okCount)
	}
	if limitedCount != 3 {
		t.Errorf("limited = %d, want 3", limitedCount)
	}
}

func TestAPIRateLimit_PerUser(t *testing.T) {
	mw := APIRateLimit(1, 1)

	for _, id := range []int64{1, 2, 3} {
		req := httptest.NewRequest("GET", "/api/v1/posts", nil)
		req = withUser(req, id, "User", model.RoleUserPermissions, 1)
		rr := httptest.NewRecorder()
		mw(okHandler()).ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Errorf("user %d first request: status = %d, want 200", id, rr.Code)
		}
	}
}

func TestGlobalRateLimiter(t *testing.T) {
	rl := NewGlobalRateLimiter(1, 1)
	mw := rl.Middleware()

	req := httptest.NewRequest("GET", "/api/v1/posts", nil)
	req.RemoteAddr = "198.51.100.7:1234"
	rr := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("first request: status = %d, want 200", rr.Code)
	}

	rr = httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: status = %d, want 429", rr.Code)
	}
	if apiErr := decodeAPIError(t, rr); apiErr.Error.Code != "rate_limit_exceeded" {
		t.Errorf("error code = %q, want %q", apiErr.Error.Code, "rate_limit_exceeded")
	}
}

func TestWriteAPIError(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteAPIError(rr, http.StatusBadRequest, "validation_error", "Body is required", map[string]string{"body": "required"})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	apiErr := decodeAPIError(t, rr)
	if apiErr.Error.Code != "validation_error" {
		t.Errorf("code = %q", apiErr.Error.Code)
	}
	if apiErr.Error.Details["body"] != "required" {
		t.Errorf("details = %v", apiErr.Error.Details)
	}
}
