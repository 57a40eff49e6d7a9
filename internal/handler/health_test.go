package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/olegiv/oblog-go/internal/middleware"
	"github.com/olegiv/oblog-go/internal/model"
)

func TestHealth_Anonymous(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewHealthHandler(db, sm)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()

	h.Health(rr, req)
	assertStatus(t, rr.Code, http.StatusOK)

	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status = %v; want healthy", body["status"])
	}
	// Anonymous callers get the minimal shape only.
	if _, ok := body["checks"]; ok {
		t.Error("anonymous response includes check details")
	}
	if _, ok := body["uptime"]; ok {
		t.Error("anonymous response includes uptime")
	}
}

func TestHealth_Admin(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewHealthHandler(db, sm)
	admin := createTestUser(t, db, "root@example.com", "root", model.RoleNameAdministrator, 1)

	req := httptest.NewRequest(http.MethodGet, "/health?verbose=true", nil)
	req = requestWithSession(t, sm, req)
	sm.Put(req.Context(), middleware.SessionKeyUserID, admin.ID)
	rr := httptest.NewRecorder()

	h.Health(rr, req)
	assertStatus(t, rr.Code, http.StatusOK)

	var status HealthStatus
	if err := json.Unmarshal(rr.Body.Bytes(), &status); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if status.Status != "healthy" {
		t.Errorf("status = %q; want healthy", status.Status)
	}
	if _, ok := status.Checks["database"]; !ok {
		t.Error("admin response missing database check")
	}
	if status.System == nil {
		t.Error("verbose admin response missing system info")
	}
}

func TestHealth_AuthenticatedNonAdmin(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewHealthHandler(db, sm)
	user := createTestUser(t, db, "plain@example.com", "plain", model.RoleNameUser, 1)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req = requestWithSession(t, sm, req)
	sm.Put(req.Context(), middleware.SessionKeyUserID, user.ID)
	rr := httptest.NewRecorder()

	h.Health(rr, req)
	assertStatus(t, rr.Code, http.StatusOK)

	var status HealthStatus
	if err := json.Unmarshal(rr.Body.Bytes(), &status); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if status.Uptime == "" {
		t.Error("authenticated response missing uptime")
	}
	if len(status.Checks) != 0 {
		t.Error("non-admin response includes check details")
	}
}

func TestLiveness(t *testing.T) {
	db := testDB(t)
	h := NewHealthHandler(db, testSessionManager(t))

	rr := httptest.NewRecorder()
	h.Liveness(rr, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assertStatus(t, rr.Code, http.StatusOK)
}

func TestReadiness(t *testing.T) {
	db := testDB(t)
	h := NewHealthHandler(db, testSessionManager(t))

	rr := httptest.NewRecorder()
	h.Readiness(rr, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assertStatus(t, rr.Code, http.StatusOK)
}

func TestReadiness_ClosedDatabase(t *testing.T) {
	db := testDB(t)
	h := NewHealthHandler(db, testSessionManager(t))
	_ = db.Close()

	rr := httptest.NewRecorder()
	h.Readiness(rr, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assertStatus(t, rr.Code, http.StatusServiceUnavailable)
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   uint64
		want string
	}{
		{512, "512 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1024 * 1024, "1.00 MB"},
		{3 * 1024 * 1024 * 1024, "3.00 GB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q; want %q", tt.in, got, tt.want)
		}
	}
}
