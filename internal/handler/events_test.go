package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/olegiv/oblog-go/internal/model"
	"github.com/olegiv/oblog-go/internal/service"
)

func TestEventsList(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewEventsHandler(db, testRenderer(t, sm))
	admin := createTestUser(t, db, "zoe@example.com", "zoe", model.RoleNameAdministrator, 1)

	events := service.NewEventService(db)
	if err := events.LogAuthEvent(context.Background(), model.EventLevelInfo,
		"User logged in", &admin.ID, "127.0.0.1", map[string]any{"email": admin.Email}); err != nil {
		t.Fatalf("LogAuthEvent: %v", err)
	}
	if err := events.LogAuthEvent(context.Background(), model.EventLevelWarning,
		"Login failed", nil, "127.0.0.1", nil); err != nil {
		t.Fatalf("LogAuthEvent: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/events", nil)
	req = requestWithSession(t, sm, req)
	req = requestWithUser(req, principalFor(t, db, admin))
	rr := httptest.NewRecorder()

	h.List(rr, req)
	assertStatus(t, rr.Code, http.StatusOK)
}

func TestFormatMetadata(t *testing.T) {
	tests := []struct {
		name     string
		metadata string
		want     string
	}{
		{"empty", "", ""},
		{"empty object", "{}", ""},
		{"single string", `{"email":"a@b.com"}`, "email: a@b.com"},
		{"sorted keys", `{"path":"/write","error":"not found"}`, "error: not found, path: /write"},
		{"number", `{"post_id":42}`, "post_id: 42"},
		{"bool", `{"locked":true}`, "locked: true"},
		{"invalid json", "not json", "not json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatMetadata(tt.metadata); got != tt.want {
				t.Errorf("formatMetadata(%q) = %q; want %q", tt.metadata, got, tt.want)
			}
		})
	}
}
