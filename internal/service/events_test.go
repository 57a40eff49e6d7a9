// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/olegiv/oblog-go/internal/model"
)

func TestLogEvent(t *testing.T) {
	db := testDB(t)
	svc := NewEventService(db)
	ctx := context.Background()

	userID := int64(123)
	err := svc.LogEvent(ctx, model.EventLevelInfo, model.EventCategoryAuth, "Test message", &userID, "192.168.1.100", map[string]any{
		"key": "value",
	})
	if err != nil {
		t.Fatalf("LogEvent failed: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM events").Scan(&count); err != nil {
		t.Fatalf("failed to count events: %v", err)
	}
	if count != 1 {
		t.Errorf("event count = %d, want 1", count)
	}

	var level, category, message, metadata, ipAddress string
	var savedUserID sql.NullInt64
	err = db.QueryRow("SELECT level, category, message, user_id, metadata, ip_address FROM events").
		Scan(&level, &category, &message, &savedUserID, &metadata, &ipAddress)
	if err != nil {
		t.Fatalf("failed to read event: %v", err)
	}

	if level != "info" {
		t.Errorf("level = %q, want %q", level, "info")
	}
	if category != "auth" {
		t.Errorf("category = %q, want %q", category, "auth")
	}
	if message != "Test message" {
		t.Errorf("message = %q, want %q", message, "Test message")
	}
	if !savedUserID.Valid || savedUserID.Int64 != 123 {
		t.Errorf("user_id = %v, want 123", savedUserID)
	}
	if metadata != `{"key":"value"}` {
		t.Errorf("metadata = %q, want %q", metadata, `{"key":"value"}`)
	}
	if ipAddress != "192.168.1.100" {
		t.Errorf("ip_address = %q, want %q", ipAddress, "192.168.1.100")
	}
}

func TestLogEvent_NilUserID(t *testing.T) {
	db := testDB(t)
	svc := NewEventService(db)

	if err := svc.LogEvent(context.Background(), model.EventLevelWarning, model.EventCategorySystem, "No user", nil, "", nil); err != nil {
		t.Fatalf("LogEvent failed: %v", err)
	}

	var savedUserID sql.NullInt64
	if err := db.QueryRow("SELECT user_id FROM events").Scan(&savedUserID); err != nil {
		t.Fatalf("failed to read event: %v", err)
	}
	if savedUserID.Valid {
		t.Error("user_id should be NULL")
	}
}

func TestLogEvent_NilMetadata(t *testing.T) {
	db := testDB(t)
	svc := NewEventService(db)

	if err := svc.LogEvent(context.Background(), model.EventLevelInfo, model.EventCategoryAuth, "Test", nil, "", nil); err != nil {
		t.Fatalf("LogEvent failed: %v", err)
	}

	var metadata string
	if err := db.QueryRow("SELECT metadata FROM events").Scan(&metadata); err != nil {
		t.Fatalf("failed to read event: %v", err)
	}
	if metadata != "{}" {
		t.Errorf("metadata = %q, want %q", metadata, "{}")
	}
}

// testEventField tests that a logging function produces the expected field value in the database.
func testEventField(t *testing.T, db *sql.DB, logFn func(*EventService, context.Context) error, fieldName, expected string) {
	t.Helper()
	svc := NewEventService(db)
	ctx := context.Background()

	if err := logFn(svc, ctx); err != nil {
		t.Fatalf("Log function failed: %v", err)
	}

	var got string
	if err := db.QueryRow("SELECT " + fieldName + " FROM events").Scan(&got); err != nil {
		t.Fatalf("failed to read event: %v", err)
	}
	if got != expected {
		t.Errorf("%s = %q, want %q", fieldName, got, expected)
	}
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		name     string
		logFn    func(*EventService, context.Context) error
		expected string
	}{
		{"info", func(svc *EventService, ctx context.Context) error {
			return svc.LogInfo(ctx, model.EventCategoryPost, "Post created", nil, "", nil)
		}, "info"},
		{"warning", func(svc *EventService, ctx context.Context) error {
			return svc.LogWarning(ctx, model.EventCategorySystem, "Low disk space", nil, "", nil)
		}, "warning"},
		{"error", func(svc *EventService, ctx context.Context) error {
			return svc.LogError(ctx, model.EventCategoryAuth, "Login failed", nil, "", nil)
		}, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testDB(t)
			testEventField(t, db, tt.logFn, "level", tt.expected)
		})
	}
}

func TestLogCategoryEvents(t *testing.T) {
	tests := []struct {
		name     string
		logFn    func(*EventService, context.Context) error
		expected string
	}{
		{"auth", func(svc *EventService, ctx context.Context) error {
			return svc.LogAuthEvent(ctx, model.EventLevelInfo, "User logged in", nil, "", nil)
		}, "auth"},
		{"user", func(svc *EventService, ctx context.Context) error {
			return svc.LogUserEvent(ctx, model.EventLevelInfo, "User created", nil, "", nil)
		}, "user"},
		{"post", func(svc *EventService, ctx context.Context) error {
			return svc.LogPostEvent(ctx, model.EventLevelInfo, "Post published", nil, "", nil)
		}, "post"},
		{"comment", func(svc *EventService, ctx context.Context) error {
			return svc.LogCommentEvent(ctx, model.EventLevelInfo, "Comment disabled", nil, "", nil)
		}, "comment"},
		{"follow", func(svc *EventService, ctx context.Context) error {
			return svc.LogFollowEvent(ctx, model.EventLevelInfo, "User followed", nil, "", nil)
		}, "follow"},
		{"system", func(svc *EventService, ctx context.Context) error {
			return svc.LogSystemEvent(ctx, model.EventLevelInfo, "System started", nil, "", nil)
		}, "system"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testDB(t)
			testEventField(t, db, tt.logFn, "category", tt.expected)
		})
	}
}

func TestDeleteOldEvents(t *testing.T) {
	db := testDB(t)
	svc := NewEventService(db)
	ctx := context.Background()

	// Insert an old event directly
	_, err := db.Exec(`
		INSERT INTO events (level, category, message, metadata, ip_address, created_at)
		VALUES ('info', 'system', 'Old event', '{}', '', ?)
	`, time.Now().Add(-31*24*time.Hour))
	if err != nil {
		t.Fatalf("failed to insert old event: %v", err)
	}

	if err := svc.LogInfo(ctx, model.EventCategorySystem, "Recent event", nil, "", nil); err != nil {
		t.Fatalf("LogInfo failed: %v", err)
	}

	if err := svc.DeleteOldEvents(ctx, 30*24*time.Hour); err != nil {
		t.Fatalf("DeleteOldEvents failed: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM events").Scan(&count); err != nil {
		t.Fatalf("failed to count events: %v", err)
	}
	if count != 1 {
		t.Errorf("event count after delete = %d, want 1", count)
	}
}
