// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/olegiv/oblog-go/internal/middleware"
	"github.com/olegiv/oblog-go/internal/render"
	"github.com/olegiv/oblog-go/internal/store"
)

// EventsPerPage is the number of events to display per page.
const EventsPerPage = 25

// EventsHandler handles the admin event log viewer.
type EventsHandler struct {
	queries  *store.Queries
	renderer *render.Renderer
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(db *sql.DB, renderer *render.Renderer) *EventsHandler {
	return &EventsHandler{
		queries:  store.New(db),
		renderer: renderer,
	}
}

// EventWithUser represents an event with associated user info.
type EventWithUser struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	Details   string // Formatted metadata as readable text
	IPAddress string
	CreatedAt string
	Username  string
}

// formatMetadata converts JSON metadata to readable text format.
// Example: {"path":"/write","error":"not found"} -> "error: not found, path: /write"
func formatMetadata(metadata string) string {
	if metadata == "" || metadata == "{}" {
		return ""
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(metadata), &data); err != nil {
		return metadata // Return as-is if not valid JSON
	}

	if len(data) == 0 {
		return ""
	}

	// Sort keys for consistent output order
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var parts []string
	for _, key := range keys {
		value := data[key]
		var strValue string
		switch v := value.(type) {
		case string:
			strValue = v
		case float64:
			strValue = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			strValue = strconv.FormatBool(v)
		default:
			// For nested objects, marshal back to JSON
			if b, err := json.Marshal(v); err == nil {
				strValue = string(b)
			}
		}
		parts = append(parts, key+": "+strValue)
	}

	return strings.Join(parts, ", ")
}

// EventsListData holds data for the events list template.
type EventsListData struct {
	Events     []EventWithUser
	Total      int64
	Pagination Pagination
}

// List handles GET /admin/events - a paginated view of the audit trail,
// newest first.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)

	events, total, err := ListAndCount(
		func() ([]store.Event, error) {
			return h.queries.ListEvents(r.Context(), store.ListEventsParams{
				Limit:  EventsPerPage,
				Offset: offsetFor(page, EventsPerPage),
			})
		},
		func() (int64, error) { return h.queries.CountEvents(r.Context()) },
	)
	if err != nil {
		logAndInternalError(w, "listing events", "error", err)
		return
	}

	users := batchFetchRelated(r.Context(), events,
		func(e store.Event) int64 { return e.UserID.Int64 },
		h.queries.GetUserByID, "event user")

	data := EventsListData{
		Total:      total,
		Pagination: BuildPagination(page, total, EventsPerPage, "/admin"+RouteEvents, nil),
	}
	for _, e := range events {
		row := EventWithUser{
			ID:        e.ID,
			Level:     e.Level,
			Category:  e.Category,
			Message:   e.Message,
			Details:   formatMetadata(e.Metadata),
			IPAddress: e.IpAddress,
			CreatedAt: e.CreatedAt.Format("Jan 2, 2006 15:04:05"),
		}
		if e.UserID.Valid {
			row.Username = users[e.UserID.Int64].Username
		}
		data.Events = append(data.Events, row)
	}

	if err := h.renderer.Render(w, r, "admin_events", render.TemplateData{
		Title:       "Event Log",
		Data:        data,
		CurrentUser: middleware.GetUser(r),
	}); err != nil {
		logAndInternalError(w, "rendering event log", "error", err)
	}
}
