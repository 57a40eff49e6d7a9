// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/olegiv/oblog-go/internal/middleware"
	"github.com/olegiv/oblog-go/internal/model"
	"github.com/olegiv/oblog-go/internal/render"
	"github.com/olegiv/oblog-go/internal/service"
	"github.com/olegiv/oblog-go/internal/store"
)

// ModerationHandler handles the comment moderation screens. Routed
// behind the moderation permission.
type ModerationHandler struct {
	comments        *service.CommentService
	queries         *store.Queries
	renderer        *render.Renderer
	eventService    *service.EventService
	commentsPerPage int
}

// NewModerationHandler creates a new ModerationHandler.
func NewModerationHandler(db *sql.DB, renderer *render.Renderer, commentsPerPage int) *ModerationHandler {
	return &ModerationHandler{
		comments:        service.NewCommentService(db),
		queries:         store.New(db),
		renderer:        renderer,
		eventService:    service.NewEventService(db),
		commentsPerPage: commentsPerPage,
	}
}

// ModerationData holds data for the moderation template.
type ModerationData struct {
	Comments   []CommentView
	Total      int64
	Pagination Pagination
}

// List handles GET /moderate - all comments newest first, disabled ones
// included.
func (h *ModerationHandler) List(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)

	comments, total, err := h.comments.ListAll(r.Context(),
		int64(h.commentsPerPage), offsetFor(page, h.commentsPerPage))
	if err != nil {
		logAndInternalError(w, "listing comments for moderation", "error", err)
		return
	}

	authors := batchFetchRelated(r.Context(), comments,
		func(c store.Comment) int64 { return c.AuthorID },
		h.queries.GetUserByID, "comment author")

	data := ModerationData{
		Total:      total,
		Pagination: BuildPagination(page, total, h.commentsPerPage, RouteModerate, nil),
	}
	for _, c := range comments {
		data.Comments = append(data.Comments, CommentView{Comment: c, Author: authors[c.AuthorID]})
	}

	if err := h.renderer.Render(w, r, "moderate", render.TemplateData{
		Title:       "Moderate Comments",
		Data:        data,
		CurrentUser: middleware.GetUser(r),
	}); err != nil {
		logAndInternalError(w, "rendering moderation page", "error", err)
	}
}

// Enable handles POST /moderate/enable/{id}.
func (h *ModerationHandler) Enable(w http.ResponseWriter, r *http.Request) {
	h.setDisabled(w, r, false)
}

// Disable handles POST /moderate/disable/{id}.
func (h *ModerationHandler) Disable(w http.ResponseWriter, r *http.Request) {
	h.setDisabled(w, r, true)
}

// setDisabled flips a comment's moderation state and returns to the
// moderation page the moderator was on.
func (h *ModerationHandler) setDisabled(w http.ResponseWriter, r *http.Request, disabled bool) {
	id, ok := idParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	if _, ok := requireEntityWithError(w, "comment", id, func(id int64) (store.Comment, error) {
		return h.comments.Get(r.Context(), id)
	}); !ok {
		return
	}

	if err := h.comments.SetDisabled(r.Context(), id, disabled); err != nil {
		slog.Error("setting comment state", "comment_id", id, "disabled", disabled, "error", err)
		flashError(w, r, h.renderer, h.backURL(r), "Could not update the comment, please try again")
		return
	}

	action := "Comment enabled"
	if disabled {
		action = "Comment disabled"
	}
	moderator := middleware.GetUser(r)
	moderatorID := moderator.ID()
	_ = h.eventService.LogCommentEvent(r.Context(), model.EventLevelInfo, action,
		&moderatorID, middleware.GetClientIP(r), map[string]any{"comment_id": id})

	http.Redirect(w, r, h.backURL(r), http.StatusSeeOther)
}

// backURL preserves the moderation page number across state changes.
func (h *ModerationHandler) backURL(r *http.Request) string {
	if page := r.URL.Query().Get("page"); page != "" {
		return fmt.Sprintf("%s?page=%s", redirectModerate, page)
	}
	return redirectModerate
}
