// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/oblog-go/internal/middleware"
	"github.com/olegiv/oblog-go/internal/store"
)

// CommentJSON is the API representation of a comment.
type CommentJSON struct {
	ID        int64     `json:"id"`
	URL       string    `json:"url"`
	PostURL   string    `json:"post_url"`
	Body      string    `json:"body"`
	BodyHTML  string    `json:"body_html"`
	Timestamp time.Time `json:"timestamp"`
	AuthorURL string    `json:"author_url"`
	Disabled  bool      `json:"disabled"`
}

// CommentListResponse is the paginated comment list envelope.
type CommentListResponse struct {
	Comments []CommentJSON `json:"comments"`
	Prev     *string       `json:"prev"`
	Next     *string       `json:"next"`
	Count    int64         `json:"count"`
}

func commentJSON(c store.Comment) CommentJSON {
	return CommentJSON{
		ID:        c.ID,
		URL:       commentURL(c.ID),
		PostURL:   postURL(c.PostID),
		Body:      c.Body,
		BodyHTML:  c.BodyHtml,
		Timestamp: c.CreatedAt,
		AuthorURL: userURL(c.AuthorID),
		Disabled:  c.Disabled == 1,
	}
}

func (h *Handler) commentList(comments []store.Comment, total int64, baseURL string, page int) CommentListResponse {
	resp := CommentListResponse{
		Comments: make([]CommentJSON, 0, len(comments)),
		Count:    total,
	}
	resp.Prev, resp.Next = prevNextURLs(baseURL, page, total, h.perPage)
	for _, c := range comments {
		resp.Comments = append(resp.Comments, commentJSON(c))
	}
	return resp
}

// ListComments handles GET /api/v1/comments - all comments, newest first.
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)
	comments, total, err := h.comments.ListAll(r.Context(),
		int64(h.perPage), int64(page-1)*int64(h.perPage))
	if err != nil {
		slog.Error("listing comments", "error", err)
		WriteInternalError(w, "Failed to list comments")
		return
	}
	WriteJSON(w, http.StatusOK, h.commentList(comments, total, "/api/v1/comments", page))
}

// GetComment handles GET /api/v1/comments/{id}.
func (h *Handler) GetComment(w http.ResponseWriter, r *http.Request) {
	comment, ok := requireEntityByID(w, r, "Comment", func(id int64) (store.Comment, error) {
		return h.comments.Get(r.Context(), id)
	})
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, commentJSON(comment))
}

// ListPostComments handles GET /api/v1/posts/{id}/comments - a post's
// comments, oldest first.
func (h *Handler) ListPostComments(w http.ResponseWriter, r *http.Request) {
	post, ok := requireEntityByID(w, r, "Post", func(id int64) (store.Post, error) {
		return h.posts.Get(r.Context(), id)
	})
	if !ok {
		return
	}

	page := pageParam(r)
	comments, total, err := h.comments.ListByPost(r.Context(), post.ID,
		int64(h.perPage), int64(page-1)*int64(h.perPage))
	if err != nil {
		slog.Error("listing comments", "post_id", post.ID, "error", err)
		WriteInternalError(w, "Failed to list comments")
		return
	}
	WriteJSON(w, http.StatusOK, h.commentList(comments, total, postCommentsURL(post.ID), page))
}

// commentInput is the request body for creating a comment.
type commentInput struct {
	Body string `json:"body"`
}

// CreatePostComment handles POST /api/v1/posts/{id}/comments. Routed
// behind the comment permission.
func (h *Handler) CreatePostComment(w http.ResponseWriter, r *http.Request) {
	post, ok := requireEntityByID(w, r, "Post", func(id int64) (store.Post, error) {
		return h.posts.Get(r.Context(), id)
	})
	if !ok {
		return
	}

	var in commentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}
	in.Body = strings.TrimSpace(in.Body)
	if in.Body == "" {
		WriteValidationError(w, map[string]string{"body": "Body must not be empty"})
		return
	}

	user := middleware.GetUser(r)
	comment, err := h.comments.Create(r.Context(), post.ID, user.ID(), in.Body)
	if err != nil {
		slog.Error("creating comment", "post_id", post.ID, "error", err)
		WriteInternalError(w, "Failed to create comment")
		return
	}

	w.Header().Set("Location", commentURL(comment.ID))
	WriteJSON(w, http.StatusCreated, commentJSON(comment))
}
