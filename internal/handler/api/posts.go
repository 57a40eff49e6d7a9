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

// PostJSON is the API representation of a post.
type PostJSON struct {
	ID           int64     `json:"id"`
	URL          string    `json:"url"`
	Body         string    `json:"body"`
	BodyHTML     string    `json:"body_html"`
	Timestamp    time.Time `json:"timestamp"`
	AuthorURL    string    `json:"author_url"`
	CommentsURL  string    `json:"comments_url"`
	CommentCount int64     `json:"comment_count"`
}

// PostListResponse is the paginated post list envelope.
type PostListResponse struct {
	Posts []PostJSON `json:"posts"`
	Prev  *string    `json:"prev"`
	Next  *string    `json:"next"`
	Count int64      `json:"count"`
}

// postJSON builds the API representation of a post. The comment count is
// best-effort; a counting error logs and reports zero rather than failing
// the request.
func (h *Handler) postJSON(r *http.Request, p store.Post) PostJSON {
	count, err := h.queries.CountCommentsByPost(r.Context(), p.ID)
	if err != nil {
		slog.Error("counting comments", "post_id", p.ID, "error", err)
	}
	return PostJSON{
		ID:           p.ID,
		URL:          postURL(p.ID),
		Body:         p.Body,
		BodyHTML:     p.BodyHtml,
		Timestamp:    p.CreatedAt,
		AuthorURL:    userURL(p.AuthorID),
		CommentsURL:  postCommentsURL(p.ID),
		CommentCount: count,
	}
}

// postList assembles the paginated envelope for a page of posts.
func (h *Handler) postList(r *http.Request, posts []store.Post, total int64, baseURL string, page int) PostListResponse {
	resp := PostListResponse{
		Posts: make([]PostJSON, 0, len(posts)),
		Count: total,
	}
	resp.Prev, resp.Next = prevNextURLs(baseURL, page, total, h.perPage)
	for _, p := range posts {
		resp.Posts = append(resp.Posts, h.postJSON(r, p))
	}
	return resp
}

// postInput is the request body for creating or updating a post.
type postInput struct {
	Body string `json:"body"`
}

// decodePostInput reads and validates a post body payload. Returns false
// with the response written on failure.
func decodePostInput(w http.ResponseWriter, r *http.Request) (postInput, bool) {
	var in postInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return in, false
	}
	in.Body = strings.TrimSpace(in.Body)
	if in.Body == "" {
		WriteValidationError(w, map[string]string{"body": "Body must not be empty"})
		return in, false
	}
	return in, true
}

// ListPosts handles GET /api/v1/posts - all posts, newest first.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)
	posts, total, err := h.posts.List(r.Context(),
		int64(h.perPage), int64(page-1)*int64(h.perPage))
	if err != nil {
		slog.Error("listing posts", "error", err)
		WriteInternalError(w, "Failed to list posts")
		return
	}
	WriteJSON(w, http.StatusOK, h.postList(r, posts, total, "/api/v1/posts", page))
}

// GetPost handles GET /api/v1/posts/{id}.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, ok := requireEntityByID(w, r, "Post", func(id int64) (store.Post, error) {
		return h.posts.Get(r.Context(), id)
	})
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, h.postJSON(r, post))
}

// CreatePost handles POST /api/v1/posts. Routed behind the write
// permission. The Location header carries the new resource URL.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	in, ok := decodePostInput(w, r)
	if !ok {
		return
	}

	post, err := h.posts.Create(r.Context(), user.ID(), in.Body)
	if err != nil {
		slog.Error("creating post", "user_id", user.ID(), "error", err)
		WriteInternalError(w, "Failed to create post")
		return
	}

	w.Header().Set("Location", postURL(post.ID))
	WriteJSON(w, http.StatusCreated, h.postJSON(r, post))
}

// UpdatePost handles PUT /api/v1/posts/{id}. Only the author or an
// administrator may update.
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	post, ok := requireEntityByID(w, r, "Post", func(id int64) (store.Post, error) {
		return h.posts.Get(r.Context(), id)
	})
	if !ok {
		return
	}

	user := middleware.GetUser(r)
	if user.ID() != post.AuthorID && !user.IsAdministrator() {
		WriteForbidden(w, "Insufficient permissions")
		return
	}

	in, ok := decodePostInput(w, r)
	if !ok {
		return
	}

	if err := h.posts.Update(r.Context(), post.ID, in.Body); err != nil {
		slog.Error("updating post", "post_id", post.ID, "error", err)
		WriteInternalError(w, "Failed to update post")
		return
	}

	updated, err := h.posts.Get(r.Context(), post.ID)
	if err != nil {
		slog.Error("reloading post", "post_id", post.ID, "error", err)
		WriteInternalError(w, "Failed to update post")
		return
	}
	WriteJSON(w, http.StatusOK, h.postJSON(r, updated))
}
