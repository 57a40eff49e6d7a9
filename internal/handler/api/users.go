// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/olegiv/oblog-go/internal/store"
)

// UserJSON is the API representation of a user profile. Email and other
// account fields are never exposed.
type UserJSON struct {
	ID               int64     `json:"id"`
	URL              string    `json:"url"`
	Username         string    `json:"username"`
	MemberSince      time.Time `json:"member_since"`
	LastSeen         time.Time `json:"last_seen"`
	PostsURL         string    `json:"posts_url"`
	FollowedPostsURL string    `json:"followed_posts_url"`
	PostCount        int64     `json:"post_count"`
}

func (h *Handler) userJSON(r *http.Request, u store.User) UserJSON {
	count, err := h.queries.CountPostsByAuthor(r.Context(), u.ID)
	if err != nil {
		slog.Error("counting posts", "user_id", u.ID, "error", err)
	}
	return UserJSON{
		ID:               u.ID,
		URL:              userURL(u.ID),
		Username:         u.Username,
		MemberSince:      u.MemberSince,
		LastSeen:         u.LastSeen,
		PostsURL:         fmt.Sprintf("/api/v1/users/%d/posts", u.ID),
		FollowedPostsURL: fmt.Sprintf("/api/v1/users/%d/followed_posts", u.ID),
		PostCount:        count,
	}
}

// GetUser handles GET /api/v1/users/{id}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, ok := requireEntityByID(w, r, "User", func(id int64) (store.User, error) {
		return h.queries.GetUserByID(r.Context(), id)
	})
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, h.userJSON(r, user))
}

// ListUserPosts handles GET /api/v1/users/{id}/posts - the user's posts,
// newest first.
func (h *Handler) ListUserPosts(w http.ResponseWriter, r *http.Request) {
	user, ok := requireEntityByID(w, r, "User", func(id int64) (store.User, error) {
		return h.queries.GetUserByID(r.Context(), id)
	})
	if !ok {
		return
	}

	page := pageParam(r)
	posts, total, err := h.posts.ListByAuthor(r.Context(), user.ID,
		int64(h.perPage), int64(page-1)*int64(h.perPage))
	if err != nil {
		slog.Error("listing posts", "user_id", user.ID, "error", err)
		WriteInternalError(w, "Failed to list posts")
		return
	}
	WriteJSON(w, http.StatusOK,
		h.postList(r, posts, total, fmt.Sprintf("/api/v1/users/%d/posts", user.ID), page))
}

// ListUserFollowedPosts handles GET /api/v1/users/{id}/followed_posts -
// the user's timeline: posts by users they follow, which includes their
// own via the permanent self-follow edge.
func (h *Handler) ListUserFollowedPosts(w http.ResponseWriter, r *http.Request) {
	user, ok := requireEntityByID(w, r, "User", func(id int64) (store.User, error) {
		return h.queries.GetUserByID(r.Context(), id)
	})
	if !ok {
		return
	}

	page := pageParam(r)
	posts, total, err := h.posts.ListFollowed(r.Context(), user.ID,
		int64(h.perPage), int64(page-1)*int64(h.perPage))
	if err != nil {
		slog.Error("listing followed posts", "user_id", user.ID, "error", err)
		WriteInternalError(w, "Failed to list posts")
		return
	}
	WriteJSON(w, http.StatusOK,
		h.postList(r, posts, total, fmt.Sprintf("/api/v1/users/%d/followed_posts", user.ID), page))
}
