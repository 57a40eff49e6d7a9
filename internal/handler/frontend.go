// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/oblog-go/internal/middleware"
	"github.com/olegiv/oblog-go/internal/model"
	"github.com/olegiv/oblog-go/internal/render"
	"github.com/olegiv/oblog-go/internal/service"
	"github.com/olegiv/oblog-go/internal/store"
)

// feedCookieName selects between the all-posts and followed-posts
// homepage feed. The choice is remembered for 30 days.
const (
	feedCookieName   = "show_followed"
	feedCookieMaxAge = 30 * 24 * time.Hour
)

// FrontendHandler handles the public post feeds, the single post page
// with its comments, and the post composer.
type FrontendHandler struct {
	posts           *service.PostService
	comments        *service.CommentService
	queries         *store.Queries
	renderer        *render.Renderer
	sessionManager  *scs.SessionManager
	eventService    *service.EventService
	postsPerPage    int
	commentsPerPage int
}

// NewFrontendHandler creates a new FrontendHandler.
func NewFrontendHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager, postsPerPage, commentsPerPage int) *FrontendHandler {
	return &FrontendHandler{
		posts:           service.NewPostService(db),
		comments:        service.NewCommentService(db),
		queries:         store.New(db),
		renderer:        renderer,
		sessionManager:  sm,
		eventService:    service.NewEventService(db),
		postsPerPage:    postsPerPage,
		commentsPerPage: commentsPerPage,
	}
}

// PostView pairs a post with its author and comment count for templates.
type PostView struct {
	Post         store.Post
	Author       store.User
	CommentCount int64
}

// CommentView pairs a comment with its author for templates.
type CommentView struct {
	Comment store.Comment
	Author  store.User
}

// IndexData holds data for the homepage template.
type IndexData struct {
	Posts        []PostView
	ShowFollowed bool
	Pagination   Pagination
}

// Index handles GET / - the paginated post feed. Logged-in users can
// switch between all posts and posts by users they follow; the choice is
// kept in a cookie.
func (h *FrontendHandler) Index(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	page := pageParam(r)
	offset := offsetFor(page, h.postsPerPage)

	showFollowed := false
	if user != nil {
		if c, err := r.Cookie(feedCookieName); err == nil && c.Value == "1" {
			showFollowed = true
		}
	}

	var (
		posts []store.Post
		total int64
		err   error
	)
	if showFollowed {
		posts, total, err = h.posts.ListFollowed(r.Context(), user.ID(), int64(h.postsPerPage), offset)
	} else {
		posts, total, err = h.posts.List(r.Context(), int64(h.postsPerPage), offset)
	}
	if err != nil {
		logAndInternalError(w, "loading post feed", "error", err)
		return
	}

	data := IndexData{
		Posts:        h.postViews(r, posts),
		ShowFollowed: showFollowed,
		Pagination:   BuildPagination(page, total, h.postsPerPage, RouteRoot, nil),
	}

	if err := h.renderer.Render(w, r, "index", render.TemplateData{
		Title:       "Home",
		Data:        data,
		CurrentUser: user,
	}); err != nil {
		logAndInternalError(w, "rendering homepage", "error", err)
	}
}

// postViews resolves authors and comment counts for a page of posts.
func (h *FrontendHandler) postViews(r *http.Request, posts []store.Post) []PostView {
	authors := batchFetchRelated(r.Context(), posts,
		func(p store.Post) int64 { return p.AuthorID },
		h.queries.GetUserByID, "post author")

	views := make([]PostView, 0, len(posts))
	for _, p := range posts {
		count, err := h.queries.CountCommentsByPost(r.Context(), p.ID)
		if err != nil {
			slog.Error("counting comments", "post_id", p.ID, "error", err)
		}
		views = append(views, PostView{
			Post:         p,
			Author:       authors[p.AuthorID],
			CommentCount: count,
		})
	}
	return views
}

// ShowAll switches the homepage feed to all posts.
func (h *FrontendHandler) ShowAll(w http.ResponseWriter, r *http.Request) {
	h.setFeedCookie(w, "0")
	http.Redirect(w, r, redirectRoot, http.StatusSeeOther)
}

// ShowFollowed switches the homepage feed to followed posts.
func (h *FrontendHandler) ShowFollowed(w http.ResponseWriter, r *http.Request) {
	if middleware.GetUser(r) == nil {
		http.Redirect(w, r, redirectLogin, http.StatusSeeOther)
		return
	}
	h.setFeedCookie(w, "1")
	http.Redirect(w, r, redirectRoot, http.StatusSeeOther)
}

func (h *FrontendHandler) setFeedCookie(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     feedCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(feedCookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// PostPageData holds data for the single post template.
type PostPageData struct {
	Post        PostView
	Comments    []CommentView
	Pagination  Pagination
	CanComment  bool
	CanModerate bool
}

// PostPage handles GET /post/{id} - a single post with its paginated
// comments, oldest first. ?page=-1 jumps to the last page so a freshly
// posted comment is visible.
func (h *FrontendHandler) PostPage(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	post, ok := requireEntityWithError(w, "post", id, func(id int64) (store.Post, error) {
		return h.posts.Get(r.Context(), id)
	})
	if !ok {
		return
	}

	author, err := h.queries.GetUserByID(r.Context(), post.AuthorID)
	if err != nil {
		logAndInternalError(w, "loading post author", "post_id", post.ID, "error", err)
		return
	}

	total, err := h.queries.CountCommentsByPost(r.Context(), post.ID)
	if err != nil {
		logAndInternalError(w, "counting comments", "post_id", post.ID, "error", err)
		return
	}

	page := pageParam(r)
	if r.URL.Query().Get("page") == "-1" {
		page = lastPage(total, h.commentsPerPage)
	}

	comments, _, err := h.comments.ListByPost(r.Context(), post.ID,
		int64(h.commentsPerPage), offsetFor(page, h.commentsPerPage))
	if err != nil {
		logAndInternalError(w, "loading comments", "post_id", post.ID, "error", err)
		return
	}

	commentAuthors := batchFetchRelated(r.Context(), comments,
		func(c store.Comment) int64 { return c.AuthorID },
		h.queries.GetUserByID, "comment author")

	commentViews := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		commentViews = append(commentViews, CommentView{Comment: c, Author: commentAuthors[c.AuthorID]})
	}

	user := middleware.GetUser(r)
	data := PostPageData{
		Post:        PostView{Post: post, Author: author, CommentCount: total},
		Comments:    commentViews,
		Pagination:  BuildPagination(page, total, h.commentsPerPage, fmt.Sprintf(redirectPostID, post.ID), nil),
		CanComment:  user.Can(model.PermissionComment),
		CanModerate: user.Can(model.PermissionModerateComments),
	}

	if err := h.renderer.Render(w, r, "post", render.TemplateData{
		Title:       "Post by " + author.Username,
		Data:        data,
		CurrentUser: user,
	}); err != nil {
		logAndInternalError(w, "rendering post page", "error", err)
	}
}

// CreateComment handles POST /post/{id}/comments. Routed behind the
// comment permission.
func (h *FrontendHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	user := middleware.GetUser(r)
	postURL := fmt.Sprintf(redirectPostID, id)

	if !parseFormOrRedirect(w, r, h.renderer, postURL) {
		return
	}

	body := strings.TrimSpace(r.FormValue("body"))
	if body == "" {
		flashError(w, r, h.renderer, postURL, "Comment cannot be empty")
		return
	}

	comment, err := h.comments.Create(r.Context(), id, user.ID(), body)
	if err != nil {
		slog.Error("creating comment", "post_id", id, "error", err)
		flashError(w, r, h.renderer, postURL, "Could not post the comment, please try again")
		return
	}

	userID := user.ID()
	_ = h.eventService.LogCommentEvent(r.Context(), model.EventLevelInfo, "Comment published",
		&userID, middleware.GetClientIP(r), map[string]any{"comment_id": comment.ID, "post_id": id})

	flashSuccess(w, r, h.renderer, postURL+"?page=-1", "Your comment has been published.")
}

// WriteForm renders the post composer. Routed behind the write
// permission.
func (h *FrontendHandler) WriteForm(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Render(w, r, "write", render.TemplateData{
		Title:       "Write a Post",
		CurrentUser: middleware.GetUser(r),
	}); err != nil {
		logAndInternalError(w, "rendering composer", "error", err)
	}
}

// Write handles the composer submission.
func (h *FrontendHandler) Write(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if !parseFormOrRedirect(w, r, h.renderer, RouteWrite) {
		return
	}

	body := strings.TrimSpace(r.FormValue("body"))
	if body == "" {
		flashError(w, r, h.renderer, RouteWrite, "Post cannot be empty")
		return
	}

	post, err := h.posts.Create(r.Context(), user.ID(), body)
	if err != nil {
		slog.Error("creating post", "user_id", user.ID(), "error", err)
		flashError(w, r, h.renderer, RouteWrite, "Could not publish the post, please try again")
		return
	}

	userID := user.ID()
	_ = h.eventService.LogPostEvent(r.Context(), model.EventLevelInfo, "Post published",
		&userID, middleware.GetClientIP(r), map[string]any{"post_id": post.ID})

	flashSuccess(w, r, h.renderer, fmt.Sprintf(redirectPostID, post.ID), "Your post has been published.")
}

// EditForm renders the post editor. Only the author or an administrator
// may edit.
func (h *FrontendHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	post, ok := requireEntityWithError(w, "post", id, func(id int64) (store.Post, error) {
		return h.posts.Get(r.Context(), id)
	})
	if !ok {
		return
	}
	user := middleware.GetUser(r)
	if !canEditPost(user, post) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := h.renderer.Render(w, r, "edit", render.TemplateData{
		Title:       "Edit Post",
		Data:        post,
		CurrentUser: user,
	}); err != nil {
		logAndInternalError(w, "rendering editor", "error", err)
	}
}

// Edit handles the editor submission.
func (h *FrontendHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	post, ok := requireEntityWithError(w, "post", id, func(id int64) (store.Post, error) {
		return h.posts.Get(r.Context(), id)
	})
	if !ok {
		return
	}
	user := middleware.GetUser(r)
	if !canEditPost(user, post) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	editURL := fmt.Sprintf(redirectEditID, id)
	if !parseFormOrRedirect(w, r, h.renderer, editURL) {
		return
	}

	body := strings.TrimSpace(r.FormValue("body"))
	if body == "" {
		flashError(w, r, h.renderer, editURL, "Post cannot be empty")
		return
	}

	if err := h.posts.Update(r.Context(), id, body); err != nil {
		slog.Error("updating post", "post_id", id, "error", err)
		flashError(w, r, h.renderer, editURL, "Could not update the post, please try again")
		return
	}

	userID := user.ID()
	_ = h.eventService.LogPostEvent(r.Context(), model.EventLevelInfo, "Post updated",
		&userID, middleware.GetClientIP(r), map[string]any{"post_id": id})

	flashSuccess(w, r, h.renderer, fmt.Sprintf(redirectPostID, id), "The post has been updated.")
}

// DeletePost handles POST /post/{id}/delete. Only the author or an
// administrator may delete; the post's comments go with it.
func (h *FrontendHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	post, ok := requireEntityWithError(w, "post", id, func(id int64) (store.Post, error) {
		return h.posts.Get(r.Context(), id)
	})
	if !ok {
		return
	}
	user := middleware.GetUser(r)
	if !canEditPost(user, post) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := h.posts.Delete(r.Context(), id); err != nil {
		slog.Error("deleting post", "post_id", id, "error", err)
		flashError(w, r, h.renderer, fmt.Sprintf(redirectPostID, id), "Could not delete the post, please try again")
		return
	}

	userID := user.ID()
	_ = h.eventService.LogPostEvent(r.Context(), model.EventLevelInfo, "Post deleted",
		&userID, middleware.GetClientIP(r), map[string]any{"post_id": id})

	flashAndRedirect(w, r, h.renderer, redirectRoot, "The post has been deleted.", "info")
}

// canEditPost reports whether the principal may edit or delete a post:
// its author, or anyone holding the administration permission.
func canEditPost(user *model.CurrentUser, post store.Post) bool {
	if user == nil {
		return false
	}
	return user.ID() == post.AuthorID || user.IsAdministrator()
}
