// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/oblog-go/internal/auth"
	"github.com/olegiv/oblog-go/internal/middleware"
	"github.com/olegiv/oblog-go/internal/model"
	"github.com/olegiv/oblog-go/internal/render"
	"github.com/olegiv/oblog-go/internal/service"
	"github.com/olegiv/oblog-go/internal/store"
)

// UserHandler handles profile pages, profile editing, the follow graph,
// and the admin user screens.
type UserHandler struct {
	users            *service.UserService
	posts            *service.PostService
	follows          *service.FollowService
	queries          *store.Queries
	renderer         *render.Renderer
	eventService     *service.EventService
	postsPerPage     int
	followersPerPage int
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(db *sql.DB, users *service.UserService, renderer *render.Renderer, postsPerPage, followersPerPage int) *UserHandler {
	return &UserHandler{
		users:            users,
		posts:            service.NewPostService(db),
		follows:          service.NewFollowService(db),
		queries:          store.New(db),
		renderer:         renderer,
		eventService:     service.NewEventService(db),
		postsPerPage:     postsPerPage,
		followersPerPage: followersPerPage,
	}
}

// userByUsername resolves the {username} URL parameter. Writes a 404 and
// returns false when the user does not exist.
func (h *UserHandler) userByUsername(w http.ResponseWriter, r *http.Request) (store.User, bool) {
	username := chi.URLParam(r, "username")
	user, err := h.queries.GetUserByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.NotFound(w, r)
		} else {
			logAndInternalError(w, "looking up user", "username", username, "error", err)
		}
		return store.User{}, false
	}
	return user, true
}

// ProfileData holds data for the profile template.
type ProfileData struct {
	User           store.User
	Role           store.Role
	Posts          []PostView
	Pagination     Pagination
	PostCount      int64
	FollowerCount  int64
	FollowingCount int64
	IsSelf         bool
	IsFollowing    bool
	IsFollowedBy   bool
	CanFollow      bool
}

// Profile handles GET /user/{username} - a user's profile with their
// posts, newest first.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	profileUser, ok := h.userByUsername(w, r)
	if !ok {
		return
	}

	role, err := h.queries.GetRoleByID(r.Context(), profileUser.RoleID)
	if err != nil {
		logAndInternalError(w, "looking up role", "user_id", profileUser.ID, "error", err)
		return
	}

	page := pageParam(r)
	posts, total, err := h.posts.ListByAuthor(r.Context(), profileUser.ID,
		int64(h.postsPerPage), offsetFor(page, h.postsPerPage))
	if err != nil {
		logAndInternalError(w, "listing posts", "user_id", profileUser.ID, "error", err)
		return
	}

	followerCount, err := h.follows.FollowerCount(r.Context(), profileUser.ID)
	if err != nil {
		logAndInternalError(w, "counting followers", "user_id", profileUser.ID, "error", err)
		return
	}
	followingCount, err := h.follows.FollowingCount(r.Context(), profileUser.ID)
	if err != nil {
		logAndInternalError(w, "counting following", "user_id", profileUser.ID, "error", err)
		return
	}

	viewer := middleware.GetUser(r)
	data := ProfileData{
		User:           profileUser,
		Role:           role,
		Pagination:     BuildPagination(page, total, h.postsPerPage, fmt.Sprintf(redirectUserFmt, url.PathEscape(profileUser.Username)), nil),
		PostCount:      total,
		FollowerCount:  followerCount,
		FollowingCount: followingCount,
		CanFollow:      viewer.Can(model.PermissionFollow),
	}

	views := make([]PostView, 0, len(posts))
	for _, p := range posts {
		count, err := h.queries.CountCommentsByPost(r.Context(), p.ID)
		if err != nil {
			slog.Error("counting comments", "post_id", p.ID, "error", err)
		}
		views = append(views, PostView{Post: p, Author: profileUser, CommentCount: count})
	}
	data.Posts = views

	if viewer != nil {
		data.IsSelf = viewer.ID() == profileUser.ID
		if !data.IsSelf {
			if data.IsFollowing, err = h.follows.IsFollowing(r.Context(), viewer.ID(), profileUser.ID); err != nil {
				logAndInternalError(w, "checking follow state", "error", err)
				return
			}
			if data.IsFollowedBy, err = h.follows.IsFollowedBy(r.Context(), viewer.ID(), profileUser.ID); err != nil {
				logAndInternalError(w, "checking follow state", "error", err)
				return
			}
		}
	}

	if err := h.renderer.Render(w, r, "user", render.TemplateData{
		Title:       profileUser.Username,
		Data:        data,
		CurrentUser: viewer,
	}); err != nil {
		logAndInternalError(w, "rendering profile", "error", err)
	}
}

// EditProfileForm renders the own-profile editor.
func (h *UserHandler) EditProfileForm(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if err := h.renderer.Render(w, r, "edit_profile", render.TemplateData{
		Title:       "Edit Your Profile",
		Data:        user.User,
		CurrentUser: user,
	}); err != nil {
		logAndInternalError(w, "rendering profile editor", "error", err)
	}
}

// EditProfile updates the user-editable profile fields.
func (h *UserHandler) EditProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if !parseFormOrRedirect(w, r, h.renderer, RouteEditProfile) {
		return
	}

	if err := h.users.UpdateProfile(r.Context(), user.ID(),
		strings.TrimSpace(r.FormValue("name")),
		strings.TrimSpace(r.FormValue("location")),
		r.FormValue("about_me"),
	); err != nil {
		slog.Error("updating profile", "user_id", user.ID(), "error", err)
		flashError(w, r, h.renderer, RouteEditProfile, "Could not update the profile, please try again")
		return
	}

	flashSuccess(w, r, h.renderer,
		fmt.Sprintf(redirectUserFmt, url.PathEscape(user.User.Username)),
		"Your profile has been updated.")
}

// Follow handles POST /follow/{username}. Following an already followed
// user is a no-op.
func (h *UserHandler) Follow(w http.ResponseWriter, r *http.Request) {
	target, ok := h.userByUsername(w, r)
	if !ok {
		return
	}
	viewer := middleware.GetUser(r)
	profileURL := fmt.Sprintf(redirectUserFmt, url.PathEscape(target.Username))

	if viewer.ID() == target.ID {
		flashError(w, r, h.renderer, profileURL, "You cannot follow yourself.")
		return
	}

	if err := h.follows.Follow(r.Context(), viewer.ID(), target.ID); err != nil {
		slog.Error("creating follow", "follower_id", viewer.ID(), "followed_id", target.ID, "error", err)
		flashError(w, r, h.renderer, profileURL, "Could not follow the user, please try again")
		return
	}

	viewerID := viewer.ID()
	_ = h.eventService.LogFollowEvent(r.Context(), model.EventLevelInfo, "User followed",
		&viewerID, middleware.GetClientIP(r), map[string]any{"followed": target.Username})

	flashSuccess(w, r, h.renderer, profileURL, "You are now following "+target.Username+".")
}

// Unfollow handles POST /unfollow/{username}. The self edge cannot be
// removed.
func (h *UserHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	target, ok := h.userByUsername(w, r)
	if !ok {
		return
	}
	viewer := middleware.GetUser(r)
	profileURL := fmt.Sprintf(redirectUserFmt, url.PathEscape(target.Username))

	if err := h.follows.Unfollow(r.Context(), viewer.ID(), target.ID); err != nil {
		if errors.Is(err, service.ErrForbidden) {
			flashError(w, r, h.renderer, profileURL, "You cannot unfollow yourself.")
			return
		}
		slog.Error("deleting follow", "follower_id", viewer.ID(), "followed_id", target.ID, "error", err)
		flashError(w, r, h.renderer, profileURL, "Could not unfollow the user, please try again")
		return
	}

	flashAndRedirect(w, r, h.renderer, profileURL,
		"You are not following "+target.Username+" anymore.", "info")
}

// FollowListData holds data for the followers and following templates.
type FollowListData struct {
	User       store.User
	Title      string
	Entries    []FollowEntry
	Total      int64
	Pagination Pagination
}

// FollowEntry is one row in a followers or following list.
type FollowEntry struct {
	Username   string
	Name       string
	AvatarHash string
	Since      string
}

// Followers handles GET /followers/{username}.
func (h *UserHandler) Followers(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userByUsername(w, r)
	if !ok {
		return
	}

	page := pageParam(r)
	rows, err := h.follows.Followers(r.Context(), user.ID,
		int64(h.followersPerPage), offsetFor(page, h.followersPerPage))
	if err != nil {
		logAndInternalError(w, "listing followers", "user_id", user.ID, "error", err)
		return
	}
	total, err := h.follows.FollowerCount(r.Context(), user.ID)
	if err != nil {
		logAndInternalError(w, "counting followers", "user_id", user.ID, "error", err)
		return
	}

	data := FollowListData{
		User:       user,
		Title:      "Followers of " + user.Username,
		Total:      total,
		Pagination: BuildPagination(page, total, h.followersPerPage, "/followers/"+url.PathEscape(user.Username), nil),
	}
	for _, row := range rows {
		data.Entries = append(data.Entries, FollowEntry{
			Username:   row.Username,
			Name:       row.Name,
			AvatarHash: row.AvatarHash,
			Since:      render.TimeAgo(row.FollowedAt),
		})
	}

	if err := h.renderer.Render(w, r, "follows", render.TemplateData{
		Title:       data.Title,
		Data:        data,
		CurrentUser: middleware.GetUser(r),
	}); err != nil {
		logAndInternalError(w, "rendering followers page", "error", err)
	}
}

// Following handles GET /following/{username}.
func (h *UserHandler) Following(w http.ResponseWriter, r *http.Request) {
	user, ok := h.userByUsername(w, r)
	if !ok {
		return
	}

	page := pageParam(r)
	rows, err := h.follows.Following(r.Context(), user.ID,
		int64(h.followersPerPage), offsetFor(page, h.followersPerPage))
	if err != nil {
		logAndInternalError(w, "listing following", "user_id", user.ID, "error", err)
		return
	}
	total, err := h.follows.FollowingCount(r.Context(), user.ID)
	if err != nil {
		logAndInternalError(w, "counting following", "user_id", user.ID, "error", err)
		return
	}

	data := FollowListData{
		User:       user,
		Title:      "Followed by " + user.Username,
		Total:      total,
		Pagination: BuildPagination(page, total, h.followersPerPage, "/following/"+url.PathEscape(user.Username), nil),
	}
	for _, row := range rows {
		data.Entries = append(data.Entries, FollowEntry{
			Username:   row.Username,
			Name:       row.Name,
			AvatarHash: row.AvatarHash,
			Since:      render.TimeAgo(row.FollowedAt),
		})
	}

	if err := h.renderer.Render(w, r, "follows", render.TemplateData{
		Title:       data.Title,
		Data:        data,
		CurrentUser: middleware.GetUser(r),
	}); err != nil {
		logAndInternalError(w, "rendering following page", "error", err)
	}
}

// AdminUsersPerPage is the number of users shown per admin list page.
const AdminUsersPerPage = 50

// AdminUserRow pairs a user with their role for the admin list.
type AdminUserRow struct {
	User store.User
	Role store.Role
}

// AdminUsersData holds data for the admin user list template.
type AdminUsersData struct {
	Users      []AdminUserRow
	Total      int64
	Pagination Pagination
}

// AdminList handles GET /admin/users - a paginated list of all accounts.
func (h *UserHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)

	users, total, err := ListAndCount(
		func() ([]store.User, error) {
			return h.queries.ListUsers(r.Context(), store.ListUsersParams{
				Limit:  AdminUsersPerPage,
				Offset: offsetFor(page, AdminUsersPerPage),
			})
		},
		func() (int64, error) { return h.queries.CountUsers(r.Context()) },
	)
	if err != nil {
		logAndInternalError(w, "listing users", "error", err)
		return
	}

	roles := batchFetchRelated(r.Context(), users,
		func(u store.User) int64 { return u.RoleID },
		h.queries.GetRoleByID, "user role")

	data := AdminUsersData{
		Total:      total,
		Pagination: BuildPagination(page, total, AdminUsersPerPage, redirectAdminUsers, nil),
	}
	for _, u := range users {
		data.Users = append(data.Users, AdminUserRow{User: u, Role: roles[u.RoleID]})
	}

	if err := h.renderer.Render(w, r, "admin_users", render.TemplateData{
		Title:       "Users",
		Data:        data,
		CurrentUser: middleware.GetUser(r),
	}); err != nil {
		logAndInternalError(w, "rendering admin user list", "error", err)
	}
}

// AdminEditData holds data for the admin user editor template.
type AdminEditData struct {
	User  store.User
	Roles []store.Role
}

// AdminEditForm renders the admin user editor, which can change any
// account's email, username, role and confirmation state.
func (h *UserHandler) AdminEditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	user, err := h.queries.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.NotFound(w, r)
		} else {
			logAndInternalError(w, "looking up user", "user_id", id, "error", err)
		}
		return
	}
	roles, err := h.queries.ListRoles(r.Context())
	if err != nil {
		logAndInternalError(w, "listing roles", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "admin_edit_user", render.TemplateData{
		Title:       "Edit User " + user.Username,
		Data:        AdminEditData{User: user, Roles: roles},
		CurrentUser: middleware.GetUser(r),
	}); err != nil {
		logAndInternalError(w, "rendering admin user editor", "error", err)
	}
}

// AdminEdit handles the admin user editor submission.
func (h *UserHandler) AdminEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	user, err := h.queries.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.NotFound(w, r)
		} else {
			logAndInternalError(w, "looking up user", "user_id", id, "error", err)
		}
		return
	}

	editURL := redirectAdminUsers + "/" + strconv.FormatInt(id, 10)
	if !parseFormOrRedirect(w, r, h.renderer, editURL) {
		return
	}

	email := NormalizeEmail(r.FormValue("email"))
	username := r.FormValue("username")

	if msg := ValidateEmail(email); msg != "" {
		flashError(w, r, h.renderer, editURL, msg)
		return
	}
	if msg := ValidateUsername(username); msg != "" {
		flashError(w, r, h.renderer, editURL, msg)
		return
	}

	// The address or handle may already belong to another account.
	if other, err := h.queries.GetUserByEmail(r.Context(), email); err == nil && other.ID != id {
		flashError(w, r, h.renderer, editURL, "Email already registered")
		return
	}
	if other, err := h.queries.GetUserByUsername(r.Context(), username); err == nil && other.ID != id {
		flashError(w, r, h.renderer, editURL, "Username already in use")
		return
	}

	roleID, err := strconv.ParseInt(r.FormValue("role_id"), 10, 64)
	if err != nil {
		flashError(w, r, h.renderer, editURL, "Invalid role")
		return
	}
	if _, err := h.queries.GetRoleByID(r.Context(), roleID); err != nil {
		flashError(w, r, h.renderer, editURL, "Invalid role")
		return
	}

	var confirmed int64
	if r.FormValue("confirmed") != "" {
		confirmed = 1
	}

	avatarHash := user.AvatarHash
	if email != user.Email {
		avatarHash = auth.GravatarHash(email)
	}

	if err := h.queries.UpdateUserAdmin(r.Context(), store.UpdateUserAdminParams{
		Email:      email,
		Username:   username,
		Confirmed:  confirmed,
		RoleID:     roleID,
		Name:       strings.TrimSpace(r.FormValue("name")),
		Location:   strings.TrimSpace(r.FormValue("location")),
		AboutMe:    r.FormValue("about_me"),
		AvatarHash: avatarHash,
		ID:         id,
	}); err != nil {
		slog.Error("updating user", "user_id", id, "error", err)
		flashError(w, r, h.renderer, editURL, "Could not update the user, please try again")
		return
	}

	admin := middleware.GetUser(r)
	adminID := admin.ID()
	_ = h.eventService.LogUserEvent(r.Context(), model.EventLevelInfo, "User updated by administrator",
		&adminID, middleware.GetClientIP(r), map[string]any{"edited_user_id": id})

	flashSuccess(w, r, h.renderer, redirectAdminUsers, "The profile has been updated.")
}
