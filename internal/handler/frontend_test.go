package handler

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/oblog-go/internal/model"
	"github.com/olegiv/oblog-go/internal/service"
	"github.com/olegiv/oblog-go/internal/store"
)

func newFrontendHandler(t *testing.T) (*FrontendHandler, *scs.SessionManager, *sql.DB) {
	t.Helper()
	db := testDB(t)
	sm := testSessionManager(t)
	h := NewFrontendHandler(db, testRenderer(t, sm), sm, 20, 30)
	return h, sm, db
}

func createTestPost(t *testing.T, db *sql.DB, authorID int64, body string) store.Post {
	t.Helper()
	post, err := service.NewPostService(db).Create(context.Background(), authorID, body)
	if err != nil {
		t.Fatalf("failed to create test post: %v", err)
	}
	return post
}

func TestIndex(t *testing.T) {
	h, sm, db := newFrontendHandler(t)
	user := createTestUser(t, db, "meg@example.com", "meg", model.RoleNameUser, 1)
	createTestPost(t, db, user.ID, "Hello, *world*!")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = requestWithSession(t, sm, req)
	rr := httptest.NewRecorder()

	h.Index(rr, req)
	assertStatus(t, rr.Code, http.StatusOK)
}

func TestIndex_FollowedFeed(t *testing.T) {
	h, sm, db := newFrontendHandler(t)
	user := createTestUser(t, db, "ned@example.com", "ned", model.RoleNameUser, 1)
	createTestPost(t, db, user.ID, "a post")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: feedCookieName, Value: "1"})
	req = requestWithSession(t, sm, req)
	req = requestWithUser(req, principalFor(t, db, user))
	rr := httptest.NewRecorder()

	h.Index(rr, req)
	assertStatus(t, rr.Code, http.StatusOK)
}

func TestShowFollowed_SetsCookie(t *testing.T) {
	h, sm, db := newFrontendHandler(t)
	user := createTestUser(t, db, "oda@example.com", "oda", model.RoleNameUser, 1)

	req := httptest.NewRequest(http.MethodPost, "/followed", nil)
	req = requestWithSession(t, sm, req)
	req = requestWithUser(req, principalFor(t, db, user))
	rr := httptest.NewRecorder()

	h.ShowFollowed(rr, req)
	assertRedirect(t, rr, redirectRoot)

	var cookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == feedCookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("feed cookie not set")
	}
	if cookie.Value != "1" {
		t.Errorf("cookie value = %q; want %q", cookie.Value, "1")
	}
	if !cookie.HttpOnly {
		t.Error("feed cookie is not HttpOnly")
	}
}

func TestShowFollowed_RequiresLogin(t *testing.T) {
	h, sm, _ := newFrontendHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/followed", nil)
	req = requestWithSession(t, sm, req)
	rr := httptest.NewRecorder()

	h.ShowFollowed(rr, req)
	assertRedirect(t, rr, redirectLogin)
}

func TestShowAll_SetsCookie(t *testing.T) {
	h, sm, _ := newFrontendHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/all", nil)
	req = requestWithSession(t, sm, req)
	rr := httptest.NewRecorder()

	h.ShowAll(rr, req)
	assertRedirect(t, rr, redirectRoot)

	for _, c := range rr.Result().Cookies() {
		if c.Name == feedCookieName && c.Value == "0" {
			return
		}
	}
	t.Error("feed cookie not reset to 0")
}

func TestPostPage(t *testing.T) {
	h, sm, db := newFrontendHandler(t)
	user := createTestUser(t, db, "pam@example.com", "pam", model.RoleNameUser, 1)
	post := createTestPost(t, db, user.ID, "body")

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/post/%d", post.ID), nil)
	req = requestWithSession(t, sm, req)
	req = requestWithURLParams(req, map[string]string{"id": fmt.Sprint(post.ID)})
	rr := httptest.NewRecorder()

	h.PostPage(rr, req)
	assertStatus(t, rr.Code, http.StatusOK)
}

func TestPostPage_NotFound(t *testing.T) {
	h, sm, _ := newFrontendHandler(t)

	tests := []struct {
		name string
		id   string
	}{
		{"missing post", "9999"},
		{"malformed id", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/post/"+tt.id, nil)
			req = requestWithSession(t, sm, req)
			req = requestWithURLParams(req, map[string]string{"id": tt.id})
			rr := httptest.NewRecorder()

			h.PostPage(rr, req)
			assertStatus(t, rr.Code, http.StatusNotFound)
		})
	}
}

func TestCreateComment(t *testing.T) {
	h, sm, db := newFrontendHandler(t)
	author := createTestUser(t, db, "quin@example.com", "quin", model.RoleNameUser, 1)
	post := createTestPost(t, db, author.ID, "body")

	req, rr := postForm(t, sm, fmt.Sprintf("/post/%d/comments", post.ID), url.Values{
		"body": {"Nice *post*."},
	})
	req = requestWithURLParams(req, map[string]string{"id": fmt.Sprint(post.ID)})
	req = requestWithUser(req, principalFor(t, db, author))

	h.CreateComment(rr, req)
	assertRedirect(t, rr, fmt.Sprintf(redirectPostID, post.ID)+"?page=-1")

	comments, total, err := h.comments.ListByPost(req.Context(), post.ID, 10, 0)
	if err != nil {
		t.Fatalf("ListByPost: %v", err)
	}
	if total != 1 || len(comments) != 1 {
		t.Fatalf("comment count = %d; want 1", total)
	}
	if comments[0].BodyHtml == "" {
		t.Error("comment body was not rendered to HTML")
	}
}

func TestCreateComment_Empty(t *testing.T) {
	h, sm, db := newFrontendHandler(t)
	author := createTestUser(t, db, "rob@example.com", "rob", model.RoleNameUser, 1)
	post := createTestPost(t, db, author.ID, "body")

	req, rr := postForm(t, sm, fmt.Sprintf("/post/%d/comments", post.ID), url.Values{
		"body": {"   "},
	})
	req = requestWithURLParams(req, map[string]string{"id": fmt.Sprint(post.ID)})
	req = requestWithUser(req, principalFor(t, db, author))

	h.CreateComment(rr, req)
	assertRedirect(t, rr, fmt.Sprintf(redirectPostID, post.ID))
}

func TestWrite(t *testing.T) {
	h, sm, db := newFrontendHandler(t)
	user := createTestUser(t, db, "sam@example.com", "sam", model.RoleNameUser, 1)

	req, rr := postForm(t, sm, "/write", url.Values{
		"body": {"# My first post"},
	})
	req = requestWithUser(req, principalFor(t, db, user))

	h.Write(rr, req)

	posts, total, err := h.posts.ListByAuthor(req.Context(), user.ID, 10, 0)
	if err != nil {
		t.Fatalf("ListByAuthor: %v", err)
	}
	if total != 1 {
		t.Fatalf("post count = %d; want 1", total)
	}
	assertRedirect(t, rr, fmt.Sprintf(redirectPostID, posts[0].ID))
	if posts[0].BodyHtml == "" {
		t.Error("post body was not rendered to HTML")
	}
}

func TestEdit_Permissions(t *testing.T) {
	h, sm, db := newFrontendHandler(t)
	author := createTestUser(t, db, "tia@example.com", "tia", model.RoleNameUser, 1)
	other := createTestUser(t, db, "ugo@example.com", "ugo", model.RoleNameUser, 1)
	admin := createTestUser(t, db, "val@example.com", "val", model.RoleNameAdministrator, 1)
	post := createTestPost(t, db, author.ID, "original")

	edit := func(t *testing.T, asUser store.User, body string) *httptest.ResponseRecorder {
		t.Helper()
		req, rr := postForm(t, sm, fmt.Sprintf("/edit/%d", post.ID), url.Values{"body": {body}})
		req = requestWithURLParams(req, map[string]string{"id": fmt.Sprint(post.ID)})
		req = requestWithUser(req, principalFor(t, db, asUser))
		h.Edit(rr, req)
		return rr
	}

	t.Run("author may edit", func(t *testing.T) {
		rr := edit(t, author, "edited by author")
		assertRedirect(t, rr, fmt.Sprintf(redirectPostID, post.ID))
	})

	t.Run("other user is forbidden", func(t *testing.T) {
		rr := edit(t, other, "edited by other")
		assertStatus(t, rr.Code, http.StatusForbidden)
	})

	t.Run("administrator may edit", func(t *testing.T) {
		rr := edit(t, admin, "edited by admin")
		assertRedirect(t, rr, fmt.Sprintf(redirectPostID, post.ID))
	})

	updated, err := h.posts.Get(context.Background(), post.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if updated.Body != "edited by admin" {
		t.Errorf("post body = %q; want %q", updated.Body, "edited by admin")
	}
}

func TestDeletePost(t *testing.T) {
	h, sm, db := newFrontendHandler(t)
	author := createTestUser(t, db, "wes@example.com", "wes", model.RoleNameUser, 1)
	other := createTestUser(t, db, "xan@example.com", "xan", model.RoleNameUser, 1)
	post := createTestPost(t, db, author.ID, "doomed")

	del := func(t *testing.T, asUser store.User) *httptest.ResponseRecorder {
		t.Helper()
		req, rr := postForm(t, sm, fmt.Sprintf("/post/%d/delete", post.ID), nil)
		req = requestWithURLParams(req, map[string]string{"id": fmt.Sprint(post.ID)})
		req = requestWithUser(req, principalFor(t, db, asUser))
		h.DeletePost(rr, req)
		return rr
	}

	t.Run("other user is forbidden", func(t *testing.T) {
		rr := del(t, other)
		assertStatus(t, rr.Code, http.StatusForbidden)
	})

	t.Run("author may delete", func(t *testing.T) {
		rr := del(t, author)
		assertRedirect(t, rr, redirectRoot)

		if _, err := h.posts.Get(context.Background(), post.ID); err == nil {
			t.Error("post still exists after delete")
		}
	})
}

func TestCanEditPost(t *testing.T) {
	post := store.Post{ID: 1, AuthorID: 7}

	adminRole := store.Role{Permissions: int64(model.PermissionAdminister)}
	userRole := store.Role{Permissions: int64(model.PermissionFollow | model.PermissionComment | model.PermissionWriteArticles)}

	tests := []struct {
		name string
		user *model.CurrentUser
		want bool
	}{
		{"anonymous", nil, false},
		{"author", &model.CurrentUser{User: store.User{ID: 7}, Role: userRole}, true},
		{"other user", &model.CurrentUser{User: store.User{ID: 8}, Role: userRole}, false},
		{"administrator", &model.CurrentUser{User: store.User{ID: 8}, Role: adminRole}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := canEditPost(tt.user, post); got != tt.want {
				t.Errorf("canEditPost() = %v; want %v", got, tt.want)
			}
		})
	}
}
