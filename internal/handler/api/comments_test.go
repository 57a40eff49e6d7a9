package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/olegiv/oblog-go/internal/model"
	"github.com/olegiv/oblog-go/internal/service"
	"github.com/olegiv/oblog-go/internal/store"
)

func createTestComment(t *testing.T, db *sql.DB, postID, authorID int64, body string) store.Comment {
	t.Helper()
	comment, err := service.NewCommentService(db).Create(context.Background(), postID, authorID, body)
	if err != nil {
		t.Fatalf("failed to create test comment: %v", err)
	}
	return comment
}

func TestListComments(t *testing.T) {
	h, db := newTestHandler(t)
	user := createTestUser(t, db, "ron@example.com", "ron", model.RoleNameUser)
	post := createTestPost(t, db, user.ID, "a post")
	createTestComment(t, db, post.ID, user.ID, "first")
	createTestComment(t, db, post.ID, user.ID, "second")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/comments", nil)
	req = requestWithUser(t, db, req, user)
	rr := httptest.NewRecorder()

	h.ListComments(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", rr.Code, http.StatusOK)
	}

	var resp CommentListResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Count != 2 {
		t.Errorf("count = %d; want 2", resp.Count)
	}
}

func TestGetComment(t *testing.T) {
	h, db := newTestHandler(t)
	user := createTestUser(t, db, "sue@example.com", "sue", model.RoleNameUser)
	post := createTestPost(t, db, user.ID, "a post")
	comment := createTestComment(t, db, post.ID, user.ID, "well *said*")

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/comments/%d", comment.ID), nil)
	req = requestWithUser(t, db, req, user)
	req = requestWithURLParams(req, map[string]string{"id": fmt.Sprint(comment.ID)})
	rr := httptest.NewRecorder()

	h.GetComment(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", rr.Code, http.StatusOK)
	}

	var got CommentJSON
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.PostURL != fmt.Sprintf("/api/v1/posts/%d", post.ID) {
		t.Errorf("post_url = %q", got.PostURL)
	}
	if !strings.Contains(got.BodyHTML, "<em>said</em>") {
		t.Errorf("body_html = %q; want rendered markdown", got.BodyHTML)
	}
}

func TestListPostComments(t *testing.T) {
	h, db := newTestHandler(t)
	user := createTestUser(t, db, "tam@example.com", "tam", model.RoleNameUser)
	post := createTestPost(t, db, user.ID, "a post")
	otherPost := createTestPost(t, db, user.ID, "another post")
	createTestComment(t, db, post.ID, user.ID, "on the post")
	createTestComment(t, db, otherPost.ID, user.ID, "elsewhere")

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/posts/%d/comments", post.ID), nil)
	req = requestWithUser(t, db, req, user)
	req = requestWithURLParams(req, map[string]string{"id": fmt.Sprint(post.ID)})
	rr := httptest.NewRecorder()

	h.ListPostComments(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", rr.Code, http.StatusOK)
	}

	var resp CommentListResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Count != 1 || len(resp.Comments) != 1 {
		t.Fatalf("count = %d, comments = %d; want 1 and 1", resp.Count, len(resp.Comments))
	}
	if resp.Comments[0].Body != "on the post" {
		t.Errorf("comments[0].Body = %q", resp.Comments[0].Body)
	}
}

func TestCreatePostComment(t *testing.T) {
	h, db := newTestHandler(t)
	user := createTestUser(t, db, "una@example.com", "una", model.RoleNameUser)
	post := createTestPost(t, db, user.ID, "a post")

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/posts/%d/comments", post.ID),
		strings.NewReader(`{"body":"A thoughtful reply"}`))
	req = requestWithUser(t, db, req, user)
	req = requestWithURLParams(req, map[string]string{"id": fmt.Sprint(post.ID)})
	rr := httptest.NewRecorder()

	h.CreatePostComment(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d; want %d", rr.Code, http.StatusCreated)
	}

	var got CommentJSON
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if rr.Header().Get("Location") != got.URL {
		t.Errorf("Location = %q; want %q", rr.Header().Get("Location"), got.URL)
	}
}

func TestCreatePostComment_UnknownPost(t *testing.T) {
	h, db := newTestHandler(t)
	user := createTestUser(t, db, "vic@example.com", "vic", model.RoleNameUser)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/posts/9999/comments",
		strings.NewReader(`{"body":"hello"}`))
	req = requestWithUser(t, db, req, user)
	req = requestWithURLParams(req, map[string]string{"id": "9999"})
	rr := httptest.NewRecorder()

	h.CreatePostComment(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d; want %d", rr.Code, http.StatusNotFound)
	}
}
