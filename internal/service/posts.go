// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/olegiv/oblog-go/internal/markdown"
	"github.com/olegiv/oblog-go/internal/store"
)

// PostService manages posts. The stored HTML is always derived from the
// Markdown body at write time; the two never diverge.
type PostService struct {
	queries *store.Queries
}

// NewPostService creates a PostService.
func NewPostService(db *sql.DB) *PostService {
	return &PostService{queries: store.New(db)}
}

// Create renders the body and stores a new post.
func (s *PostService) Create(ctx context.Context, authorID int64, body string) (store.Post, error) {
	html, err := markdown.RenderPost(body)
	if err != nil {
		return store.Post{}, fmt.Errorf("rendering post: %w", err)
	}

	now := time.Now()
	post, err := s.queries.CreatePost(ctx, store.CreatePostParams{
		AuthorID:  authorID,
		Body:      body,
		BodyHtml:  html,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return store.Post{}, fmt.Errorf("creating post: %w", err)
	}
	return post, nil
}

// Update replaces the body and the derived HTML together.
func (s *PostService) Update(ctx context.Context, postID int64, body string) error {
	html, err := markdown.RenderPost(body)
	if err != nil {
		return fmt.Errorf("rendering post: %w", err)
	}
	if err := s.queries.UpdatePostBody(ctx, store.UpdatePostBodyParams{
		Body:      body,
		BodyHtml:  html,
		UpdatedAt: time.Now(),
		ID:        postID,
	}); err != nil {
		return fmt.Errorf("updating post: %w", err)
	}
	return nil
}

// Get returns one post.
func (s *PostService) Get(ctx context.Context, postID int64) (store.Post, error) {
	post, err := s.queries.GetPostByID(ctx, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Post{}, ErrNotFound
	}
	if err != nil {
		return store.Post{}, fmt.Errorf("looking up post: %w", err)
	}
	return post, nil
}

// Delete removes a post and its comments.
func (s *PostService) Delete(ctx context.Context, postID int64) error {
	if err := s.queries.DeletePost(ctx, postID); err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}
	return nil
}

// List returns a page of all posts, newest first, with the total count.
func (s *PostService) List(ctx context.Context, limit, offset int64) ([]store.Post, int64, error) {
	posts, err := s.queries.ListPosts(ctx, store.ListPostsParams{Limit: limit, Offset: offset})
	if err != nil {
		return nil, 0, fmt.Errorf("listing posts: %w", err)
	}
	total, err := s.queries.CountPosts(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("counting posts: %w", err)
	}
	return posts, total, nil
}

// ListByAuthor returns a page of one author's posts, newest first.
func (s *PostService) ListByAuthor(ctx context.Context, authorID, limit, offset int64) ([]store.Post, int64, error) {
	posts, err := s.queries.ListPostsByAuthor(ctx, store.ListPostsByAuthorParams{
		AuthorID: authorID,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("listing posts by author: %w", err)
	}
	total, err := s.queries.CountPostsByAuthor(ctx, authorID)
	if err != nil {
		return nil, 0, fmt.Errorf("counting posts by author: %w", err)
	}
	return posts, total, nil
}

// ListFollowed returns a page of posts authored by users the viewer
// follows. The self edge keeps the viewer's own posts in the feed.
func (s *PostService) ListFollowed(ctx context.Context, viewerID, limit, offset int64) ([]store.Post, int64, error) {
	posts, err := s.queries.ListFollowedPosts(ctx, store.ListFollowedPostsParams{
		FollowerID: viewerID,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("listing followed posts: %w", err)
	}
	total, err := s.queries.CountFollowedPosts(ctx, viewerID)
	if err != nil {
		return nil, 0, fmt.Errorf("counting followed posts: %w", err)
	}
	return posts, total, nil
}
