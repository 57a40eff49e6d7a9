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

// CommentService manages comments and their moderation state. Disabled
// comments stay stored; presentation layers decide whether to show a
// placeholder or the body.
type CommentService struct {
	queries *store.Queries
}

// NewCommentService creates a CommentService.
func NewCommentService(db *sql.DB) *CommentService {
	return &CommentService{queries: store.New(db)}
}

// Create renders the body with the inline-only policy and stores a new
// comment on a post.
func (s *CommentService) Create(ctx context.Context, postID, authorID int64, body string) (store.Comment, error) {
	if _, err := s.queries.GetPostByID(ctx, postID); errors.Is(err, sql.ErrNoRows) {
		return store.Comment{}, ErrNotFound
	} else if err != nil {
		return store.Comment{}, fmt.Errorf("looking up post: %w", err)
	}

	html, err := markdown.RenderComment(body)
	if err != nil {
		return store.Comment{}, fmt.Errorf("rendering comment: %w", err)
	}

	comment, err := s.queries.CreateComment(ctx, store.CreateCommentParams{
		PostID:    postID,
		AuthorID:  authorID,
		Body:      body,
		BodyHtml:  html,
		Disabled:  0,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return store.Comment{}, fmt.Errorf("creating comment: %w", err)
	}
	return comment, nil
}

// Get returns one comment.
func (s *CommentService) Get(ctx context.Context, commentID int64) (store.Comment, error) {
	comment, err := s.queries.GetCommentByID(ctx, commentID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Comment{}, ErrNotFound
	}
	if err != nil {
		return store.Comment{}, fmt.Errorf("looking up comment: %w", err)
	}
	return comment, nil
}

// SetDisabled changes a comment's moderation state.
func (s *CommentService) SetDisabled(ctx context.Context, commentID int64, disabled bool) error {
	var flag int64
	if disabled {
		flag = 1
	}
	if err := s.queries.SetCommentDisabled(ctx, store.SetCommentDisabledParams{
		Disabled: flag,
		ID:       commentID,
	}); err != nil {
		return fmt.Errorf("setting comment state: %w", err)
	}
	return nil
}

// ListByPost returns a page of a post's comments, oldest first, with the
// total count.
func (s *CommentService) ListByPost(ctx context.Context, postID, limit, offset int64) ([]store.Comment, int64, error) {
	comments, err := s.queries.ListCommentsByPost(ctx, store.ListCommentsByPostParams{
		PostID: postID,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("listing comments: %w", err)
	}
	total, err := s.queries.CountCommentsByPost(ctx, postID)
	if err != nil {
		return nil, 0, fmt.Errorf("counting comments: %w", err)
	}
	return comments, total, nil
}

// ListAll returns a page of all comments, newest first, for moderation.
func (s *CommentService) ListAll(ctx context.Context, limit, offset int64) ([]store.Comment, int64, error) {
	comments, err := s.queries.ListComments(ctx, store.ListCommentsParams{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("listing comments: %w", err)
	}
	total, err := s.queries.CountComments(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("counting comments: %w", err)
	}
	return comments, total, nil
}
