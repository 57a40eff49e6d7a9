// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/olegiv/oblog-go/internal/store"
)

// FollowService manages the follow graph. Edges are idempotent both ways:
// following twice and unfollowing an absent edge are no-ops. The self edge
// created at registration can never be removed.
type FollowService struct {
	queries *store.Queries
}

// NewFollowService creates a FollowService.
func NewFollowService(db *sql.DB) *FollowService {
	return &FollowService{queries: store.New(db)}
}

// Follow creates an edge from follower to followed. Following an already
// followed user is a no-op.
func (s *FollowService) Follow(ctx context.Context, followerID, followedID int64) error {
	if _, err := s.queries.GetUserByID(ctx, followedID); errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	} else if err != nil {
		return fmt.Errorf("looking up followed user: %w", err)
	}

	if err := s.queries.CreateFollow(ctx, store.CreateFollowParams{
		FollowerID: followerID,
		FollowedID: followedID,
		CreatedAt:  time.Now(),
	}); err != nil {
		return fmt.Errorf("creating follow: %w", err)
	}
	return nil
}

// Unfollow removes an edge. The self edge is kept regardless; removing an
// absent edge is a no-op.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followedID int64) error {
	if followerID == followedID {
		return ErrForbidden
	}
	if err := s.queries.DeleteFollow(ctx, store.DeleteFollowParams{
		FollowerID: followerID,
		FollowedID: followedID,
	}); err != nil {
		return fmt.Errorf("deleting follow: %w", err)
	}
	return nil
}

// IsFollowing reports whether follower has an edge to followed.
func (s *FollowService) IsFollowing(ctx context.Context, followerID, followedID int64) (bool, error) {
	_, err := s.queries.GetFollow(ctx, store.GetFollowParams{
		FollowerID: followerID,
		FollowedID: followedID,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking follow: %w", err)
	}
	return true, nil
}

// IsFollowedBy reports whether the user is followed by other.
func (s *FollowService) IsFollowedBy(ctx context.Context, userID, otherID int64) (bool, error) {
	return s.IsFollowing(ctx, otherID, userID)
}

// FollowerCount returns the number of followers excluding the self edge.
func (s *FollowService) FollowerCount(ctx context.Context, userID int64) (int64, error) {
	count, err := s.queries.CountFollowers(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("counting followers: %w", err)
	}
	return withoutSelfEdge(count), nil
}

// FollowingCount returns the number of followed users excluding the self
// edge.
func (s *FollowService) FollowingCount(ctx context.Context, userID int64) (int64, error) {
	count, err := s.queries.CountFollowing(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("counting following: %w", err)
	}
	return withoutSelfEdge(count), nil
}

// Followers returns a page of a user's followers, self excluded, most
// recent first.
func (s *FollowService) Followers(ctx context.Context, userID int64, limit, offset int64) ([]store.ListFollowersRow, error) {
	rows, err := s.queries.ListFollowers(ctx, store.ListFollowersParams{
		FollowedID: userID,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return nil, fmt.Errorf("listing followers: %w", err)
	}
	return dropSelfFollower(rows, userID), nil
}

// Following returns a page of users someone follows, self excluded, most
// recent first.
func (s *FollowService) Following(ctx context.Context, userID int64, limit, offset int64) ([]store.ListFollowingRow, error) {
	rows, err := s.queries.ListFollowing(ctx, store.ListFollowingParams{
		FollowerID: userID,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return nil, fmt.Errorf("listing following: %w", err)
	}
	return dropSelfFollowing(rows, userID), nil
}

func withoutSelfEdge(count int64) int64 {
	if count > 0 {
		return count - 1
	}
	return 0
}

func dropSelfFollower(rows []store.ListFollowersRow, userID int64) []store.ListFollowersRow {
	out := rows[:0]
	for _, r := range rows {
		if r.ID != userID {
			out = append(out, r)
		}
	}
	return out
}

func dropSelfFollowing(rows []store.ListFollowingRow, userID int64) []store.ListFollowingRow {
	out := rows[:0]
	for _, r := range rows {
		if r.ID != userID {
			out = append(out, r)
		}
	}
	return out
}
