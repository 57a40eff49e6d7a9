// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// idParam parses the {id} URL parameter. Returns false when the value is
// missing or not a positive integer.
func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// pageParam parses the ?page query parameter, defaulting to 1.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// offsetFor converts a 1-based page number to a query offset.
func offsetFor(page, perPage int) int64 {
	return int64(page-1) * int64(perPage)
}

// lastPage returns the 1-based number of the final page.
func lastPage(total int64, perPage int) int {
	pages := int((total + int64(perPage) - 1) / int64(perPage))
	if pages < 1 {
		return 1
	}
	return pages
}

// ListAndCount executes list and count queries, returning combined results.
// This is a generic helper for paginated list endpoints.
func ListAndCount[T any](
	listFn func() ([]T, error),
	countFn func() (int64, error),
) ([]T, int64, error) {
	items, err := listFn()
	if err != nil {
		return nil, 0, err
	}
	total, err := countFn()
	return items, total, err
}

// batchFetchRelated fetches related entities for a list of parent entities.
// Returns a map from parent ID to the fetched related data.
func batchFetchRelated[P any, R any](
	ctx context.Context,
	items []P,
	getID func(P) int64,
	fetchFn func(ctx context.Context, id int64) (R, error),
	logContext string,
) map[int64]R {
	result := make(map[int64]R, len(items))
	for _, item := range items {
		id := getID(item)
		if _, done := result[id]; done {
			continue
		}
		related, err := fetchFn(ctx, id)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				slog.Error("failed to fetch related entity", "error", err, "context", logContext, "id", id)
			}
			continue
		}
		result[id] = related
	}
	return result
}
