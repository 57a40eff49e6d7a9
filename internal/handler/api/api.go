// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the JSON API mirror of the web frontend: posts,
// comments, user profiles and timelines, and API token issuance. Routes
// are mounted under /api/v1 behind the API authentication middleware.
package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/oblog-go/internal/auth"
	"github.com/olegiv/oblog-go/internal/service"
	"github.com/olegiv/oblog-go/internal/store"
)

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	queries     *store.Queries
	posts       *service.PostService
	comments    *service.CommentService
	tokens      *auth.TokenIssuer
	tokenExpiry time.Duration
	perPage     int
}

// NewHandler creates a new API handler. perPage bounds every list
// endpoint; tokenExpiry is the validity window of minted API tokens.
func NewHandler(db *sql.DB, tokens *auth.TokenIssuer, tokenExpiry time.Duration, perPage int) *Handler {
	return &Handler{
		queries:     store.New(db),
		posts:       service.NewPostService(db),
		comments:    service.NewCommentService(db),
		tokens:      tokens,
		tokenExpiry: tokenExpiry,
		perPage:     perPage,
	}
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, details)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message, nil)
}

// WriteUnauthorized writes a 401 Unauthorized response.
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", message, nil)
}

// WriteForbidden writes a 403 Forbidden response.
func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, "forbidden", message, nil)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message, nil)
}

// WriteValidationError writes a 422 Unprocessable Entity response with field errors.
func WriteValidationError(w http.ResponseWriter, fieldErrors map[string]string) {
	WriteError(w, http.StatusUnprocessableEntity, "validation_error", "Validation failed", fieldErrors)
}

// StatusResponse contains API status information.
type StatusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Status returns the API status.
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, StatusResponse{
		Status:  "ok",
		Version: "v1",
	})
}

// Canonical resource URLs embedded in API representations.
func postURL(id int64) string         { return fmt.Sprintf("/api/v1/posts/%d", id) }
func postCommentsURL(id int64) string { return fmt.Sprintf("/api/v1/posts/%d/comments", id) }
func userURL(id int64) string         { return fmt.Sprintf("/api/v1/users/%d", id) }
func commentURL(id int64) string      { return fmt.Sprintf("/api/v1/comments/%d", id) }

// EntityFetcher is a function that fetches an entity by ID.
type EntityFetcher[T any] func(id int64) (T, error)

// requireEntityByID parses the {id} URL parameter and fetches the entity.
// Returns the entity and true, or writes the error response and returns
// false. The entityName is used in error messages.
func requireEntityByID[T any](w http.ResponseWriter, r *http.Request, entityName string, fetch EntityFetcher[T]) (T, bool) {
	var zero T

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		WriteBadRequest(w, "Invalid "+entityName+" ID", nil)
		return zero, false
	}

	entity, err := fetch(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, service.ErrNotFound) {
			WriteNotFound(w, entityName+" not found")
		} else {
			WriteInternalError(w, "Failed to retrieve "+entityName)
		}
		return zero, false
	}

	return entity, true
}

// pageParam parses the ?page query parameter, defaulting to 1.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// prevNextURLs builds the prev and next links of a list envelope. Either
// is nil when the corresponding page does not exist.
func prevNextURLs(baseURL string, page int, total int64, perPage int) (prev, next *string) {
	if page > 1 {
		u := fmt.Sprintf("%s?page=%d", baseURL, page-1)
		prev = &u
	}
	if int64(page)*int64(perPage) < total {
		u := fmt.Sprintf("%s?page=%d", baseURL, page+1)
		next = &u
	}
	return prev, next
}
