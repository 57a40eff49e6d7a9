// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"github.com/olegiv/oblog-go/internal/auth"
	"github.com/olegiv/oblog-go/internal/model"
	"github.com/olegiv/oblog-go/internal/store"
)

// ContextKeyTokenAuth marks requests authenticated by an API token rather
// than Basic credentials. Token issuance refuses these so a stolen token
// cannot be used to mint fresh ones.
const ContextKeyTokenAuth ContextKey = "token_auth"

// APIError represents a JSON error response for the API.
type APIError struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// WriteAPIError writes a JSON error response.
func WriteAPIError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	apiErr := APIError{}
	apiErr.Error.Code = code
	apiErr.Error.Message = message
	apiErr.Error.Details = details

	_ = json.NewEncoder(w).Encode(apiErr)
}

// APIAuth creates middleware that authenticates API requests. Clients
// send either "Authorization: Bearer <token>" with a token from the
// token endpoint, or HTTP Basic credentials (email and password). The
// resolved principal is stored in context under ContextKeyUser, same as
// the web session middleware, so permission checks work identically.
// Unconfirmed accounts are rejected.
func APIAuth(db *sql.DB, tokens *auth.TokenIssuer) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Missing Authorization header", nil)
				return
			}

			var (
				user      store.User
				tokenAuth bool
				err       error
			)

			switch {
			case strings.HasPrefix(strings.ToLower(authHeader), "bearer "):
				rawToken := strings.TrimSpace(authHeader[len("bearer "):])
				var userID int64
				userID, err = tokens.VerifyAPI(rawToken)
				if err != nil {
					WriteAPIError(w, http.StatusUnauthorized, "invalid_token", "Invalid or expired token", nil)
					return
				}
				user, err = queries.GetUserByID(r.Context(), userID)
				if err != nil {
					WriteAPIError(w, http.StatusUnauthorized, "invalid_token", "Invalid or expired token", nil)
					return
				}
				tokenAuth = true

			case strings.HasPrefix(strings.ToLower(authHeader), "basic "):
				email, password, ok := r.BasicAuth()
				if !ok {
					WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Malformed Basic credentials", nil)
					return
				}
				user, err = queries.GetUserByEmail(r.Context(), strings.ToLower(strings.TrimSpace(email)))
				if err != nil {
					WriteAPIError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password", nil)
					return
				}
				ok, checkErr := auth.CheckPassword(password, user.PasswordHash)
				if checkErr != nil || !ok {
					WriteAPIError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password", nil)
					return
				}

			default:
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid Authorization header format. Use: Bearer <token> or Basic credentials", nil)
				return
			}

			if user.Confirmed != 1 {
				WriteAPIError(w, http.StatusForbidden, "unconfirmed", "Account is not confirmed", nil)
				return
			}

			role, err := queries.GetRoleByID(r.Context(), user.RoleID)
			if err != nil {
				slog.Error("loading role for API request", "user_id", user.ID, "error", err)
				WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to authenticate request", nil)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, &model.CurrentUser{User: user, Role: role})
			ctx = context.WithValue(ctx, ContextKeyTokenAuth, tokenAuth)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IsTokenAuth reports whether the request was authenticated with an API
// token (as opposed to Basic credentials).
func IsTokenAuth(r *http.Request) bool {
	tokenAuth, ok := r.Context().Value(ContextKeyTokenAuth).(bool)
	return ok && tokenAuth
}

// APIRequirePermission creates middleware that requires every bit of p,
// returning a JSON error envelope instead of a redirect. Use after
// APIAuth.
func APIRequirePermission(p model.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r)
			if user == nil {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
				return
			}

			if !user.Can(p) {
				WriteAPIError(w, http.StatusForbidden, "forbidden", "Insufficient permissions", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// limiterCache is a generic rate limiter cache with double-check locking.
type limiterCache[K comparable] struct {
	limiters map[K]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
}

// newLimiterCache creates a new limiter cache.
func newLimiterCache[K comparable](rps float64, burst int) *limiterCache[K] {
	return &limiterCache[K]{
		limiters: make(map[K]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
}

// get returns the rate limiter for a specific key, creating one if needed.
func (lc *limiterCache[K]) get(key K) *rate.Limiter {
	lc.mu.RLock()
	limiter, exists := lc.limiters[key]
	lc.mu.RUnlock()

	if exists {
		return limiter
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists = lc.limiters[key]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(lc.rate, lc.burst)
	lc.limiters[key] = limiter
	return limiter
}

// clearIfExceeds clears all entries if the cache exceeds maxSize.
// Returns true if the cache was cleared.
func (lc *limiterCache[K]) clearIfExceeds(maxSize int) bool {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if len(lc.limiters) > maxSize {
		lc.limiters = make(map[K]*rate.Limiter)
		return true
	}
	return false
}

// APIRateLimit creates middleware that rate limits requests per
// authenticated user. rps is requests per second, burst is the maximum
// burst size. Use after APIAuth.
func APIRateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	cache := newLimiterCache[int64](rps, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r)
			if user == nil {
				next.ServeHTTP(w, r)
				return
			}

			if !cache.get(user.ID()).Allow() {
				WriteAPIError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "Rate limit exceeded. Please slow down.", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GlobalRateLimiter provides a per-IP rate limiter for unauthenticated requests.
type GlobalRateLimiter struct {
	cache *limiterCache[string]
}

// NewGlobalRateLimiter creates a new global rate limiter.
func NewGlobalRateLimiter(rps float64, burst int) *GlobalRateLimiter {
	return &GlobalRateLimiter{
		cache: newLimiterCache[string](rps, burst),
	}
}

// Middleware returns the rate limiting middleware for API routes (returns JSON errors).
func (rl *GlobalRateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := GetClientIP(r)
			if !rl.cache.get(ip).Allow() {
				WriteAPIError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "Rate limit exceeded. Please slow down.", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// HTMLMiddleware returns the rate limiting middleware for public routes (returns plain text errors).
// This is suitable for login and other public HTML form endpoints.
func (rl *GlobalRateLimiter) HTMLMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := GetClientIP(r)
			if !rl.cache.get(ip).Allow() {
				slog.Warn("public rate limit exceeded", "ip", ip, "path", r.URL.Path)
				http.Error(w, "Too many requests. Please wait a moment and try again.", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
