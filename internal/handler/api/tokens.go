// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"log/slog"
	"net/http"

	"github.com/olegiv/oblog-go/internal/middleware"
)

// TokenResponse carries a freshly minted API token and its validity in
// seconds.
type TokenResponse struct {
	Token      string `json:"token"`
	Expiration int64  `json:"expiration"`
}

// CreateToken handles POST /api/v1/tokens. Only credential-authenticated
// requests may mint tokens: a request that already carries a token is
// refused, so a leaked token cannot be used to keep itself alive.
func (h *Handler) CreateToken(w http.ResponseWriter, r *http.Request) {
	if middleware.IsTokenAuth(r) {
		WriteUnauthorized(w, "Cannot request a token with a token")
		return
	}

	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Authentication required")
		return
	}

	token, err := h.tokens.GenerateAPI(user.ID(), h.tokenExpiry)
	if err != nil {
		slog.Error("minting API token", "user_id", user.ID(), "error", err)
		WriteInternalError(w, "Failed to create token")
		return
	}

	WriteJSON(w, http.StatusOK, TokenResponse{
		Token:      token,
		Expiration: int64(h.tokenExpiry.Seconds()),
	})
}
