// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
)

// GravatarHash derives the Gravatar identifier for an email address:
// the hex MD5 of the trimmed, lowercased address. The result is stored on
// the user row and refreshed whenever the email changes, so profile pages
// never hash on the request path.
func GravatarHash(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])
}

// GravatarURL builds an avatar URL for a stored hash.
// Size is in pixels; default and rating follow the Gravatar API.
func GravatarURL(hash string, size int) string {
	if size <= 0 {
		size = 80
	}
	return fmt.Sprintf("https://secure.gravatar.com/avatar/%s?s=%d&d=identicon&r=g", hash, size)
}
