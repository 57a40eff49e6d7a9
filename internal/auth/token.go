// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token purposes. A token minted for one purpose never verifies for
// another.
const (
	TokenPurposeConfirm     = "confirm"
	TokenPurposeReset       = "reset"
	TokenPurposeChangeEmail = "change_email"
	TokenPurposeAPI         = "api"
)

// TokenIssuer mints and verifies signed, expiring account tokens
// (HMAC-SHA256). Each token carries the subject user ID, a purpose claim,
// and standard exp/iat timestamps.
type TokenIssuer struct {
	secret []byte
	expiry time.Duration
}

// NewTokenIssuer creates a token issuer with the given signing secret and
// default validity window.
func NewTokenIssuer(secret string, expiry time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), expiry: expiry}
}

// GenerateConfirm mints an account confirmation token for a user.
func (ti *TokenIssuer) GenerateConfirm(userID int64) (string, error) {
	return ti.sign(jwt.MapClaims{"user_id": userID}, TokenPurposeConfirm, ti.expiry)
}

// GenerateReset mints a password reset token for a user.
func (ti *TokenIssuer) GenerateReset(userID int64) (string, error) {
	return ti.sign(jwt.MapClaims{"user_id": userID}, TokenPurposeReset, ti.expiry)
}

// GenerateChangeEmail mints an email change token binding the user to the
// pending new address.
func (ti *TokenIssuer) GenerateChangeEmail(userID int64, newEmail string) (string, error) {
	return ti.sign(jwt.MapClaims{"user_id": userID, "new_email": newEmail}, TokenPurposeChangeEmail, ti.expiry)
}

// GenerateAPI mints an API access token with an explicit validity window.
func (ti *TokenIssuer) GenerateAPI(userID int64, expiresIn time.Duration) (string, error) {
	return ti.sign(jwt.MapClaims{"user_id": userID}, TokenPurposeAPI, expiresIn)
}

func (ti *TokenIssuer) sign(claims jwt.MapClaims, purpose string, expiresIn time.Duration) (string, error) {
	now := time.Now()
	claims["purpose"] = purpose
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(expiresIn).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(ti.secret)
	if err != nil {
		return "", fmt.Errorf("signing %s token: %w", purpose, err)
	}
	return tokenString, nil
}

// VerifyConfirm validates a confirmation token and returns the subject
// user ID.
func (ti *TokenIssuer) VerifyConfirm(tokenString string) (int64, error) {
	claims, err := ti.parse(tokenString, TokenPurposeConfirm)
	if err != nil {
		return 0, err
	}
	return claimUserID(claims)
}

// VerifyReset validates a password reset token and returns the subject
// user ID.
func (ti *TokenIssuer) VerifyReset(tokenString string) (int64, error) {
	claims, err := ti.parse(tokenString, TokenPurposeReset)
	if err != nil {
		return 0, err
	}
	return claimUserID(claims)
}

// VerifyChangeEmail validates an email change token and returns the
// subject user ID and the pending new address.
func (ti *TokenIssuer) VerifyChangeEmail(tokenString string) (int64, string, error) {
	claims, err := ti.parse(tokenString, TokenPurposeChangeEmail)
	if err != nil {
		return 0, "", err
	}
	userID, err := claimUserID(claims)
	if err != nil {
		return 0, "", err
	}
	newEmail, ok := claims["new_email"].(string)
	if !ok || newEmail == "" {
		return 0, "", fmt.Errorf("new_email not found in token")
	}
	return userID, newEmail, nil
}

// VerifyAPI validates an API access token and returns the subject user ID.
func (ti *TokenIssuer) VerifyAPI(tokenString string) (int64, error) {
	claims, err := ti.parse(tokenString, TokenPurposeAPI)
	if err != nil {
		return 0, err
	}
	return claimUserID(claims)
}

func (ti *TokenIssuer) parse(tokenString, purpose string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ti.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	got, ok := claims["purpose"].(string)
	if !ok || got != purpose {
		return nil, fmt.Errorf("token is not a %s token", purpose)
	}
	return claims, nil
}

// JWT claims decode numbers as float64.
func claimUserID(claims jwt.MapClaims) (int64, error) {
	id, ok := claims["user_id"].(float64)
	if !ok {
		return 0, fmt.Errorf("user_id not found in token")
	}
	return int64(id), nil
}
