package handler

import (
	"net/mail"
	"regexp"
	"strings"
)

// usernamePattern matches usernames: a letter followed by letters,
// numbers, dots or underscores.
var usernamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.]*$`)

// Field length limits. Stored columns are unbounded TEXT; these bound
// what the forms accept.
const (
	maxEmailLength    = 254
	maxUsernameLength = 64
	minPasswordLength = 8
	maxPasswordLength = 128
)

// ValidateEmail validates an email address for registration and email
// change forms. Returns an error message string if validation fails, or
// empty string if valid.
func ValidateEmail(email string) string {
	if email == "" {
		return "Email is required"
	}
	if len(email) > maxEmailLength {
		return "Email is too long"
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return "Invalid email address"
	}
	return ""
}

// ValidateUsername validates a username. Returns an error message string
// if validation fails, or empty string if valid.
func ValidateUsername(username string) string {
	if username == "" {
		return "Username is required"
	}
	if len(username) > maxUsernameLength {
		return "Username is too long"
	}
	if !usernamePattern.MatchString(username) {
		return "Usernames must start with a letter and may only contain letters, numbers, dots and underscores"
	}
	return ""
}

// ValidatePassword validates a new password. Returns an error message
// string if validation fails, or empty string if valid.
func ValidatePassword(password string) string {
	if password == "" {
		return "Password is required"
	}
	if len(password) < minPasswordLength {
		return "Password must be at least 8 characters long"
	}
	if len(password) > maxPasswordLength {
		return "Password is too long"
	}
	return ""
}

// NormalizeEmail lowercases and trims an email address for lookups and
// storage. Addresses are matched case-insensitively everywhere.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
