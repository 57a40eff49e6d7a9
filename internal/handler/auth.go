// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides HTTP handlers for the web frontend: account
// lifecycle, the post feeds, profiles and the follow graph, comment
// moderation, and the admin screens.
package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/olegiv/oblog-go/internal/middleware"
	"github.com/olegiv/oblog-go/internal/model"
	"github.com/olegiv/oblog-go/internal/render"
	"github.com/olegiv/oblog-go/internal/service"
)

// AuthHandler handles authentication routes.
type AuthHandler struct {
	users           *service.UserService
	renderer        *render.Renderer
	sessionManager  *scs.SessionManager
	eventService    *service.EventService
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *sql.DB, users *service.UserService, renderer *render.Renderer, sm *scs.SessionManager, lp *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{
		users:           users,
		renderer:        renderer,
		sessionManager:  sm,
		eventService:    service.NewEventService(db),
		loginProtection: lp,
	}
}

// RegisterForm renders the registration page.
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	if middleware.GetUser(r) != nil {
		http.Redirect(w, r, redirectRoot, http.StatusSeeOther)
		return
	}
	if err := h.renderer.Render(w, r, "auth/register", render.TemplateData{Title: "Register"}); err != nil {
		logAndInternalError(w, "rendering register page", "error", err)
	}
}

// Register handles the registration form submission. New accounts start
// unconfirmed; a confirmation link is mailed before the redirect.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectRegister) {
		return
	}

	email := NormalizeEmail(r.FormValue("email"))
	username := r.FormValue("username")
	password := r.FormValue("password")
	password2 := r.FormValue("password2")

	if msg := ValidateEmail(email); msg != "" {
		flashError(w, r, h.renderer, redirectRegister, msg)
		return
	}
	if msg := ValidateUsername(username); msg != "" {
		flashError(w, r, h.renderer, redirectRegister, msg)
		return
	}
	if msg := ValidatePassword(password); msg != "" {
		flashError(w, r, h.renderer, redirectRegister, msg)
		return
	}
	if password != password2 {
		flashError(w, r, h.renderer, redirectRegister, "Passwords must match")
		return
	}

	user, err := h.users.Register(r.Context(), email, username, password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			flashError(w, r, h.renderer, redirectRegister, "Email already registered")
		case errors.Is(err, service.ErrUsernameTaken):
			flashError(w, r, h.renderer, redirectRegister, "Username already in use")
		default:
			slog.Error("registration failed", "email", email, "error", err)
			flashError(w, r, h.renderer, redirectRegister, "Registration failed, please try again")
		}
		return
	}

	slog.Info("user registered", "user_id", user.ID, "username", user.Username)
	_ = h.eventService.LogUserEvent(r.Context(), model.EventLevelInfo, "User registered",
		&user.ID, middleware.GetClientIP(r), map[string]any{"username": user.Username})

	flashAndRedirect(w, r, h.renderer, redirectLogin,
		"A confirmation email has been sent to you by email.", "info")
}

// LoginForm renders the login page. Already-authenticated users are sent
// to the homepage.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if h.sessionManager.GetInt64(r.Context(), middleware.SessionKeyUserID) > 0 {
		http.Redirect(w, r, redirectRoot, http.StatusSeeOther)
		return
	}
	if err := h.renderer.Render(w, r, "auth/login", render.TemplateData{Title: "Log In"}); err != nil {
		logAndInternalError(w, "rendering login page", "error", err)
	}
}

// Login handles the login form submission.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectLogin) {
		return
	}

	email := NormalizeEmail(r.FormValue("email"))
	password := r.FormValue("password")

	if email == "" || password == "" {
		flashError(w, r, h.renderer, redirectLogin, "Email and password are required")
		return
	}

	clientIP := middleware.GetClientIP(r)

	// Check if account is locked
	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(email); locked {
			_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelWarning,
				"Login attempt on locked account", nil, clientIP, map[string]any{"email": email})
			flashError(w, r, h.renderer, redirectLogin,
				fmt.Sprintf("Account temporarily locked. Try again in %s.", formatDuration(remaining)))
			return
		}
	}

	user, err := h.users.Authenticate(r.Context(), email, password)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCredentials) {
			slog.Error("database error during login", "error", err)
		}
		_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelWarning,
			"Login failed", nil, clientIP, map[string]any{"email": email})

		// Record failed attempt even for non-existent accounts to prevent enumeration
		if h.loginProtection != nil {
			if locked, lockDuration := h.loginProtection.RecordFailedAttempt(email); locked {
				_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelWarning,
					"Account locked due to failed attempts", nil, clientIP,
					map[string]any{"email": email, "duration": lockDuration.String()})
				flashError(w, r, h.renderer, redirectLogin,
					fmt.Sprintf("Too many failed attempts. Account locked for %s.", formatDuration(lockDuration)))
				return
			}
			remaining := h.loginProtection.GetRemainingAttempts(email)
			if remaining <= 3 && remaining > 0 {
				flashError(w, r, h.renderer, redirectLogin,
					fmt.Sprintf("Invalid email or password. %d attempts remaining.", remaining))
				return
			}
		}
		flashError(w, r, h.renderer, redirectLogin, "Invalid email or password")
		return
	}

	// Clear failed attempts on successful login
	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(email)
	}

	if err := h.users.Ping(r.Context(), user.ID); err != nil {
		slog.Error("failed to update last seen time", "error", err, "user_id", user.ID)
		// Don't block login on this error
	}

	// Regenerate session ID to prevent session fixation
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, "session renewal error", "error", err)
		return
	}

	h.sessionManager.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	slog.Info("user logged in", "user_id", user.ID, "email", user.Email)
	_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelInfo, "User logged in",
		&user.ID, clientIP, map[string]any{"email": user.Email})

	h.renderer.SetFlash(r, "Welcome back, "+user.Username+"!", "success")
	http.Redirect(w, r, h.nextOrRoot(r), http.StatusSeeOther)
}

// nextOrRoot returns the next form value when it is a safe local path,
// the homepage otherwise.
func (h *AuthHandler) nextOrRoot(r *http.Request) string {
	next := r.FormValue("next")
	if len(next) > 1 && next[0] == '/' && next[1] != '/' {
		return next
	}
	return redirectRoot
}

// Logout handles user logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := h.sessionManager.GetInt64(r.Context(), middleware.SessionKeyUserID)

	// Log the event before destroying session
	if userID > 0 {
		_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelInfo, "User logged out",
			&userID, middleware.GetClientIP(r), nil)
	}

	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		slog.Error("session destroy error", "error", err)
	}

	slog.Info("user logged out", "user_id", userID)
	flashAndRedirect(w, r, h.renderer, redirectRoot, "You have been logged out.", "info")
}

// Unconfirmed renders the interstitial shown to unconfirmed accounts.
// Confirmed users and anonymous visitors are sent to the homepage.
func (h *AuthHandler) Unconfirmed(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil || user.User.Confirmed == 1 {
		http.Redirect(w, r, redirectRoot, http.StatusSeeOther)
		return
	}
	if err := h.renderer.Render(w, r, "auth/unconfirmed", render.TemplateData{
		Title:       "Confirm Your Account",
		CurrentUser: user,
	}); err != nil {
		logAndInternalError(w, "rendering unconfirmed page", "error", err)
	}
}

// Confirm redeems a confirmation link. The link only works for the
// logged-in account it was minted for.
func (h *AuthHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		http.Redirect(w, r, redirectLogin, http.StatusSeeOther)
		return
	}
	if user.User.Confirmed == 1 {
		http.Redirect(w, r, redirectRoot, http.StatusSeeOther)
		return
	}

	token := chi.URLParam(r, "token")
	userID := user.ID()
	if err := h.users.Confirm(r.Context(), userID, token); err != nil {
		_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelWarning,
			"Confirmation link rejected", &userID, middleware.GetClientIP(r), nil)
		flashError(w, r, h.renderer, redirectUnconfirmed,
			"The confirmation link is invalid or has expired.")
		return
	}

	_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelInfo, "Account confirmed",
		&userID, middleware.GetClientIP(r), nil)
	flashSuccess(w, r, h.renderer, redirectRoot, "You have confirmed your account. Thanks!")
}

// ResendConfirmation mails a fresh confirmation link to the logged-in
// user.
func (h *AuthHandler) ResendConfirmation(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		http.Redirect(w, r, redirectLogin, http.StatusSeeOther)
		return
	}
	if user.User.Confirmed == 1 {
		http.Redirect(w, r, redirectRoot, http.StatusSeeOther)
		return
	}

	if err := h.users.SendConfirmation(r.Context(), user.User); err != nil {
		slog.Error("resending confirmation mail", "user_id", user.ID(), "error", err)
		flashError(w, r, h.renderer, redirectUnconfirmed, "Could not send the email, please try again")
		return
	}
	flashAndRedirect(w, r, h.renderer, redirectUnconfirmed,
		"A new confirmation email has been sent to you by email.", "info")
}

// ResetRequestForm renders the password reset request page.
func (h *AuthHandler) ResetRequestForm(w http.ResponseWriter, r *http.Request) {
	if middleware.GetUser(r) != nil {
		http.Redirect(w, r, redirectRoot, http.StatusSeeOther)
		return
	}
	if err := h.renderer.Render(w, r, "auth/reset_request", render.TemplateData{Title: "Reset Your Password"}); err != nil {
		logAndInternalError(w, "rendering reset request page", "error", err)
	}
}

// ResetRequest mails a reset link. The response is identical whether or
// not the address is registered.
func (h *AuthHandler) ResetRequest(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectReset) {
		return
	}

	email := NormalizeEmail(r.FormValue("email"))
	if msg := ValidateEmail(email); msg != "" {
		flashError(w, r, h.renderer, redirectReset, msg)
		return
	}

	if err := h.users.RequestPasswordReset(r.Context(), email); err != nil {
		slog.Error("requesting password reset", "error", err)
	}
	flashAndRedirect(w, r, h.renderer, redirectLogin,
		"An email with instructions to reset your password has been sent to you.", "info")
}

// ResetForm renders the new-password page for a reset link.
func (h *AuthHandler) ResetForm(w http.ResponseWriter, r *http.Request) {
	if middleware.GetUser(r) != nil {
		http.Redirect(w, r, redirectRoot, http.StatusSeeOther)
		return
	}
	if err := h.renderer.Render(w, r, "auth/reset", render.TemplateData{
		Title: "Reset Your Password",
		Data:  chi.URLParam(r, "token"),
	}); err != nil {
		logAndInternalError(w, "rendering reset page", "error", err)
	}
}

// Reset redeems a password reset link and sets the new password.
func (h *AuthHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectReset) {
		return
	}

	token := chi.URLParam(r, "token")
	password := r.FormValue("password")
	password2 := r.FormValue("password2")

	if msg := ValidatePassword(password); msg != "" {
		flashError(w, r, h.renderer, redirectReset+"/"+token, msg)
		return
	}
	if password != password2 {
		flashError(w, r, h.renderer, redirectReset+"/"+token, "Passwords must match")
		return
	}

	if err := h.users.ResetPassword(r.Context(), token, password); err != nil {
		_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelWarning,
			"Password reset link rejected", nil, middleware.GetClientIP(r), nil)
		flashError(w, r, h.renderer, redirectReset, "The password reset link is invalid or has expired.")
		return
	}

	flashSuccess(w, r, h.renderer, redirectLogin, "Your password has been updated.")
}

// ChangePasswordForm renders the password change page.
func (h *AuthHandler) ChangePasswordForm(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Render(w, r, "auth/change_password", render.TemplateData{
		Title:       "Change Password",
		CurrentUser: middleware.GetUser(r),
	}); err != nil {
		logAndInternalError(w, "rendering change password page", "error", err)
	}
}

// ChangePassword sets a new password after verifying the current one.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		http.Redirect(w, r, redirectLogin, http.StatusSeeOther)
		return
	}
	if !parseFormOrRedirect(w, r, h.renderer, redirectChangePassword) {
		return
	}

	oldPassword := r.FormValue("old_password")
	password := r.FormValue("password")
	password2 := r.FormValue("password2")

	if msg := ValidatePassword(password); msg != "" {
		flashError(w, r, h.renderer, redirectChangePassword, msg)
		return
	}
	if password != password2 {
		flashError(w, r, h.renderer, redirectChangePassword, "Passwords must match")
		return
	}

	userID := user.ID()
	if err := h.users.ChangePassword(r.Context(), userID, oldPassword, password); err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			flashError(w, r, h.renderer, redirectChangePassword, "Invalid password.")
			return
		}
		slog.Error("changing password", "user_id", userID, "error", err)
		flashError(w, r, h.renderer, redirectChangePassword, "Could not update the password, please try again")
		return
	}

	_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelInfo, "Password changed",
		&userID, middleware.GetClientIP(r), nil)
	flashSuccess(w, r, h.renderer, redirectRoot, "Your password has been updated.")
}

// ChangeEmailForm renders the email change request page.
func (h *AuthHandler) ChangeEmailForm(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Render(w, r, "auth/change_email", render.TemplateData{
		Title:       "Change Email Address",
		CurrentUser: middleware.GetUser(r),
	}); err != nil {
		logAndInternalError(w, "rendering change email page", "error", err)
	}
}

// ChangeEmailRequest verifies the password and mails a change link to the
// new address.
func (h *AuthHandler) ChangeEmailRequest(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		http.Redirect(w, r, redirectLogin, http.StatusSeeOther)
		return
	}
	if !parseFormOrRedirect(w, r, h.renderer, redirectChangeEmail) {
		return
	}

	newEmail := NormalizeEmail(r.FormValue("email"))
	password := r.FormValue("password")

	if msg := ValidateEmail(newEmail); msg != "" {
		flashError(w, r, h.renderer, redirectChangeEmail, msg)
		return
	}

	if err := h.users.RequestEmailChange(r.Context(), user.ID(), newEmail, password); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			flashError(w, r, h.renderer, redirectChangeEmail, "Invalid email or password.")
		case errors.Is(err, service.ErrEmailTaken):
			flashError(w, r, h.renderer, redirectChangeEmail, "Email already registered")
		default:
			slog.Error("requesting email change", "user_id", user.ID(), "error", err)
			flashError(w, r, h.renderer, redirectChangeEmail, "Could not send the email, please try again")
		}
		return
	}

	flashAndRedirect(w, r, h.renderer, redirectRoot,
		"An email with instructions to confirm your new email address has been sent to you.", "info")
}

// ChangeEmail redeems an email change link. The link only works for the
// logged-in account it was minted for.
func (h *AuthHandler) ChangeEmail(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		http.Redirect(w, r, redirectLogin, http.StatusSeeOther)
		return
	}

	token := chi.URLParam(r, "token")
	userID := user.ID()
	if err := h.users.ChangeEmail(r.Context(), userID, token); err != nil {
		_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelWarning,
			"Email change link rejected", &userID, middleware.GetClientIP(r), nil)
		if errors.Is(err, service.ErrEmailTaken) {
			flashError(w, r, h.renderer, redirectRoot, "Email already registered")
			return
		}
		flashError(w, r, h.renderer, redirectRoot, "The email change link is invalid or has expired.")
		return
	}

	_ = h.eventService.LogAuthEvent(r.Context(), model.EventLevelInfo, "Email address changed",
		&userID, middleware.GetClientIP(r), nil)
	flashSuccess(w, r, h.renderer, redirectRoot, "Your email address has been updated.")
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", mins)
	}
	hours := int(d.Hours())
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
