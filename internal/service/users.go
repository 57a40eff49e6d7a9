// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/oblog-go/internal/auth"
	"github.com/olegiv/oblog-go/internal/mailer"
	"github.com/olegiv/oblog-go/internal/model"
	"github.com/olegiv/oblog-go/internal/store"
)

// UserService implements the account lifecycle: registration,
// authentication, confirmation, password reset and email change. Token
// redemption is fail-closed: a token minted for one user never acts on
// another.
type UserService struct {
	db         *sql.DB
	queries    *store.Queries
	tokens     *auth.TokenIssuer
	mail       mailer.Mailer
	adminEmail string
	baseURL    string
}

// NewUserService creates a UserService. adminEmail, when non-empty, is
// granted the Administrator role at registration. baseURL is used to build
// links in outbound mail.
func NewUserService(db *sql.DB, tokens *auth.TokenIssuer, mail mailer.Mailer, adminEmail, baseURL string) *UserService {
	return &UserService{
		db:         db,
		queries:    store.New(db),
		tokens:     tokens,
		mail:       mail,
		adminEmail: adminEmail,
		baseURL:    baseURL,
	}
}

// Register creates a new unconfirmed account and sends the confirmation
// link. The user, their role assignment and the self-follow edge are
// written in one transaction.
func (s *UserService) Register(ctx context.Context, email, username, password string) (store.User, error) {
	if _, err := s.queries.GetUserByEmail(ctx, email); err == nil {
		return store.User{}, ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return store.User{}, fmt.Errorf("checking email: %w", err)
	}
	if _, err := s.queries.GetUserByUsername(ctx, username); err == nil {
		return store.User{}, ErrUsernameTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return store.User{}, fmt.Errorf("checking username: %w", err)
	}

	role, err := s.roleForEmail(ctx, email)
	if err != nil {
		return store.User{}, err
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return store.User{}, fmt.Errorf("hashing password: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return store.User{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := s.queries.WithTx(tx)
	now := time.Now()
	user, err := qtx.CreateUser(ctx, store.CreateUserParams{
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		RoleID:       role.ID,
		Confirmed:    0,
		AvatarHash:   auth.GravatarHash(email),
		MemberSince:  now,
		LastSeen:     now,
	})
	if err != nil {
		return store.User{}, fmt.Errorf("creating user: %w", err)
	}

	// Every user follows themselves so their own posts appear in the
	// followed feed. This edge is permanent.
	if err := qtx.CreateFollow(ctx, store.CreateFollowParams{
		FollowerID: user.ID,
		FollowedID: user.ID,
		CreatedAt:  now,
	}); err != nil {
		return store.User{}, fmt.Errorf("creating self follow: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return store.User{}, fmt.Errorf("committing transaction: %w", err)
	}

	if err := s.SendConfirmation(ctx, user); err != nil {
		slog.Error("sending confirmation mail", "user_id", user.ID, "error", err)
	}

	return user, nil
}

// roleForEmail returns the Administrator role for the configured admin
// address and the default role otherwise.
func (s *UserService) roleForEmail(ctx context.Context, email string) (store.Role, error) {
	if s.adminEmail != "" && email == s.adminEmail {
		role, err := s.queries.GetRoleByName(ctx, model.RoleNameAdministrator)
		if err != nil {
			return store.Role{}, fmt.Errorf("looking up administrator role: %w", err)
		}
		return role, nil
	}
	role, err := s.queries.GetDefaultRole(ctx)
	if err != nil {
		return store.Role{}, fmt.Errorf("looking up default role: %w", err)
	}
	return role, nil
}

// Authenticate verifies credentials and returns the user. The password
// hash is upgraded transparently when its parameters are outdated.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (store.User, error) {
	user, err := s.queries.GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return store.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return store.User{}, fmt.Errorf("looking up user: %w", err)
	}

	ok, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return store.User{}, ErrInvalidCredentials
	}

	if auth.NeedsRehash(user.PasswordHash) {
		if newHash, err := auth.HashPassword(password); err == nil {
			if err := s.queries.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{
				PasswordHash: newHash,
				ID:           user.ID,
			}); err != nil {
				slog.Error("upgrading password hash", "user_id", user.ID, "error", err)
			}
		}
	}

	return user, nil
}

// Principal loads a user together with their role for permission checks.
func (s *UserService) Principal(ctx context.Context, userID int64) (*model.CurrentUser, error) {
	user, err := s.queries.GetUserByID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	role, err := s.queries.GetRoleByID(ctx, user.RoleID)
	if err != nil {
		return nil, fmt.Errorf("looking up role: %w", err)
	}
	return &model.CurrentUser{User: user, Role: role}, nil
}

// SendConfirmation mails a fresh confirmation link to a user.
func (s *UserService) SendConfirmation(ctx context.Context, user store.User) error {
	token, err := s.tokens.GenerateConfirm(user.ID)
	if err != nil {
		return err
	}
	body := fmt.Sprintf(
		"<p>Dear %s,</p><p>Welcome! To confirm your account please <a href=%q>click here</a>.</p>",
		user.Username, s.baseURL+"/auth/confirm/"+token)
	return s.mail.Send(user.Email, "Confirm Your Account", body)
}

// Confirm redeems a confirmation token on behalf of the acting user. The
// token's subject must be the acting user; a mismatch is rejected without
// side effects.
func (s *UserService) Confirm(ctx context.Context, actingUserID int64, token string) error {
	subjectID, err := s.tokens.VerifyConfirm(token)
	if err != nil {
		return ErrInvalidToken
	}
	if subjectID != actingUserID {
		return ErrInvalidToken
	}
	if err := s.queries.SetUserConfirmed(ctx, store.SetUserConfirmedParams{
		Confirmed: 1,
		ID:        actingUserID,
	}); err != nil {
		return fmt.Errorf("confirming user: %w", err)
	}
	return nil
}

// RequestPasswordReset mails a reset link when the address is registered.
// It reports success either way so the endpoint does not leak which
// addresses exist.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.queries.GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("looking up user: %w", err)
	}

	token, err := s.tokens.GenerateReset(user.ID)
	if err != nil {
		return err
	}
	body := fmt.Sprintf(
		"<p>Dear %s,</p><p>To reset your password please <a href=%q>click here</a>. "+
			"If you did not request a reset, ignore this message.</p>",
		user.Username, s.baseURL+"/auth/reset/"+token)
	return s.mail.Send(user.Email, "Reset Your Password", body)
}

// ResetPassword redeems a reset token and sets a new password.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	subjectID, err := s.tokens.VerifyReset(token)
	if err != nil {
		return ErrInvalidToken
	}

	// The subject must still exist; a token for a deleted account is dead.
	if _, err := s.queries.GetUserByID(ctx, subjectID); err != nil {
		return ErrInvalidToken
	}

	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	if err := s.queries.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{
		PasswordHash: passwordHash,
		ID:           subjectID,
	}); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	return nil
}

// ChangePassword sets a new password after verifying the current one.
func (s *UserService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	user, err := s.queries.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("looking up user: %w", err)
	}

	ok, err := auth.CheckPassword(oldPassword, user.PasswordHash)
	if err != nil || !ok {
		return ErrInvalidCredentials
	}

	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	if err := s.queries.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{
		PasswordHash: passwordHash,
		ID:           userID,
	}); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	return nil
}

// RequestEmailChange verifies the password, checks the new address is
// free, and mails a change link to the NEW address.
func (s *UserService) RequestEmailChange(ctx context.Context, userID int64, newEmail, password string) error {
	user, err := s.queries.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("looking up user: %w", err)
	}

	ok, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return ErrInvalidCredentials
	}

	if _, err := s.queries.GetUserByEmail(ctx, newEmail); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking email: %w", err)
	}

	token, err := s.tokens.GenerateChangeEmail(userID, newEmail)
	if err != nil {
		return err
	}
	body := fmt.Sprintf(
		"<p>Dear %s,</p><p>To confirm your new email address please <a href=%q>click here</a>.</p>",
		user.Username, s.baseURL+"/auth/change_email/"+token)
	return s.mail.Send(newEmail, "Confirm Your Email Address", body)
}

// ChangeEmail redeems an email change token on behalf of the acting user
// and updates the address and the derived avatar hash together.
func (s *UserService) ChangeEmail(ctx context.Context, actingUserID int64, token string) error {
	subjectID, newEmail, err := s.tokens.VerifyChangeEmail(token)
	if err != nil {
		return ErrInvalidToken
	}
	if subjectID != actingUserID {
		return ErrInvalidToken
	}

	// The address may have been claimed since the token was minted.
	if _, err := s.queries.GetUserByEmail(ctx, newEmail); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking email: %w", err)
	}

	if err := s.queries.UpdateUserEmail(ctx, store.UpdateUserEmailParams{
		Email:      newEmail,
		AvatarHash: auth.GravatarHash(newEmail),
		ID:         actingUserID,
	}); err != nil {
		return fmt.Errorf("updating email: %w", err)
	}
	return nil
}

// UpdateProfile sets the user-editable profile fields.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, name, location, aboutMe string) error {
	if err := s.queries.UpdateUserProfile(ctx, store.UpdateUserProfileParams{
		Name:     name,
		Location: location,
		AboutMe:  aboutMe,
		ID:       userID,
	}); err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}
	return nil
}

// Ping records that a user was seen just now.
func (s *UserService) Ping(ctx context.Context, userID int64) error {
	return s.queries.TouchUserLastSeen(ctx, store.TouchUserLastSeenParams{
		LastSeen: time.Now(),
		ID:       userID,
	})
}
