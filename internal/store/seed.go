package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/oblog-go/internal/auth"
)

// Default admin credentials
const (
	DefaultAdminEmail    = "admin@example.com"
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "changeme"
)

// Role definitions. Permissions are a bitmask; exactly one role is the
// default assigned to new registrations.
var seedRoles = []struct {
	Name        string
	IsDefault   int64
	Permissions int64
}{
	{Name: "User", IsDefault: 1, Permissions: 0x07},
	{Name: "Moderator", IsDefault: 0, Permissions: 0x0F},
	{Name: "Administrator", IsDefault: 0, Permissions: 0xFF},
}

// Seed creates initial data in the database. It is idempotent: roles are
// upserted by name, the admin user is only created when missing, and the
// self-follow backfill skips users that already have their self edge.
func Seed(ctx context.Context, db *sql.DB, adminEmail string) error {
	queries := New(db)

	if err := SeedRoles(ctx, queries); err != nil {
		return err
	}

	if adminEmail == "" {
		adminEmail = DefaultAdminEmail
	}
	if err := seedAdminUser(ctx, queries, adminEmail); err != nil {
		return err
	}

	if err := BackfillSelfFollows(ctx, queries); err != nil {
		return err
	}

	return nil
}

// SeedRoles upserts the built-in roles keyed by name. Re-running after a
// permissions change brings existing rows up to date without touching
// user assignments.
func SeedRoles(ctx context.Context, queries *Queries) error {
	for _, r := range seedRoles {
		existing, err := queries.GetRoleByName(ctx, r.Name)
		if errors.Is(err, sql.ErrNoRows) {
			if _, err := queries.CreateRole(ctx, CreateRoleParams{
				Name:        r.Name,
				IsDefault:   r.IsDefault,
				Permissions: r.Permissions,
			}); err != nil {
				return fmt.Errorf("creating role %s: %w", r.Name, err)
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("checking role %s: %w", r.Name, err)
		}
		if existing.Permissions == r.Permissions && existing.IsDefault == r.IsDefault {
			continue
		}
		if err := queries.UpdateRole(ctx, UpdateRoleParams{
			IsDefault:   r.IsDefault,
			Permissions: r.Permissions,
			Name:        r.Name,
		}); err != nil {
			return fmt.Errorf("updating role %s: %w", r.Name, err)
		}
	}
	return nil
}

func seedAdminUser(ctx context.Context, queries *Queries, adminEmail string) error {
	_, err := queries.GetUserByEmail(ctx, adminEmail)
	if err == nil {
		slog.Info("admin user already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	role, err := queries.GetRoleByName(ctx, "Administrator")
	if err != nil {
		return fmt.Errorf("looking up administrator role: %w", err)
	}

	passwordHash, err := auth.HashPassword(DefaultAdminPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now()
	user, err := queries.CreateUser(ctx, CreateUserParams{
		Email:        adminEmail,
		Username:     DefaultAdminUsername,
		PasswordHash: passwordHash,
		RoleID:       role.ID,
		Confirmed:    1,
		AvatarHash:   auth.GravatarHash(adminEmail),
		MemberSince:  now,
		LastSeen:     now,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created default admin user",
		"id", user.ID,
		"email", user.Email,
		"password", DefaultAdminPassword,
	)

	return nil
}

// BackfillSelfFollows inserts the self edge for any user missing one, so
// that every user's followed feed includes their own posts. Self edges are
// normally created at registration; this covers rows that predate that.
func BackfillSelfFollows(ctx context.Context, queries *Queries) error {
	ids, err := queries.ListUsersMissingSelfFollow(ctx)
	if err != nil {
		return fmt.Errorf("listing users missing self follow: %w", err)
	}
	for _, id := range ids {
		if err := queries.CreateFollow(ctx, CreateFollowParams{
			FollowerID: id,
			FollowedID: id,
			CreatedAt:  time.Now(),
		}); err != nil {
			return fmt.Errorf("backfilling self follow for user %d: %w", id, err)
		}
	}
	if len(ids) > 0 {
		slog.Info("backfilled self follows", "count", len(ids))
	}
	return nil
}
