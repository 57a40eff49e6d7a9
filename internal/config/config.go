// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"OBLOG_DB_PATH" envDefault:"./data/oblog.db"`
	SessionSecret string `env:"OBLOG_SESSION_SECRET,required"`
	TokenSecret   string `env:"OBLOG_TOKEN_SECRET,required"`
	ServerHost    string `env:"OBLOG_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"OBLOG_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"OBLOG_ENV" envDefault:"development"`
	LogLevel      string `env:"OBLOG_LOG_LEVEL" envDefault:"info"`

	// BaseURL is the externally visible origin used to build links in
	// outbound mail.
	BaseURL string `env:"OBLOG_BASE_URL" envDefault:"http://localhost:8080"`

	// AdminEmail is granted the Administrator role at seed time.
	AdminEmail string `env:"OBLOG_ADMIN_EMAIL"`

	// Token validity window for confirmation, password reset and email
	// change links.
	TokenExpiry time.Duration `env:"OBLOG_TOKEN_EXPIRY" envDefault:"1h"`

	// Pagination
	PostsPerPage     int `env:"OBLOG_POSTS_PER_PAGE" envDefault:"20"`
	FollowersPerPage int `env:"OBLOG_FOLLOWERS_PER_PAGE" envDefault:"50"`
	CommentsPerPage  int `env:"OBLOG_COMMENTS_PER_PAGE" envDefault:"30"`

	// EventRetention bounds the audit event log; older entries are pruned
	// by the background scheduler.
	EventRetention time.Duration `env:"OBLOG_EVENT_RETENTION" envDefault:"2160h"`

	// Mail configuration. When SMTPHost is empty, outbound mail is logged
	// instead of sent.
	SMTPHost          string `env:"OBLOG_SMTP_HOST"`
	SMTPPort          int    `env:"OBLOG_SMTP_PORT" envDefault:"587"`
	SMTPUsername      string `env:"OBLOG_SMTP_USERNAME"`
	SMTPPassword      string `env:"OBLOG_SMTP_PASSWORD"`
	MailSender        string `env:"OBLOG_MAIL_SENDER" envDefault:"OBlog Admin <oblog@example.com>"`
	MailSubjectPrefix string `env:"OBLOG_MAIL_SUBJECT_PREFIX" envDefault:"[OBlog]"`

	// Seeding configuration
	DoSeed bool `env:"OBLOG_DO_SEED" envDefault:"false"` // Enable database seeding
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// MailEnabled returns true if SMTP delivery is configured.
func (c Config) MailEnabled() bool {
	return c.SMTPHost != ""
}

// MinSecretLength is the minimum required length for signing secrets.
const MinSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	for name, secret := range map[string]string{
		"OBLOG_SESSION_SECRET": cfg.SessionSecret,
		"OBLOG_TOKEN_SECRET":   cfg.TokenSecret,
	} {
		if len(secret) < MinSecretLength {
			return nil, fmt.Errorf("%s must be at least %d bytes long, got %d bytes; "+
				"generate a secure secret with: openssl rand -base64 32",
				name, MinSecretLength, len(secret))
		}
		for _, weak := range knownWeakSecrets {
			if secret == weak {
				return nil, fmt.Errorf("%s is a known default value and must not be used; "+
					"generate a secure secret with: openssl rand -base64 32", name)
			}
		}
		if !hasMinimumEntropy(secret) {
			slog.Warn(name + " has low character diversity; " +
				"consider generating a random secret with: openssl rand -base64 32")
		}
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
