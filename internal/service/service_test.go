package service

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/olegiv/oblog-go/internal/auth"
	"github.com/olegiv/oblog-go/internal/mailer"
	"github.com/olegiv/oblog-go/internal/store"
)

const testTokenSecret = "service-test-secret-32-bytes-min!"

// testDB creates a temporary migrated database with the built-in roles.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "oblog-service-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}
	if err := store.Migrate(db); err != nil {
		db.Close()
		os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}
	if err := store.SeedRoles(context.Background(), store.New(db)); err != nil {
		db.Close()
		os.Remove(dbPath)
		t.Fatalf("SeedRoles: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})
	return db
}

// recordingMailer captures outbound mail for assertions.
type recordingMailer struct {
	to       []string
	subjects []string
	bodies   []string
}

func (m *recordingMailer) Send(to, subject, htmlBody string) error {
	m.to = append(m.to, to)
	m.subjects = append(m.subjects, subject)
	m.bodies = append(m.bodies, htmlBody)
	return nil
}

var _ mailer.Mailer = (*recordingMailer)(nil)

func testUserService(t *testing.T, db *sql.DB) (*UserService, *recordingMailer) {
	t.Helper()
	mail := &recordingMailer{}
	tokens := auth.NewTokenIssuer(testTokenSecret, time.Hour)
	return NewUserService(db, tokens, mail, "", "http://localhost:8080"), mail
}

// registerTestUser registers a user and returns it.
func registerTestUser(t *testing.T, svc *UserService, email, username string) store.User {
	t.Helper()
	user, err := svc.Register(context.Background(), email, username, "password1")
	if err != nil {
		t.Fatalf("Register(%s): %v", email, err)
	}
	return user
}
