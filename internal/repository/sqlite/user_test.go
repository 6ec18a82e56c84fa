package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/authd/internal/apperror"
	"github.com/sakif/authd/internal/model"
)

// createTestUser inserts a user and fails the test on error.
func createTestUser(t *testing.T, users *UserStore, email string) *model.User {
	t.Helper()
	user := &model.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: "$2a$10$notarealhashbutlookslikeone1234567890abcdefghijk",
		Phone:        "1234567890",
	}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestUserCreate(t *testing.T) {
	users := newTestDB(t).Users()

	user := &model.User{
		Name:         "Al",
		Email:        "a@b.com",
		PasswordHash: "$2a$10$hash",
		Phone:        "1234567890",
	}

	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Create fills ID and CreatedAt in place (pointer receiver).
	if user.ID == "" {
		t.Error("Create() did not set user.ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("Create() did not set user.CreatedAt")
	}
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	users := newTestDB(t).Users()

	createTestUser(t, users, "dup@example.com")

	duplicate := &model.User{
		Name:         "Other",
		Email:        "dup@example.com",
		PasswordHash: "$2a$10$other",
	}
	err := users.Create(context.Background(), duplicate)
	if err == nil {
		t.Fatal("Create() should fail for a duplicate email")
	}
	// The UNIQUE violation must surface as the application's conflict
	// error, not a raw driver message.
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Create() error = %v, want ErrConflict", err)
	}
}

// =========================================================================
// GET TESTS
// =========================================================================

func TestUserGetByID(t *testing.T) {
	users := newTestDB(t).Users()
	created := createTestUser(t, users, "byid@example.com")

	got, err := users.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Email != "byid@example.com" {
		t.Errorf("GetByID().Email = %q, want %q", got.Email, "byid@example.com")
	}
	if got.PasswordHash != created.PasswordHash {
		t.Error("GetByID() did not round-trip the password hash")
	}
}

func TestUserGetByID_NotFound(t *testing.T) {
	users := newTestDB(t).Users()

	_, err := users.GetByID(context.Background(), "no-such-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestUserGetByEmail(t *testing.T) {
	users := newTestDB(t).Users()
	created := createTestUser(t, users, "byemail@example.com")

	got, err := users.GetByEmail(context.Background(), "byemail@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("GetByEmail().ID = %q, want %q", got.ID, created.ID)
	}
}

func TestUserGetByEmail_NotFound(t *testing.T) {
	users := newTestDB(t).Users()

	_, err := users.GetByEmail(context.Background(), "ghost@example.com")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByEmail() error = %v, want ErrNotFound", err)
	}
}
