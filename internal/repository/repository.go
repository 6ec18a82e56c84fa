// Package repository declares the storage interfaces the service layer
// programs against. The sqlite subpackage implements them; tests use
// hand-written fakes.
package repository

import (
	"context"
	"time"

	"github.com/sakif/authd/internal/model"
)

// UserRepository stores registered users. Users are never updated or
// deleted by the in-scope flows — create and read only.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	// GetByEmail returns apperror.ErrNotFound (wrapped) when no user
	// holds the email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// OTPRepository stores one-time sign-up codes.
type OTPRepository interface {
	Create(ctx context.Context, otp *model.OTP) error

	// Redeem atomically consumes one unused, unexpired row matching
	// email+code, returning false when none matched. Atomicity is the
	// contract: two concurrent redeems of the same code must resolve
	// to exactly one true. maxAge bounds how old a redeemable row's
	// created_at may be.
	Redeem(ctx context.Context, email, code string, maxAge time.Duration) (bool, error)

	// MarkAllUsed flips every row for the email to used. Called after
	// a successful sign-up so no outstanding code survives.
	MarkAllUsed(ctx context.Context, email string) error
}

// AccountRepository stores third-party identity links.
type AccountRepository interface {
	// EnsureService returns the Service row for the named provider,
	// creating it on first use.
	EnsureService(ctx context.Context, name string) (*model.Service, error)

	// CreateAccount links a user to a provider identity. Returns a
	// conflict error when the (user, service) pair is already linked.
	CreateAccount(ctx context.Context, account *model.Account) error

	ListAccountsByUser(ctx context.Context, userID string) ([]model.Account, error)
}
