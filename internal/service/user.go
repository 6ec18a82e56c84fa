// Package service contains the business logic layer.
//
// The layering follows the usual shape:
//
//	Handler (HTTP)   → parses requests, writes responses
//	Service (rules)  → orchestrates the flows, returns domain errors
//	Repository (DB)  → reads and writes rows
//
// Services know nothing about HTTP. They accept plain inputs, return
// (value, error), and signal outcomes through the apperror taxonomy —
// the handler layer alone decides status codes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/authd/internal/apperror"
	"github.com/sakif/authd/internal/auth"
	"github.com/sakif/authd/internal/mail"
	"github.com/sakif/authd/internal/model"
	"github.com/sakif/authd/internal/otp"
	"github.com/sakif/authd/internal/repository"
)

// UserService orchestrates sign-up, sign-in, code delivery, and
// profile lookup.
type UserService struct {
	users     repository.UserRepository
	otps      repository.OTPRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	sender    mail.Sender
	otpTTL    time.Duration
	logger    *slog.Logger
}

// NewUserService wires the orchestrator. otpTTL bounds how long an
// issued code stays redeemable.
func NewUserService(
	users repository.UserRepository,
	otps repository.OTPRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	sender mail.Sender,
	otpTTL time.Duration,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:     users,
		otps:      otps,
		tokens:    tokens,
		passwords: passwords,
		sender:    sender,
		otpTTL:    otpTTL,
		logger:    logger,
	}
}

// AuthResult bundles the user record with the issued session token so
// the handler can set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// SignUpInput is the validated sign-up payload. The handler runs the
// request schema before constructing this, so the fields are
// well-formed by the time they reach the service.
type SignUpInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
	OTP      string
}

// SignUp creates an account after proving email control via OTP.
//
// ORDER OF CHECKS:
//  1. Duplicate email → conflict, regardless of OTP validity. Checking
//     this first means a typo'd resubmission gets the accurate message
//     rather than burning the code on a doomed attempt.
//  2. Atomic OTP redeem → conflict on failure. The redeem IS the
//     check: there is no separate "is this code valid" read, so two
//     concurrent sign-ups racing on one code resolve to one winner.
//  3. Hash, insert, invalidate remaining codes, issue token.
//
// The bulk invalidation after insert means no outstanding code for the
// email survives a successful sign-up.
func (s *UserService) SignUp(ctx context.Context, in SignUpInput) (*AuthResult, error) {
	_, err := s.users.GetByEmail(ctx, in.Email)
	if err == nil {
		return nil, apperror.Conflict("Email already exists")
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/user: checking email %s: %w", in.Email, err)
	}

	redeemed, err := s.otps.Redeem(ctx, in.Email, in.OTP, s.otpTTL)
	if err != nil {
		return nil, fmt.Errorf("service/user: redeeming otp for %s: %w", in.Email, err)
	}
	if !redeemed {
		return nil, apperror.Conflict("Invalid or expired OTP")
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("service/user: hashing password: %w", err)
	}

	user := &model.User{
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// The repository's UNIQUE backstop can still report a conflict
		// if another sign-up landed between our check and this insert.
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("service/user: creating user %s: %w", in.Email, err)
	}

	// Spend every other outstanding code for this email. Failure here
	// is logged, not fatal — the account exists and the matched code
	// is already consumed.
	if err := s.otps.MarkAllUsed(ctx, in.Email); err != nil {
		s.logger.Error("failed to invalidate remaining OTPs after sign-up",
			slog.String("email", in.Email),
			slog.String("error", err.Error()),
		)
	}

	token, err := s.tokens.Issue(user, auth.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("service/user: issuing token for %s: %w", user.ID, err)
	}

	s.logger.Info("user signed up",
		slog.String("userID", user.ID),
		slog.String("email", user.Email),
	)

	return &AuthResult{User: user, Token: token}, nil
}

// SignIn verifies credentials and issues a session token.
//
// Both failure modes — unknown email and wrong password — return the
// same generic conflict, so responses don't disclose which emails have
// accounts. Credential failures ride the 422 conflict class like
// duplicate emails and spent OTPs do; 401 is reserved for token
// problems on protected routes. The password check goes through
// bcrypt's comparison; the stored value is a hash and must never be
// compared to the submitted plaintext directly.
func (s *UserService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Conflict("Invalid email or password")
		}
		return nil, fmt.Errorf("service/user: fetching user %s: %w", email, err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Conflict("Invalid email or password")
	}

	token, err := s.tokens.Issue(user, auth.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("service/user: issuing token for %s: %w", user.ID, err)
	}

	s.logger.Info("user signed in", slog.String("userID", user.ID))

	return &AuthResult{User: user, Token: token}, nil
}

// SendCode issues a fresh OTP and hands it to the delivery sender.
// Prior outstanding codes for the email are left alone — several may
// coexist until a sign-up consumes them or they age out.
func (s *UserService) SendCode(ctx context.Context, email string) error {
	code, err := otp.Generate()
	if err != nil {
		return fmt.Errorf("service/user: generating otp: %w", err)
	}

	record := &model.OTP{Email: email, Code: code}
	if err := s.otps.Create(ctx, record); err != nil {
		return fmt.Errorf("service/user: storing otp for %s: %w", email, err)
	}

	if err := s.sender.SendCode(ctx, email, code); err != nil {
		return fmt.Errorf("service/user: delivering otp to %s: %w", email, err)
	}

	s.logger.Info("verification code issued", slog.String("email", email))
	return nil
}

// Profile fetches the user behind a verified token identity.
//
// A missing row is NOT an error: the token outlived the account (e.g.
// manual deletion from the database). The handler renders (nil, nil)
// as an empty object.
func (s *UserService) Profile(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("service/user: fetching user %s: %w", id, err)
	}
	return user, nil
}
