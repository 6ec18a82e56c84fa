package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/authd/internal/model"
	"github.com/sakif/authd/internal/repository"
)

// compile-time check that *OTPStore implements repository.OTPRepository
var _ repository.OTPRepository = (*OTPStore)(nil)

// OTPStore implements repository.OTPRepository on the shared DB.
type OTPStore struct {
	db *DB
}

// OTPs returns the OTP repository backed by this database.
func (db *DB) OTPs() *OTPStore {
	return &OTPStore{db: db}
}

// Create persists a freshly issued code. It never touches earlier rows
// for the same email — outstanding codes accumulate until a sign-up
// consumes them or they age out of the TTL window.
func (s *OTPStore) Create(ctx context.Context, otp *model.OTP) error {
	otp.ID = xid.New().String()
	otp.Used = false
	otp.CreatedAt = time.Now().UTC()

	_, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO otps (id, email, code, used, created_at)
		 VALUES (?, ?, ?, 0, ?)`,
		otp.ID,
		otp.Email,
		otp.Code,
		otp.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting otp for %s: %w", otp.Email, err)
	}

	return nil
}

// Redeem consumes one matching, unused, unexpired row.
//
// SINGLE-STATEMENT ATOMICITY:
// The check and the flip happen in one UPDATE. Two requests racing on
// the same code both reach this statement, but SQLite serializes the
// writes: the first flips used to 1, the second's WHERE clause then
// matches nothing and it observes false. A separate SELECT-then-UPDATE
// would leave a window where both see the row as unused.
func (s *OTPStore) Redeem(ctx context.Context, email, code string, maxAge time.Duration) (bool, error) {
	cutoff := time.Now().UTC().Add(-maxAge)

	var id string
	err := s.db.conn.QueryRowContext(ctx,
		`UPDATE otps SET used = 1
		 WHERE id = (
			SELECT id FROM otps
			WHERE email = ? AND code = ? AND used = 0 AND created_at >= ?
			LIMIT 1
		 )
		 RETURNING id`,
		email, code, cutoff,
	).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil // nothing redeemable matched
		}
		return false, fmt.Errorf("sqlite: redeeming otp for %s: %w", email, err)
	}

	return true, nil
}

// MarkAllUsed invalidates every outstanding code for the email.
func (s *OTPStore) MarkAllUsed(ctx context.Context, email string) error {
	_, err := s.db.conn.ExecContext(ctx,
		`UPDATE otps SET used = 1 WHERE email = ?`, email,
	)
	if err != nil {
		return fmt.Errorf("sqlite: marking otps used for %s: %w", email, err)
	}
	return nil
}
