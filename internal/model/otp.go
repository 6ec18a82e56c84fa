package model

import "time"

// OTP is a one-time sign-up code issued to an email address.
//
// One row per send — issuing a new code does not touch earlier rows, so
// several unused codes for the same email can coexist. A row stops
// being redeemable when either:
//   - Used is flipped to true (consumption, or bulk invalidation after
//     a successful sign-up), or
//   - CreatedAt falls outside the configured TTL window.
type OTP struct {
	ID        string    `json:"id"        db:"id"`
	Email     string    `json:"email"     db:"email"`
	Code      string    `json:"code"      db:"code"` // 4 digits, zero-padded
	Used      bool      `json:"used"      db:"used"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
