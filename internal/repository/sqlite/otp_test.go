package sqlite

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sakif/authd/internal/model"
)

const testTTL = 10 * time.Minute

func issueTestOTP(t *testing.T, otps *OTPStore, email, code string) *model.OTP {
	t.Helper()
	otp := &model.OTP{Email: email, Code: code}
	if err := otps.Create(context.Background(), otp); err != nil {
		t.Fatalf("failed to create test otp: %v", err)
	}
	return otp
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestOTPCreate_MultipleOutstandingCodes(t *testing.T) {
	otps := newTestDB(t).OTPs()

	// One row per send — issuing a second code must not invalidate the
	// first. Both stay redeemable.
	issueTestOTP(t, otps, "a@b.com", "1111")
	issueTestOTP(t, otps, "a@b.com", "2222")

	ok, err := otps.Redeem(context.Background(), "a@b.com", "1111", testTTL)
	if err != nil || !ok {
		t.Fatalf("Redeem(first code) = (%v, %v), want (true, nil)", ok, err)
	}
	ok, err = otps.Redeem(context.Background(), "a@b.com", "2222", testTTL)
	if err != nil || !ok {
		t.Fatalf("Redeem(second code) = (%v, %v), want (true, nil)", ok, err)
	}
}

// =========================================================================
// REDEEM TESTS
// =========================================================================

func TestOTPRedeem_HappyPath(t *testing.T) {
	otps := newTestDB(t).OTPs()
	issueTestOTP(t, otps, "a@b.com", "0042")

	ok, err := otps.Redeem(context.Background(), "a@b.com", "0042", testTTL)
	if err != nil {
		t.Fatalf("Redeem() error = %v", err)
	}
	if !ok {
		t.Fatal("Redeem() = false for a fresh matching code")
	}
}

func TestOTPRedeem_OnlyOnce(t *testing.T) {
	otps := newTestDB(t).OTPs()
	issueTestOTP(t, otps, "a@b.com", "0042")

	if ok, _ := otps.Redeem(context.Background(), "a@b.com", "0042", testTTL); !ok {
		t.Fatal("first Redeem() = false, want true")
	}
	if ok, _ := otps.Redeem(context.Background(), "a@b.com", "0042", testTTL); ok {
		t.Fatal("second Redeem() = true, a code must be single-use")
	}
}

func TestOTPRedeem_NoMatch(t *testing.T) {
	otps := newTestDB(t).OTPs()
	issueTestOTP(t, otps, "a@b.com", "0042")

	tests := []struct {
		name  string
		email string
		code  string
	}{
		{"wrong code", "a@b.com", "9999"},
		{"wrong email", "x@y.com", "0042"},
		{"no rows at all", "ghost@example.com", "0000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := otps.Redeem(context.Background(), tt.email, tt.code, testTTL)
			if err != nil {
				t.Fatalf("Redeem() error = %v", err)
			}
			if ok {
				t.Error("Redeem() = true, want false")
			}
		})
	}
}

func TestOTPRedeem_ExpiredCode(t *testing.T) {
	otps := newTestDB(t).OTPs()
	issueTestOTP(t, otps, "a@b.com", "0042")

	// A zero-width TTL window puts every existing row past the cutoff.
	ok, err := otps.Redeem(context.Background(), "a@b.com", "0042", 0)
	if err != nil {
		t.Fatalf("Redeem() error = %v", err)
	}
	if ok {
		t.Error("Redeem() = true for a code older than the TTL")
	}
}

func TestOTPRedeem_ConcurrentSingleWinner(t *testing.T) {
	// The time-of-check/time-of-use property: N goroutines racing on
	// one code, exactly one Redeem returns true. The single-statement
	// UPDATE ... RETURNING is what makes this hold.
	otps := newTestDB(t).OTPs()
	issueTestOTP(t, otps, "race@example.com", "0042")

	const racers = 8
	var wg sync.WaitGroup
	results := make(chan bool, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := otps.Redeem(context.Background(), "race@example.com", "0042", testTTL)
			if err != nil {
				t.Errorf("Redeem() error = %v", err)
				return
			}
			results <- ok
		}()
	}
	wg.Wait()
	close(results)

	winners := 0
	for ok := range results {
		if ok {
			winners++
		}
	}
	if winners != 1 {
		t.Errorf("%d concurrent redeems succeeded, want exactly 1", winners)
	}
}

// =========================================================================
// MARK-ALL-USED TESTS
// =========================================================================

func TestOTPMarkAllUsed(t *testing.T) {
	otps := newTestDB(t).OTPs()
	issueTestOTP(t, otps, "a@b.com", "1111")
	issueTestOTP(t, otps, "a@b.com", "2222")
	other := issueTestOTP(t, otps, "other@example.com", "3333")

	if err := otps.MarkAllUsed(context.Background(), "a@b.com"); err != nil {
		t.Fatalf("MarkAllUsed() error = %v", err)
	}

	// Every code for the email is now spent...
	for _, code := range []string{"1111", "2222"} {
		if ok, _ := otps.Redeem(context.Background(), "a@b.com", code, testTTL); ok {
			t.Errorf("Redeem(%q) = true after MarkAllUsed", code)
		}
	}
	// ...but other emails' codes are untouched.
	if ok, _ := otps.Redeem(context.Background(), other.Email, other.Code, testTTL); !ok {
		t.Error("MarkAllUsed() affected another email's code")
	}
}
