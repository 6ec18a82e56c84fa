package apperror

import (
	"errors"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	// Each test case checks that errors.Is() correctly identifies the category
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("user", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed(map[string]string{"email": "email is required"}),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("Email already exists"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "Unauthorized wraps ErrUnauthorized",
			err:       Unauthorized("invalid token"),
			target:    ErrUnauthorized,
			wantMatch: true,
		},
		{
			name:      "Conflict does NOT match ErrValidation",
			err:       Conflict("Email already exists"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "Unauthorized does NOT match ErrNotFound",
			err:       Unauthorized("token expired"),
			target:    ErrNotFound,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("user", "abc123"),
			wantMessage: "user not found with id abc123",
		},
		{
			name:        "Conflict uses custom message",
			err:         Conflict("Invalid or expired OTP"),
			wantMessage: "Invalid or expired OTP",
		},
		{
			name:        "Unauthorized uses custom message",
			err:         Unauthorized("token expired"),
			wantMessage: "token expired",
		},
		{
			name:        "ValidationFailed uses a generic summary",
			err:         ValidationFailed(map[string]string{"name": "name is required"}),
			wantMessage: "Validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	// Unwrap() returning the sentinel is what makes errors.Is() work.
	err := Conflict("Email already exists")
	if unwrapped := err.Unwrap(); unwrapped != ErrConflict {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, ErrConflict)
	}
}

func TestValidationFailedFields(t *testing.T) {
	// The field map lets handlers tell the client WHICH fields were
	// invalid — one message per field, first violation wins.
	err := ValidationFailed(map[string]string{
		"email":    "email must be a valid email address",
		"password": "password must be at least 8 characters",
	})

	if len(err.Fields) != 2 {
		t.Fatalf("Fields has %d entries, want 2", len(err.Fields))
	}
	if got := err.Fields["email"]; got != "email must be a valid email address" {
		t.Errorf("Fields[email] = %q", got)
	}
}
