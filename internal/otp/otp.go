// Package otp generates one-time sign-up codes.
//
// WHY crypto/rand AND NOT math/rand?
// math/rand is seeded predictably — an attacker who knows roughly when
// the server started can reconstruct the sequence. crypto/rand draws
// from the OS entropy pool, so each code is independently unguessable.
// With only 10,000 possible codes the real defence is that codes are
// single-use and short-lived, but there's no reason to make guessing
// easier than it has to be.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// CodeLength is the number of digits in a generated code.
const CodeLength = 4

var codeSpace = big.NewInt(10000) // [0000, 9999]

// Generate returns a 4-digit zero-padded numeric code, e.g. "0042".
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", fmt.Errorf("otp: reading random source: %w", err)
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}
