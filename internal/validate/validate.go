// Package validate implements declarative request validation.
//
// Each route declares a Schema — an ordered list of per-field rules —
// and the handler runs it against the decoded request before any
// business logic. Validation is a pure function: Schema in, field-error
// map out. No framework hooks, no struct tags, no reflection.
//
// FIRST VIOLATION WINS:
// A field's rules run in declaration order and stop at the first
// failure, so the client sees exactly one message per bad field rather
// than an exhaustive list. Fields are independent — one bad field
// doesn't suppress errors on the others.
package validate

import (
	"fmt"
	"regexp"
	"unicode"
)

// Rule checks a single string value. It returns "" when the value
// passes, or the message to report. Rules see the raw (already
// trimmed by the caller, if desired) value.
type Rule func(value string) string

// Field pairs a field name with its ordered rule list.
type Field struct {
	Name  string
	Rules []Rule
}

// Schema is the full declaration for one route's body.
type Schema []Field

// Apply runs the schema against the given values (field name → value).
// It returns nil when everything passes, otherwise a map of field name
// → first failing rule's message.
func Apply(schema Schema, values map[string]string) map[string]string {
	var errs map[string]string
	for _, f := range schema {
		v := values[f.Name]
		for _, rule := range f.Rules {
			if msg := rule(v); msg != "" {
				if errs == nil {
					errs = make(map[string]string)
				}
				errs[f.Name] = msg
				break // first violation wins for this field
			}
		}
	}
	return errs
}

// emailRe is deliberately loose: something@something.something.
// Real mailbox verification happens via the OTP round trip, not regex.
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Required fails on the empty string.
func Required(name string) Rule {
	return func(v string) string {
		if v == "" {
			return fmt.Sprintf("%s is required", name)
		}
		return ""
	}
}

// MinLen fails when the value is shorter than n characters (runes, so
// multi-byte names are counted fairly).
func MinLen(name string, n int) Rule {
	return func(v string) string {
		if len([]rune(v)) < n {
			return fmt.Sprintf("%s must be at least %d characters", name, n)
		}
		return ""
	}
}

// Email fails when the value doesn't look like an email address.
func Email(name string) Rule {
	return func(v string) string {
		if !emailRe.MatchString(v) {
			return fmt.Sprintf("%s must be a valid email address", name)
		}
		return ""
	}
}

// Digits fails unless the value is exactly n ASCII digits.
func Digits(name string, n int) Rule {
	return func(v string) string {
		if len(v) != n {
			return fmt.Sprintf("%s must be exactly %d digits", name, n)
		}
		for _, r := range v {
			if r < '0' || r > '9' {
				return fmt.Sprintf("%s must be exactly %d digits", name, n)
			}
		}
		return ""
	}
}

// Password enforces the complexity policy: at least 8 characters with
// one upper, one lower, one digit, and one symbol. "Symbol" means a
// printable punctuation or symbol rune — spaces and control characters
// don't satisfy it. The checks run in a fixed order so the reported
// message is deterministic.
func Password(name string) Rule {
	return func(v string) string {
		if len([]rune(v)) < 8 {
			return fmt.Sprintf("%s must be at least 8 characters", name)
		}
		var upper, lower, digit, symbol bool
		for _, r := range v {
			switch {
			case unicode.IsUpper(r):
				upper = true
			case unicode.IsLower(r):
				lower = true
			case unicode.IsDigit(r):
				digit = true
			case unicode.IsPunct(r), unicode.IsSymbol(r):
				symbol = true
			}
		}
		switch {
		case !upper:
			return fmt.Sprintf("%s must contain an uppercase letter", name)
		case !lower:
			return fmt.Sprintf("%s must contain a lowercase letter", name)
		case !digit:
			return fmt.Sprintf("%s must contain a digit", name)
		case !symbol:
			return fmt.Sprintf("%s must contain a symbol", name)
		}
		return ""
	}
}
