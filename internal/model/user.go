// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Email is the login identifier. The repository enforces uniqueness with
// a UNIQUE index, but the service layer also checks before inserting so
// it can return a friendly conflict message instead of a driver error.
//
// WHY json:"-" ON PasswordHash?
// The handler layer serializes User values directly into responses.
// Tagging the hash out of JSON means there is no way to leak it by
// accident — no per-response shaping step to forget. Anything that
// needs the hash (sign-in verification) reads the struct field directly.
type User struct {
	ID           string    `json:"id"        db:"id"`
	Name         string    `json:"name"      db:"name"`
	Email        string    `json:"email"     db:"email"`
	PasswordHash string    `json:"-"         db:"password_hash"`
	Phone        string    `json:"phone"     db:"phone"` // optional, may be empty
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
