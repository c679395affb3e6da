// Package repository defines the SQL stores for accounts, reservations and
// the notification outbox, plus the sentinel errors shared by them.  Higher
// layers use these values to distinguish failure scenarios without looking
// at driver-specific error types.
package repository

import "errors"

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when an account insert violates the unique
// email index.
var ErrEmailExists = errors.New("email already exists")

// ErrRequestTokenExists is returned when a reservation insert reuses an
// idempotency token already stored on another reservation.
var ErrRequestTokenExists = errors.New("request token already used")
