// Package service implements the account and reservation operations on top
// of the repositories.  Operations return the errors below; transport
// layers translate them into status codes.
package service

import (
	"errors"
	"strings"
)

var (
	// ErrConflict is returned by Signup when the email is already registered.
	ErrConflict = errors.New("email already registered")
	// ErrNotFound is returned when no account exists for the given email.
	ErrNotFound = errors.New("account not found")
	// ErrUnauthorized is returned by Login when the phone does not match.
	ErrUnauthorized = errors.New("invalid credentials")
	// ErrIdempotencyConflict is returned when a request token was already
	// used by a booking for a different email.
	ErrIdempotencyConflict = errors.New("request token already used for another booking")
)

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return "invalid input: " + strings.Join(names, ", ")
}

// DependencyError wraps a failure of the database or another backing
// service.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *DependencyError) Unwrap() error { return e.Err }
