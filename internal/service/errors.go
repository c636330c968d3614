package service

import (
	"database/sql"
	"errors"
	"strings"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidID          = errors.New("invalid id")
	ErrDuplicateEmail     = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError rejected input. Errors lists every failing field; Details
// carries extra context for the client (e.g. which fields were required).
type ValidationError struct {
	Message string
	Errors  []string
	Details map[string]any
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Errors, "; ")
}

func invalid(msg string, errs ...string) *ValidationError {
	return &ValidationError{Message: msg, Errors: errs}
}

// notFound maps a repository miss onto ErrNotFound and passes other errors through.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
