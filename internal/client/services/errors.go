package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/adminauth/internal/client/lockout"
)

var (
	ErrNotAuthenticated = errors.New("login required")
	ErrResendNotAllowed = errors.New("otp cannot be resent yet")
	ErrMissingEmail     = errors.New("email is required to continue password reset")
	ErrResetNotVerified = errors.New("password reset has not been verified")
	ErrNoSession        = errors.New("gateway returned no session")
)

// ValidationError is an inline form error. It is raised before any gateway
// call.
type ValidationError struct {
	Field    string
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

func invalid(field string, msgs ...string) *ValidationError {
	return &ValidationError{Field: field, Messages: msgs}
}

// ValidationErrors holds the errors of every invalid field of one form, in
// form order. errors.As reaches each of them.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, ve := range e {
		msgs = append(msgs, ve.Error())
	}
	return strings.Join(msgs, "; ")
}

func (e ValidationErrors) Unwrap() []error {
	errs := make([]error, 0, len(e))
	for _, ve := range e {
		errs = append(errs, ve)
	}
	return errs
}

// err returns nil, the single field error, or e itself.
func (e ValidationErrors) err() error {
	switch len(e) {
	case 0:
		return nil
	case 1:
		return e[0]
	}
	return e
}

// LockoutError means login was refused without contacting the gateway, or
// that the failed attempt just recorded triggered the lock.
type LockoutError struct {
	Remaining  time.Duration
	JustLocked bool
	Err        error
}

func (e *LockoutError) Error() string {
	n := lockout.RemainingMinutes(e.Remaining)
	if e.JustLocked {
		return fmt.Sprintf("Too many failed attempts. Account locked for %d minutes.", n)
	}
	return fmt.Sprintf("Account locked. Try again in %d minutes.", n)
}

func (e *LockoutError) Unwrap() error { return e.Err }

// LoginFailedError is a rejected login that was counted against the limit.
type LoginFailedError struct {
	Remaining int
	Err       error
}

func (e *LoginFailedError) Error() string {
	return fmt.Sprintf("Invalid credentials. %d attempts remaining.", e.Remaining)
}

func (e *LoginFailedError) Unwrap() error { return e.Err }
