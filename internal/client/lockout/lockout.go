// Package lockout decides whether login is blocked after repeated failures.
// All functions are pure; persistence is the caller's job.
package lockout

import (
	"math"
	"time"
)

const (
	DefaultMaxLoginAttempts = 5
	DefaultLockoutDuration  = 2 * time.Minute
	DefaultOTPLength        = 6
	DefaultOTPExpiry        = 10 * time.Minute
)

// Policy holds the security limits shared by login and password reset.
type Policy struct {
	MaxLoginAttempts int
	LockoutDuration  time.Duration
	OTPLength        int
	OTPExpiry        time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MaxLoginAttempts: DefaultMaxLoginAttempts,
		LockoutDuration:  DefaultLockoutDuration,
		OTPLength:        DefaultOTPLength,
		OTPExpiry:        DefaultOTPExpiry,
	}
}

// Normalize replaces non-positive fields with their defaults.
func (p Policy) Normalize() Policy {
	d := DefaultPolicy()
	if p.MaxLoginAttempts <= 0 {
		p.MaxLoginAttempts = d.MaxLoginAttempts
	}
	if p.LockoutDuration <= 0 {
		p.LockoutDuration = d.LockoutDuration
	}
	if p.OTPLength <= 0 {
		p.OTPLength = d.OTPLength
	}
	if p.OTPExpiry <= 0 {
		p.OTPExpiry = d.OTPExpiry
	}
	return p
}

// Outcome is the new attempt/lock state after a login attempt.
type Outcome struct {
	Attempts    int
	LockedUntil *time.Time
	Locked      bool
}

// IsLockedOut reports whether now is strictly before lockedUntil.
func IsLockedOut(lockedUntil *time.Time, now time.Time) bool {
	return lockedUntil != nil && now.Before(*lockedUntil)
}

// RemainingLock returns the time left on the lock, never negative.
func RemainingLock(lockedUntil *time.Time, now time.Time) time.Duration {
	if lockedUntil == nil {
		return 0
	}
	d := lockedUntil.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// RemainingMinutes rounds d up to whole minutes.
func RemainingMinutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Minutes()))
}

// RecordFailedAttempt increments attempts and locks once the policy limit is
// reached. The lock is set in the same outcome as the attempt that reached it.
func RecordFailedAttempt(attempts int, now time.Time, p Policy) Outcome {
	p = p.Normalize()
	if attempts < 0 {
		attempts = 0
	}

	n := attempts + 1
	if n >= p.MaxLoginAttempts {
		until := now.Add(p.LockoutDuration)
		return Outcome{Attempts: n, LockedUntil: &until, Locked: true}
	}
	return Outcome{Attempts: n}
}

// RecordSuccess resets attempts and clears the lock.
func RecordSuccess() Outcome {
	return Outcome{}
}

// AttemptsRemaining is the number of failures left before a lock.
func AttemptsRemaining(attempts int, p Policy) int {
	p = p.Normalize()
	if r := p.MaxLoginAttempts - attempts; r > 0 {
		return r
	}
	return 0
}
