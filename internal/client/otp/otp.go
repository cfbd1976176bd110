// Package otp holds the pure parts of the password reset challenge: the
// resend countdown and the code shape check.
package otp

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrCodeLength = errors.New("otp has wrong length")
	ErrCodeDigits = errors.New("otp must contain digits only")
)

// Remaining returns the time until expiresAt, never negative.
func Remaining(expiresAt, now time.Time) time.Duration {
	d := expiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// CanResend reports whether the countdown has run out.
func CanResend(expiresAt, now time.Time) bool {
	return Remaining(expiresAt, now) == 0
}

// FormatCountdown renders d as m:ss, truncating partial seconds.
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// ValidateCode checks that code is exactly length ASCII digits.
func ValidateCode(code string, length int) error {
	if len(code) != length {
		return fmt.Errorf("%w: want %d digits, got %d", ErrCodeLength, length, len(code))
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return ErrCodeDigits
		}
	}
	return nil
}
