package services

import (
	"regexp"
	"strings"

	"github.com/dmitrijs2005/adminauth/internal/client/password"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail checks the address shape the login and reset forms accept.
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return invalid("email", "Email is required")
	}
	if !emailRe.MatchString(email) {
		return invalid("email", "Please enter a valid email address")
	}
	return nil
}

// newPasswordErrors checks both fields of a new password form and reports
// every invalid one.
func newPasswordErrors(p password.Policy, newPassword, confirm string) ValidationErrors {
	var errs ValidationErrors
	if newPassword == "" {
		errs = append(errs, invalid("newPassword", "New password is required"))
	} else if v := p.Violations(newPassword); len(v) > 0 {
		errs = append(errs, invalid("newPassword", password.Message(v)))
	}

	if confirm == "" {
		errs = append(errs, invalid("confirmPassword", "Please confirm your new password"))
	} else if confirm != newPassword {
		errs = append(errs, invalid("confirmPassword", password.MismatchMessage))
	}
	return errs
}
