// Package password implements the client-side strength rules applied to new
// passwords before they are sent to the gateway.
package password

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	upperRe   = regexp.MustCompile(`[A-Z]`)
	lowerRe   = regexp.MustCompile(`[a-z]`)
	digitRe   = regexp.MustCompile(`\d`)
	specialRe = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

const MismatchMessage = "Passwords do not match"

// Policy lists the enabled rules.
type Policy struct {
	MinLength      int
	RequireUpper   bool
	RequireLower   bool
	RequireNumbers bool
	RequireSpecial bool
}

func DefaultPolicy() Policy {
	return Policy{
		MinLength:      8,
		RequireUpper:   true,
		RequireLower:   true,
		RequireNumbers: true,
		RequireSpecial: true,
	}
}

// Violations returns the text of every rule pw breaks, in a fixed order.
func (p Policy) Violations(pw string) []string {
	var out []string
	if len(pw) < p.MinLength {
		out = append(out, fmt.Sprintf("At least %d characters", p.MinLength))
	}
	if p.RequireUpper && !upperRe.MatchString(pw) {
		out = append(out, "One uppercase letter")
	}
	if p.RequireLower && !lowerRe.MatchString(pw) {
		out = append(out, "One lowercase letter")
	}
	if p.RequireNumbers && !digitRe.MatchString(pw) {
		out = append(out, "One number")
	}
	if p.RequireSpecial && !specialRe.MatchString(pw) {
		out = append(out, "One special character")
	}
	return out
}

// Message joins violations into a single form error, or "" when there are none.
func Message(violations []string) string {
	if len(violations) == 0 {
		return ""
	}
	return "Password must contain: " + strings.Join(violations, ", ")
}

// Requirements lists every enabled rule, for display next to the prompt.
func (p Policy) Requirements() []string {
	out := []string{fmt.Sprintf("At least %d characters", p.MinLength)}
	if p.RequireUpper {
		out = append(out, "One uppercase letter")
	}
	if p.RequireLower {
		out = append(out, "One lowercase letter")
	}
	if p.RequireNumbers {
		out = append(out, "One number")
	}
	if p.RequireSpecial {
		out = append(out, "One special character")
	}
	return out
}
