// Package models defines the client-side data model of the admin console
// session: the signed-in user, the persisted credential record and the
// password reset challenge.
package models

import "time"

// UserProfile is the user returned by the gateway on login and OTP
// verification.
type UserProfile struct {
	Name           string `json:"name"`
	Role           string `json:"role"`
	Email          string `json:"email,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

// CredentialRecord is the durable per-installation authentication state.
// Token and User are always present together or absent together.
type CredentialRecord struct {
	Token         string
	User          *UserProfile
	LoginAttempts int
	// LockedUntil is advisory; lock status is recomputed on every attempt.
	LockedUntil *time.Time
}

// HasSession reports whether the record carries a token and a user.
func (r CredentialRecord) HasSession() bool {
	return r.Token != "" && r.User != nil
}

// OTPChallenge is an in-flight password reset. Only ExpiresAt is persisted;
// Email travels with the flow.
type OTPChallenge struct {
	Email     string
	ExpiresAt time.Time
}

// SessionState is the persisted authentication state.
type SessionState int

const (
	Unauthenticated SessionState = iota
	Authenticated
)

func (s SessionState) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}
