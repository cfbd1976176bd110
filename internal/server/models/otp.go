package models

import "time"

// OTPCode is the outstanding password-reset code of one email. Issuing a new
// code replaces the previous one.
type OTPCode struct {
	Email     string
	Code      string
	ExpiresAt time.Time
}

// RevokedToken marks a bearer token id (jti) as signed out until it would
// have expired anyway.
type RevokedToken struct {
	ID        string
	ExpiresAt time.Time
}
