package models

import "time"

// User is an account known to the gateway. PasswordHash is a cryptox
// encoded argon2id hash.
type User struct {
	ID           string
	Email        string
	Name         string
	Role         string
	PasswordHash string
	CreatedAt    time.Time
}
