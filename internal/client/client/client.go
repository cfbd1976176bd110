package client

import (
	"context"

	"github.com/dmitrijs2005/adminauth/internal/client/models"
)

// Client is the remote auth gateway contract. Every call returns the
// server's message on success so callers can show it.
type Client interface {
	Close() error
	Login(ctx context.Context, req LoginRequest) (*AuthResult, error)
	Logout(ctx context.Context) (string, error)
	ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (string, error)
	VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*AuthResult, error)
	UpdatePassword(ctx context.Context, req UpdatePasswordRequest) (string, error)
	UpdatePasswordAuth(ctx context.Context, req UpdatePasswordAuthRequest) (string, error)
	Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error)
}

type LoginRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	DeviceUniqueID string `json:"deviceuniqueid"`
	DeviceModel    string `json:"devicemodel"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type VerifyOTPRequest struct {
	Email          string `json:"email"`
	Role           string `json:"role"`
	OTP            string `json:"otp"`
	DeviceUniqueID string `json:"deviceuniqueid"`
	DeviceModel    string `json:"devicemodel"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type UpdatePasswordAuthRequest struct {
	NewPassword string `json:"newPassword"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// AuthResult is the payload of login and OTP verification.
type AuthResult struct {
	Token   string
	User    models.UserProfile
	Message string
}

type RegisterResult struct {
	User    models.UserProfile
	Message string
}

// Envelope is the response body shared by every gateway endpoint.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data,omitempty"`
}

// SessionData is the data of login and verify-otp responses.
type SessionData struct {
	Token string             `json:"token"`
	User  models.UserProfile `json:"user"`
}

// UserData is the data of the register response.
type UserData struct {
	User models.UserProfile `json:"user"`
}
