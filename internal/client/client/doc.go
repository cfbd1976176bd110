// Package client talks to the remote auth gateway of the admin console.
//
// # Overview
//
// The package provides:
//  1. The Client interface: login, logout, forgot password, OTP
//     verification, password change (signed-in and after reset) and
//     registration.
//  2. HTTPClient, a JSON-over-HTTP implementation that injects the bearer
//     token, sends the device headers on login and OTP verification, and
//     unwraps the {success, message, data} envelope.
//
// # Error Handling
//
// Every failure is a *GatewayError whose Message follows the order: server
// message, transport error text, "An unexpected error occurred". Common
// conditions are exposed as sentinels for errors.Is: ErrUnavailable
// (transport failure or timeout), ErrUnauthorized (401 without a token) and
// ErrSessionExpired (401 on an authenticated call, which also fires the
// handler registered with OnUnauthorized). Requests are never retried.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation on top of the configured timeout.
package client
