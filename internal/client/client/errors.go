package client

import "errors"

var (
	ErrUnavailable  = errors.New("gateway unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	// ErrSessionExpired is a 401 on a request that carried a bearer token.
	ErrSessionExpired = errors.New("session expired")
)

const (
	fallbackMessage     = "An unexpected error occurred"
	unsuccessfulMessage = "Something went wrong, Please try again!"
)

// GatewayError is a failed gateway call. Message is what the user sees.
type GatewayError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *GatewayError) Error() string {
	return e.Message
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
