// Package revokedtokens declares the deny-list of signed-out bearer tokens.
package revokedtokens

import (
	"context"
	"time"
)

type Repository interface {
	// Revoke records token id until expiresAt. Revoking twice is not an error.
	Revoke(ctx context.Context, id string, expiresAt time.Time) error

	// IsRevoked reports whether id has been revoked.
	IsRevoked(ctx context.Context, id string) (bool, error)

	// Purge drops entries that expired before now and returns how many.
	Purge(ctx context.Context, now time.Time) (int64, error)
}
