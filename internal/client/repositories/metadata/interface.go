// Package metadata provides the key/value repository that backs the local
// credential record. Several backends are available: SQLite (default), bbolt,
// Redis and an in-memory map.
package metadata

import (
	"context"
	"errors"
)

var ErrUnknownDriver = errors.New("unknown store driver")

// Repository is a flat key/value store. Get returns (nil, nil) for absent keys
// and Delete is idempotent.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error

	// Batch runs fn and makes all writes issued through tx visible together.
	// If fn returns an error nothing is written.
	Batch(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	Close() error
}

// Tx is the write side of a Batch.
type Tx interface {
	Set(key string, value []byte) error
	Delete(key string) error
}
