package metadata

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/adminauth/internal/filex"
)

const (
	DriverSQLite = "sqlite"
	DriverBolt   = "bolt"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Driver      string
	Path        string
	RedisAddr   string
	RedisPrefix string
}

// Open returns the Repository for opts.Driver. File backed stores get their
// parent directory created first.
func Open(ctx context.Context, opts Options) (Repository, error) {
	switch opts.Driver {
	case DriverSQLite, "", DriverBolt:
		if err := filex.EnsureParentDir(opts.Path); err != nil {
			return nil, err
		}
	}

	switch opts.Driver {
	case DriverSQLite, "":
		return OpenSQLite(ctx, opts.Path)
	case DriverBolt:
		return OpenBolt(opts.Path)
	case DriverRedis:
		return OpenRedis(ctx, opts.RedisAddr, opts.RedisPrefix)
	case DriverMemory:
		return NewMemoryRepository(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}
