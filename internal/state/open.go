package state

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/launchpad/pkg/core"
)

// Options selects and configures a backend.
type Options struct {
	// Driver is one of Drivers().
	Driver string
	// Path is the state directory for the file driver, or the database
	// file for the sqlite driver when DSN is empty.
	Path string
	// DSN is the connection string for the SQL drivers.
	DSN string
}

// Open opens the backend described by opts.
func Open(ctx context.Context, opts Options) (core.KVStore, error) {
	switch opts.Driver {
	case DriverMemory:
		return NewMemoryStore(), nil

	case DriverFile, "":
		return NewFileStore(opts.Path)

	case DriverSQLite:
		dsn := opts.DSN
		if dsn == "" {
			if opts.Path == "" {
				return nil, fmt.Errorf("the sqlite state driver needs a path or dsn")
			}
			if err := os.MkdirAll(filepath.Dir(opts.Path), 0o750); err != nil {
				return nil, fmt.Errorf("failed to create state directory: %w", err)
			}
			dsn = SQLiteDSN(opts.Path)
		}
		return OpenSQLStore(ctx, DriverSQLite, dsn)

	case DriverPostgres, DriverMySQL:
		return OpenSQLStore(ctx, opts.Driver, opts.DSN)

	default:
		return nil, fmt.Errorf("unknown state driver %q", opts.Driver)
	}
}
