package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// database/sql drivers for the SQL backends
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/leapstack-labs/launchpad/pkg/core"
)

// SQLStore keeps values in the launchpad_kv table of a SQL database.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// OpenSQLStore connects to dsn with the named driver and applies migrations.
func OpenSQLStore(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	d, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}
	if dsn == "" {
		return nil, fmt.Errorf("a dsn is required for the %s state driver", driver)
	}

	db, err := sql.Open(d.Name, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", driver, err)
	}

	if driver == DriverSQLite {
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
	}

	if err := Migrate(db, d); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLStore{db: db, dialect: d}, nil
}

// NewSQLStore wraps an already migrated database.
func NewSQLStore(db *sql.DB, d Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: d}
}

// SQLiteDSN builds a modernc sqlite DSN for the database file at path.
func SQLiteDSN(path string) string {
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// Get returns the value stored under key.
func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	var value []byte
	err := s.db.QueryRowContext(ctx, s.dialect.SelectSQL, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get state value: %w", err)
	}
	return value, nil
}

// Put inserts or replaces the value stored under key.
func (s *SQLStore) Put(ctx context.Context, key string, value []byte) error {
	if s.db == nil {
		return ErrNotOpen
	}
	if err := checkKey(key); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, s.dialect.UpsertSQL, key, value); err != nil {
		return fmt.Errorf("failed to put state value: %w", err)
	}
	return nil
}

// Delete removes key.
func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if s.db == nil {
		return ErrNotOpen
	}

	if _, err := s.db.ExecContext(ctx, s.dialect.DeleteSQL, key); err != nil {
		return fmt.Errorf("failed to delete state value: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
