// Package state provides the key/value backends Launchpad persists its
// registries and session to.
//
// Backends:
//   - memory:   process-local map, nothing survives a restart
//   - file:     one JSON file per key in a directory
//   - sqlite:   a single-table store in a SQLite database file
//   - postgres: the same table in PostgreSQL
//   - mysql:    the same table in MySQL/MariaDB
package state

import (
	"errors"
	"fmt"
	"regexp"
)

// Driver names accepted by Open.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Drivers returns every supported driver name.
func Drivers() []string {
	return []string{DriverMemory, DriverFile, DriverSQLite, DriverPostgres, DriverMySQL}
}

// ErrNotOpen is returned when a store is used before Open or after Close.
var ErrNotOpen = errors.New("state store not opened")

var keyPattern = regexp.MustCompile(`^[a-z0-9_]{1,128}$`)

// checkKey rejects keys that cannot be used as a file name or column value.
func checkKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("invalid state key %q", key)
	}
	return nil
}
