package state

import "fmt"

// Dialect holds the statements a SQL backend needs.
type Dialect struct {
	// Name is the driver name passed to database/sql.
	Name string
	// Goose is the goose dialect used for migrations.
	Goose string
	// MigrationsDir is the embedded directory holding this dialect's migrations.
	MigrationsDir string

	SelectSQL string
	UpsertSQL string
	DeleteSQL string
}

var dialects = map[string]Dialect{
	DriverSQLite: {
		Name:          "sqlite",
		Goose:         "sqlite3",
		MigrationsDir: "migrations/sqlite",
		SelectSQL:     "SELECT kv_value FROM launchpad_kv WHERE kv_key = ?",
		UpsertSQL: "INSERT INTO launchpad_kv (kv_key, kv_value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP) " +
			"ON CONFLICT (kv_key) DO UPDATE SET kv_value = excluded.kv_value, updated_at = excluded.updated_at",
		DeleteSQL: "DELETE FROM launchpad_kv WHERE kv_key = ?",
	},
	DriverPostgres: {
		Name:          "pgx",
		Goose:         "postgres",
		MigrationsDir: "migrations/postgres",
		SelectSQL:     "SELECT kv_value FROM launchpad_kv WHERE kv_key = $1",
		UpsertSQL: "INSERT INTO launchpad_kv (kv_key, kv_value, updated_at) VALUES ($1, $2, now()) " +
			"ON CONFLICT (kv_key) DO UPDATE SET kv_value = EXCLUDED.kv_value, updated_at = EXCLUDED.updated_at",
		DeleteSQL: "DELETE FROM launchpad_kv WHERE kv_key = $1",
	},
	DriverMySQL: {
		Name:          "mysql",
		Goose:         "mysql",
		MigrationsDir: "migrations/mysql",
		SelectSQL:     "SELECT kv_value FROM launchpad_kv WHERE kv_key = ?",
		UpsertSQL: "INSERT INTO launchpad_kv (kv_key, kv_value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP) " +
			"ON DUPLICATE KEY UPDATE kv_value = VALUES(kv_value), updated_at = VALUES(updated_at)",
		DeleteSQL: "DELETE FROM launchpad_kv WHERE kv_key = ?",
	},
}

// DialectFor returns the SQL dialect for a driver name.
func DialectFor(driver string) (Dialect, error) {
	d, ok := dialects[driver]
	if !ok {
		return Dialect{}, fmt.Errorf("unsupported sql state driver %q", driver)
	}
	return d, nil
}
