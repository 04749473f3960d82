package testutil

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/xxxsen/mblog/internal/config"
	"github.com/xxxsen/mblog/internal/db"
	"github.com/xxxsen/mblog/internal/pkg/dbutil"
)

// OpenTestDB returns a migrated, empty database. It uses a throwaway sqlite
// file unless TEST_DB_DSN points at a postgres instance, in which case the
// tables are truncated first.
func OpenTestDB(t *testing.T) (*sql.DB, dbutil.Dialect, func()) {
	t.Helper()
	cfg := config.DatabaseConfig{
		Driver: dbutil.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "mblog_test.db"),
	}
	if dsn := os.Getenv("TEST_DB_DSN"); dsn != "" {
		cfg = config.DatabaseConfig{Driver: dbutil.DriverPostgres, DSN: dsn}
	}
	conn, err := db.Open(cfg)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(conn, cfg.Driver); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	if cfg.Driver == dbutil.DriverPostgres {
		if _, err := conn.Exec(`TRUNCATE posts, users RESTART IDENTITY CASCADE`); err != nil {
			t.Fatalf("truncate: %v", err)
		}
	}
	return conn, dbutil.NewDialect(cfg.Driver), func() {
		_ = conn.Close()
	}
}
