package storage

import (
	"database/sql"
	"fmt"

	"github.com/guttosm/freightrates/db"
	goose "github.com/pressly/goose/v3"
)

// Migrate applies the embedded PostgreSQL migrations up to the latest version.
func Migrate(conn *sql.DB) error {
	goose.SetBaseFS(db.Migrations)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.Up(conn, db.MigrationsDir); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}
