// Package migrations embeds the SQL schema so the migration runner and the
// integration tests apply the same files.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed *.sql
var FS embed.FS

// Up applies every pending migration to db and returns the schema version before
// and after. A database without any migration reports version 0.
func Up(db *sql.DB) (uint, uint, error) {
	source, err := iofs.New(FS, ".")
	if err != nil {
		return 0, 0, fmt.Errorf("iofs.New: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return 0, 0, fmt.Errorf("postgres.WithInstance: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return 0, 0, fmt.Errorf("migrate.NewWithInstance: %w", err)
	}

	pre, _, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		pre = 0
	} else if err != nil {
		return 0, 0, fmt.Errorf("version before migration: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return pre, pre, fmt.Errorf("migrate up: %w", err)
	}

	post, _, err := m.Version()
	if err != nil {
		return pre, pre, fmt.Errorf("version after migration: %w", err)
	}
	return pre, post, nil
}
