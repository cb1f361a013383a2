package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// MigrationResult reports the schema version after Migrate.
type MigrationResult struct {
	Version uint
	Applied bool
	Empty   bool
}

// Migrate applies every pending up migration from source (e.g. "file://migrations").
func Migrate(databaseURL, source string) (MigrationResult, error) {
	var res MigrationResult

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return res, fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return res, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(source, "postgres", driver)
	if err != nil {
		return res, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	upErr := m.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return res, fmt.Errorf("failed to apply migrations: %w", upErr)
	}
	res.Applied = upErr == nil

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		res.Empty = true
		return res, nil
	case err != nil:
		return res, fmt.Errorf("failed to get migration version: %w", err)
	case dirty:
		return res, fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	}

	res.Version = version
	return res, nil
}
