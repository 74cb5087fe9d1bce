package db

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"trekbooking/pkg/config"
)

const DefaultMigrationsPath = "file://migrations"

// Migrate brings the booking schema up to date over cfg.MigrationDSN and reports the
// resulting version. An up-to-date schema is not an error.
func Migrate(cfg config.Config) (uint, error) {
	path := cfg.MigrationsPath
	if path == "" {
		path = DefaultMigrationsPath
	}
	m, err := migrate.New(path, cfg.MigrationDSN())
	if err != nil {
		return 0, fmt.Errorf("open migrations %s: %w", path, err)
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, err
	}
	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, err
	}
	if dirty {
		return version, fmt.Errorf("schema version %d is dirty", version)
	}
	return version, nil
}
