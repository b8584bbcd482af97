package db

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mongodb"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/student-records/apiserver/config"
)

//go:embed migrations
var migrations embed.FS

// MigrationURL returns the migrator URL for the configured database.
func MigrationURL(cfg config.DatabaseConfig) (string, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		return MongoURL(cfg.Mongo)
	case config.DriverPostgres:
		return PostgresURL(cfg), nil
	case config.DriverSQLite:
		return "sqlite3://" + cfg.SQLitePath, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// NewMigrator returns a migrator over the embedded migrations for the
// configured driver. The caller closes it.
func NewMigrator(cfg config.DatabaseConfig) (*migrate.Migrate, error) {
	databaseURL, err := MigrationURL(cfg)
	if err != nil {
		return nil, err
	}

	source, err := iofs.New(migrations, "migrations/"+cfg.Driver)
	if err != nil {
		return nil, fmt.Errorf("load %s migrations: %w", cfg.Driver, err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("init migrator failed: %w", err)
	}
	return m, nil
}

// MigrateUp applies every pending migration.
func MigrateUp(cfg config.DatabaseConfig) error {
	return run(cfg, func(m *migrate.Migrate) error { return m.Up() })
}

// MigrateDown reverts every applied migration.
func MigrateDown(cfg config.DatabaseConfig) error {
	return run(cfg, func(m *migrate.Migrate) error { return m.Down() })
}

func run(cfg config.DatabaseConfig, step func(*migrate.Migrate) error) error {
	m, err := NewMigrator(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = m.Close()
	}()

	if err := step(m); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate %s failed: %w", cfg.Driver, err)
	}
	return nil
}
