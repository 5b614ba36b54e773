package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// OpenSQL opens a database/sql handle through lib/pq, which golang-migrate's
// postgres driver requires.
func OpenSQL(cfg Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func newMigrate(db *sql.DB) (*migrate.Migrate, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})

	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")

	if err != nil {
		return nil, fmt.Errorf("failed to create source driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", driver)

	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}

	return m, nil
}

func currentVersion(m *migrate.Migrate) (uint, bool, error) {
	version, dirty, err := m.Version()

	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}

	return version, dirty, nil
}

// RunMigrations applies every pending migration. A dirty schema is refused;
// repair it with ForceVersion first.
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	m, err := newMigrate(db)

	if err != nil {
		return err
	}

	version, dirty, err := currentVersion(m)

	if err != nil {
		return err
	}

	if dirty {
		return fmt.Errorf("database schema is dirty at version %d; force a version before migrating", version)
	}

	logger.Info("running database migrations", zap.Uint("current_version", version))

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	newVersion, _, err := currentVersion(m)

	if err != nil {
		return err
	}

	logger.Info("database migrations completed", zap.Uint("version", newVersion))

	return nil
}

// MigrateDown rolls back the last applied migration.
func MigrateDown(db *sql.DB, logger *zap.Logger) error {
	m, err := newMigrate(db)

	if err != nil {
		return err
	}

	version, _, err := currentVersion(m)

	if err != nil {
		return err
	}

	logger.Info("rolling back migration", zap.Uint("current_version", version))

	if err := m.Steps(-1); err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}

	newVersion, _, err := currentVersion(m)

	if err != nil {
		return err
	}

	logger.Info("migration rolled back", zap.Uint("version", newVersion))

	return nil
}

// MigrateToVersion migrates up or down to targetVersion.
func MigrateToVersion(db *sql.DB, targetVersion uint, logger *zap.Logger) error {
	m, err := newMigrate(db)

	if err != nil {
		return err
	}

	version, _, err := currentVersion(m)

	if err != nil {
		return err
	}

	logger.Info("migrating to version",
		zap.Uint("current_version", version),
		zap.Uint("target_version", targetVersion))

	if err := m.Migrate(targetVersion); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to migrate to version %d: %w", targetVersion, err)
	}

	logger.Info("migration completed", zap.Uint("version", targetVersion))

	return nil
}

// ForceVersion records version as applied and clears the dirty flag without
// running any migration.
func ForceVersion(db *sql.DB, version int, logger *zap.Logger) error {
	m, err := newMigrate(db)

	if err != nil {
		return err
	}

	if err := m.Force(version); err != nil {
		return fmt.Errorf("failed to force migration version %d: %w", version, err)
	}

	logger.Warn("migration version forced", zap.Int("version", version))

	return nil
}
