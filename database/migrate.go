package database

import (
	"embed"
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	log "github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationStatus is the schema version recorded by golang-migrate
type MigrationStatus struct {
	Version uint
	Dirty   bool
	Applied bool
}

func (s MigrationStatus) String() string {
	switch {
	case !s.Applied:
		return "no migrations applied"
	case s.Dirty:
		return fmt.Sprintf("version %d (dirty)", s.Version)
	default:
		return fmt.Sprintf("version %d", s.Version)
	}
}

// Migrator applies the embedded schema to one database
type Migrator struct {
	databaseURL string
}

func NewMigrator(databaseURL string) *Migrator {
	return &Migrator{databaseURL: databaseURL}
}

// MigratorFromEnv reads DATABASE_URL and DATABASE_NAME directly so the
// migrate command does not need JWT_SECRET or the rest of the server config
func MigratorFromEnv() *Migrator {
	return NewMigrator(ConstructDatabaseURL(os.Getenv("DATABASE_URL"), os.Getenv("DATABASE_NAME")))
}

func (m *Migrator) open() (*migrate.Migrate, error) {
	cfg, err := pgxpool.ParseConfig(m.databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	driver, err := postgres.WithInstance(stdlib.OpenDB(*cfg.ConnConfig), &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to create source driver: %w", err)
	}

	mg, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return mg, nil
}

// Up applies every pending migration
func (m *Migrator) Up() error {
	log.WithField("database", redactURL(m.databaseURL)).Info("Running migrations")
	return m.run(func(mg *migrate.Migrate) error { return mg.Up() }, "No new migrations to apply", "Successfully migrated")
}

// Down rolls back the given number of migrations
func (m *Migrator) Down(steps int) error {
	if steps <= 0 {
		return fmt.Errorf("invalid steps value: %d", steps)
	}
	return m.run(func(mg *migrate.Migrate) error { return mg.Steps(-steps) }, "No migrations to rollback", "Successfully rolled back")
}

func (m *Migrator) run(step func(*migrate.Migrate) error, noChange, done string) error {
	mg, err := m.open()
	if err != nil {
		return err
	}
	defer mg.Close()

	err = step(mg)
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		log.Info(noChange)
		return nil
	case err != nil:
		return fmt.Errorf("migration failed: %w", err)
	}

	version, _, _ := mg.Version()
	log.WithField("version", version).Info(done)
	return nil
}

// Status reports the current schema version
func (m *Migrator) Status() (MigrationStatus, error) {
	mg, err := m.open()
	if err != nil {
		return MigrationStatus{}, err
	}
	defer mg.Close()

	version, dirty, err := mg.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return MigrationStatus{}, nil
	}
	if err != nil {
		return MigrationStatus{}, fmt.Errorf("failed to get migration version: %w", err)
	}
	return MigrationStatus{Version: version, Dirty: dirty, Applied: true}, nil
}

// RunMigrationsWithURL applies every pending migration to databaseURL.
// Integration tests call it against their throwaway containers.
func RunMigrationsWithURL(databaseURL string) error {
	return NewMigrator(databaseURL).Up()
}
