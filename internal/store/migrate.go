package store

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

// DefaultMigrationsURL is where the schema lives relative to the repo root.
const DefaultMigrationsURL = "file://scripts/migrations"

// Migrator wraps golang-migrate over a database/sql handle opened through
// the pgx stdlib driver.
type Migrator struct {
	m *migrate.Migrate
}

func NewMigrator(dsn, sourceURL string) (*Migrator, error) {
	config, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}
	db := stdlib.OpenDB(*config)

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance(sourceURL, "postgres", driver)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return &Migrator{m: m}, nil
}

// Up applies all pending migrations. Being up to date is not an error.
func (g *Migrator) Up() error {
	if err := g.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Down reverts every applied migration.
func (g *Migrator) Down() error {
	if err := g.m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Force sets the recorded version without running migrations, clearing a
// dirty state left by a failed run.
func (g *Migrator) Force(version int) error {
	return g.m.Force(version)
}

// Version reports the applied version and whether it is dirty.
func (g *Migrator) Version() (uint, bool, error) {
	v, dirty, err := g.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

func (g *Migrator) Close() error {
	srcErr, dbErr := g.m.Close()
	return errors.Join(srcErr, dbErr)
}

// Migrate applies every pending migration from sourceURL to dsn.
func Migrate(dsn, sourceURL string) error {
	g, err := NewMigrator(dsn, sourceURL)
	if err != nil {
		return err
	}
	defer g.Close()
	return g.Up()
}
