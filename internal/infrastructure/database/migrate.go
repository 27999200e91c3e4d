package database

import (
	"embed"
	"errors"
	"fmt"

	"go-vaccination-booking/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrator applies the embedded SQL migrations
type Migrator struct {
	m   *migrate.Migrate
	log *logrus.Logger
}

func NewMigrator(cfg config.DBConfig, log *logrus.Logger) (*Migrator, error) {
	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, URL(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}

	return &Migrator{m: m, log: log}, nil
}

func (mg *Migrator) Up() error {
	if err := mg.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	mg.logVersion()
	return nil
}

// Down rolls back the given number of steps
func (mg *Migrator) Down(steps int) error {
	if steps <= 0 {
		steps = 1
	}
	if err := mg.m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}
	mg.logVersion()
	return nil
}

func (mg *Migrator) logVersion() {
	version, dirty, err := mg.m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			mg.log.Info("Database has no migrations applied")
			return
		}
		mg.log.Warnf("Failed to read migration version: %+v", err)
		return
	}
	mg.log.WithFields(logrus.Fields{"version": version, "dirty": dirty}).Info("Database migrated")
}

func (mg *Migrator) Close() error {
	sourceErr, dbErr := mg.m.Close()
	return errors.Join(sourceErr, dbErr)
}
