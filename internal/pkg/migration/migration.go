// Package migration applies embedded SQL migrations with golang-migrate.
package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5" // registers the pgx5:// scheme
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

var (
	// ErrDSNRequired is returned when no database url is configured.
	ErrDSNRequired = errors.New("migration: database url is required")
	// ErrUnsupportedDSN is returned for urls that are not postgres:// or postgresql://.
	ErrUnsupportedDSN = errors.New("migration: database url must start with postgres:// or postgresql://")
)

// Up applies every pending migration found under dir in src.
// Being already at the latest version is not an error.
func Up(dsn string, src fs.FS, dir string) error {
	m, err := open(dsn, src, dir)
	if err != nil {
		return err
	}
	defer closeMigrate(m)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration: up: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("migration: version: %w", err)
	}
	slog.Info("database schema is up to date", "version", version, "dirty", dirty)

	return nil
}

// Down rolls back every applied migration. Used by integration tests.
func Down(dsn string, src fs.FS, dir string) error {
	m, err := open(dsn, src, dir)
	if err != nil {
		return err
	}
	defer closeMigrate(m)

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration: down: %w", err)
	}
	return nil
}

func open(dsn string, src fs.FS, dir string) (*migrate.Migrate, error) {
	url, err := pgx5URL(dsn)
	if err != nil {
		return nil, err
	}

	source, err := iofs.New(src, dir)
	if err != nil {
		return nil, fmt.Errorf("migration: source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, url)
	if err != nil {
		return nil, fmt.Errorf("migration: open: %w", err)
	}
	return m, nil
}

func closeMigrate(m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if err := errors.Join(srcErr, dbErr); err != nil {
		slog.Warn("failed to close migration handles", "error", err)
	}
}

// pgx5URL rewrites a libpq style url to the scheme of the pgx/v5 driver.
func pgx5URL(dsn string) (string, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return "", ErrDSNRequired
	}

	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if rest, ok := strings.CutPrefix(dsn, scheme); ok {
			return "pgx5://" + rest, nil
		}
	}
	return "", ErrUnsupportedDSN
}
