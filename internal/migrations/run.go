// Package migrations применяет SQL-миграции схемы через golang-migrate.
package migrations

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	pgxv5 "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	embedded "github.com/magabrotheeeer/zenpress/migrations"
)

// Run применяет встроенные миграции. Отсутствие изменений не считается ошибкой.
func Run(db *sql.DB) error {
	return RunFS(db, embedded.Files)
}

// RunFS применяет миграции из произвольной файловой системы.
func RunFS(db *sql.DB, files fs.FS) error {
	const op = "migrations.Run"

	source, err := iofs.New(files, ".")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	driver, err := pgxv5.WithInstance(db, &pgxv5.Config{})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "pgx_v5", driver)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
