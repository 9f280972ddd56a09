package db

import (
	"database/sql"
	"embed"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// newMigrator opens a database/sql handle through the pgx stdlib driver and
// binds it to the embedded migrations. The caller closes both.
func newMigrator(dsn string) (*migrate.Migrate, *sql.DB, error) {
	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, nil, err
	}

	driver, err := pgmigrate.WithInstance(conn, &pgmigrate.Config{})
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}

	return m, conn, nil
}

// MigrateUp applies every pending migration. No pending migration is not an error.
func MigrateUp(dsn string) error {
	m, conn, err := newMigrator(dsn)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

// MigrateDown rolls back the given number of steps.
func MigrateDown(dsn string, steps int) error {
	m, conn, err := newMigrator(dsn)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	err = m.Steps(-steps)
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

func Version(dsn string) (version uint, dirty bool, err error) {
	m, conn, err := newMigrator(dsn)
	if err != nil {
		return 0, false, err
	}
	defer func() { _ = conn.Close() }()

	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}
