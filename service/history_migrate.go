package service

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/ludo-technologies/qadash/domain"
	"github.com/ludo-technologies/qadash/internal/constants"
)

//go:embed migrations
var migrationsFS embed.FS

// MigrationResult describes the outcome of a migration
type MigrationResult struct {
	From    uint
	To      uint
	Changed bool
}

// MigrateHistory migrates the history schema of the backend.
// A negative target migrates to the latest version, 0 rolls every migration
// back, a positive target migrates to that version.
func MigrateHistory(backend, dsn string, target int) (MigrationResult, error) {
	var result MigrationResult

	m, closeDB, err := newMigrator(backend, dsn)
	if err != nil {
		return result, err
	}
	defer closeDB()

	current, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return result, domain.NewStorageError("failed to read migration version", err)
	}
	if dirty {
		return result, domain.NewStorageError(fmt.Sprintf("database is dirty at version %d, fix it manually", current), nil)
	}
	result.From = current

	switch {
	case target < 0:
		err = m.Up()
	case target == 0:
		err = m.Down()
	default:
		err = m.Migrate(uint(target))
	}
	if errors.Is(err, migrate.ErrNoChange) {
		result.To = current
		return result, nil
	}
	if err != nil {
		return result, domain.NewStorageError(fmt.Sprintf("failed to migrate to version %d", target), err)
	}

	result.Changed = true
	if to, _, err := m.Version(); err == nil {
		result.To = to
	}
	return result, nil
}

// HistoryVersion returns the applied migration version and dirty flag
func HistoryVersion(backend, dsn string) (uint, bool, error) {
	m, closeDB, err := newMigrator(backend, dsn)
	if err != nil {
		return 0, false, err
	}
	defer closeDB()

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, domain.NewStorageError("failed to read migration version", err)
	}
	return version, dirty, nil
}

func newMigrator(backend, dsn string) (*migrate.Migrate, func(), error) {
	var driverName string
	switch backend {
	case constants.HistoryBackendSQLite:
		driverName = "sqlite"
		if dsn == "" {
			dsn = constants.DefaultHistoryDSN
		}
		if dsn != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
				return nil, nil, domain.NewStorageError(fmt.Sprintf("failed to create directory for %s", dsn), err)
			}
		}
	case constants.HistoryBackendMySQL:
		driverName = "mysql"
	case constants.HistoryBackendPostgreSQL:
		driverName = "pgx"
	case constants.HistoryBackendNone, "":
		return nil, nil, domain.NewConfigError("migrations need a history backend, history.backend is none", nil)
	default:
		return nil, nil, domain.NewConfigError(fmt.Sprintf("unsupported history backend: %s", backend), nil)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, nil, domain.NewStorageError(fmt.Sprintf("failed to open %s database", backend), err)
	}
	closeDB := func() { _ = db.Close() }

	if err := db.Ping(); err != nil {
		closeDB()
		return nil, nil, domain.NewStorageError(fmt.Sprintf("failed to connect to %s database", backend), err)
	}

	var driver database.Driver
	switch backend {
	case constants.HistoryBackendSQLite:
		driver, err = sqlite.WithInstance(db, &sqlite.Config{})
	case constants.HistoryBackendMySQL:
		driver, err = mysql.WithInstance(db, &mysql.Config{})
	case constants.HistoryBackendPostgreSQL:
		driver, err = migratepgx.WithInstance(db, &migratepgx.Config{})
	}
	if err != nil {
		closeDB()
		return nil, nil, domain.NewStorageError(fmt.Sprintf("failed to create %s migrate driver", backend), err)
	}

	migrations, err := fs.Sub(migrationsFS, "migrations/"+backend)
	if err != nil {
		closeDB()
		return nil, nil, domain.NewStorageError("failed to access migrations", err)
	}
	source, err := iofs.New(migrations, ".")
	if err != nil {
		closeDB()
		return nil, nil, domain.NewStorageError("failed to create migration source", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, constants.ToolName, driver)
	if err != nil {
		closeDB()
		return nil, nil, domain.NewStorageError("failed to create migrate instance", err)
	}
	return m, closeDB, nil
}
