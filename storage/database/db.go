package database

import (
	"database/sql"
	"embed"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/trezcool/goose"

	"github.com/trezcool/madrasahub/core"
)

const (
	EnginePostgres = "postgres"
	EngineSQLite   = "sqlite3"

	MigrationsDir = "migrations"
)

// Migrations holds the SQL migrations run by goose.
//go:embed migrations/*.sql
var Migrations embed.FS

var errUnknownEngine = errors.New("unknown database engine")

func dataSourceName(conf core.DatabaseConfig) (string, error) {
	switch conf.Engine {
	case EnginePostgres:
		sslMode := "require"
		if conf.DisableTLS {
			sslMode = "disable"
		}
		q := make(url.Values)
		q.Set("sslmode", sslMode)
		q.Set("timezone", "utc")

		u := url.URL{
			Scheme:   conf.Engine,
			User:     url.UserPassword(conf.User, conf.Password),
			Host:     conf.Address(),
			Path:     conf.Name,
			RawQuery: q.Encode(),
		}
		return u.String(), nil
	case EngineSQLite:
		if dir := filepath.Dir(conf.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return "", errors.Wrap(err, "creating sqlite directory")
			}
		}
		return conf.Path + "?_busy_timeout=5000&_foreign_keys=on", nil
	}
	return "", errors.Wrapf(errUnknownEngine, "%q", conf.Engine)
}

// Open opens the configured database and waits for it to be ready.
func Open(conf core.DatabaseConfig) (*sqlx.DB, error) {
	dsn, err := dataSourceName(conf)
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open(conf.Engine, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if conf.Engine == EngineSQLite {
		db.SetMaxOpenConns(1)
	}
	if err := ping(db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sql.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

// RunMigrations runs a goose command ("up", "down", "status", ...) against db.
func RunMigrations(db *sqlx.DB, command string, args ...string) error {
	if err := goose.SetDialect(db.DriverName()); err != nil {
		return errors.Wrap(err, "setting goose dialect")
	}
	if err := goose.RunFS(command, db.DB, Migrations, MigrationsDir, args...); err != nil {
		return errors.Wrapf(err, "running migrations %q", command)
	}
	return nil
}

func Migrate(db *sqlx.DB) error {
	return RunMigrations(db, "up")
}
