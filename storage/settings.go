package storage

import (
	"context"
	"io"

	"github.com/pkg/errors"

	"github.com/trezcool/madrasahub/core"
	"github.com/trezcool/madrasahub/core/resource"
	"github.com/trezcool/madrasahub/storage/database"
	inmemdb "github.com/trezcool/madrasahub/storage/database/inmem"
	sqlxdb "github.com/trezcool/madrasahub/storage/database/sqlx"
	redisstore "github.com/trezcool/madrasahub/storage/redis"
)

// Settings drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenSettings opens the settings store selected by conf.SettingsDriver. SQL stores are
// migrated before use. The returned io.Closer releases the underlying connection.
func OpenSettings(ctx context.Context, conf *core.Config) (resource.Repository, io.Closer, error) {
	switch conf.SettingsDriver {
	case DriverMemory, "":
		return inmemdb.NewSettingsRepository(inmemdb.Open()), nopCloser{}, nil
	case DriverPostgres, DriverSQLite:
		dbConf := conf.Database
		dbConf.Engine = database.EnginePostgres
		if conf.SettingsDriver == DriverSQLite {
			dbConf.Engine = database.EngineSQLite
		}
		db, err := database.Open(dbConf)
		if err != nil {
			return nil, nil, err
		}
		if err = database.Migrate(db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return sqlxdb.NewSettingsRepository(db), db, nil
	case DriverRedis:
		rdb, err := redisstore.Connect(ctx, conf.Redis)
		if err != nil {
			return nil, nil, err
		}
		return redisstore.NewSettingsRepository(rdb), rdb, nil
	}
	return nil, nil, errors.Errorf("unknown settings driver %q", conf.SettingsDriver)
}
