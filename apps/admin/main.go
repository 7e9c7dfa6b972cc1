package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/madrasahub/core"
	"github.com/trezcool/madrasahub/core/resource"
	logsvc "github.com/trezcool/madrasahub/services/logger"
	"github.com/trezcool/madrasahub/storage"
	"github.com/trezcool/madrasahub/storage/cache"
	"github.com/trezcool/madrasahub/storage/database"
)

func main() {
	conf := core.NewConfig()

	logger, err := logsvc.NewZapLogger(conf.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "setting up logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cli := commandLine{out: os.Stdout}
	if conf.SettingsDriver == storage.DriverPostgres || conf.SettingsDriver == storage.DriverSQLite {
		cli.openDB = func() (*sqlx.DB, error) {
			dbConf := conf.Database
			dbConf.Engine = database.EnginePostgres
			if conf.SettingsDriver == storage.DriverSQLite {
				dbConf.Engine = database.EngineSQLite
			}
			return database.Open(dbConf)
		}
	}

	// migrations run before the settings store (which migrates on open) is needed
	if len(os.Args) < 2 || os.Args[1] != "migrate" {
		repo, closer, err := storage.OpenSettings(context.Background(), conf)
		if err != nil {
			logger.Fatal("opening settings store", err)
		}
		defer closer.Close()

		fileCache := cache.NewFileCache(conf.CachePath)
		cli.repo = repo
		cli.cache = fileCache
		cli.svc = resource.NewService(repo, fileCache, nil, logger)
	}

	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("command failed", err)
		}
		logger.Sync()
		os.Exit(1)
	}
}
