package main

import (
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/madrasahub/storage/database"
)

var gooseRunFunc = database.RunMigrations // mockable

var errNoDatabase = errors.New("migrations need a SQL settings driver (postgres or sqlite)")

func (cli *commandLine) migrate(args []string) error {
	if cli.openDB == nil {
		return errNoDatabase
	}
	db, err := cli.openDB()
	if err != nil {
		return err
	}
	defer func(db *sqlx.DB) { _ = db.Close() }(db)

	return gooseRunFunc(db, args[0], args[1:]...)
}
