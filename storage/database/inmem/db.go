package inmemdb

import "sync"

type (
	// DB is an in-memory database for tests and local runs.
	DB struct {
		settings *settingsTable
	}

	settingsTable struct {
		mutex sync.RWMutex
		table map[string][]byte
	}
)

func Open() *DB {
	return &DB{
		settings: &settingsTable{table: make(map[string][]byte)},
	}
}
