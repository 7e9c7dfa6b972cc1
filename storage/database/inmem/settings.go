package inmemdb

import (
	"context"

	"github.com/trezcool/madrasahub/core/resource"
)

type settingsRepository struct {
	db *settingsTable
}

var _ resource.Repository = (*settingsRepository)(nil)

func NewSettingsRepository(db *DB) *settingsRepository {
	return &settingsRepository{db: db.settings}
}

func (repo *settingsRepository) GetSetting(_ context.Context, key string) ([]byte, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	value, ok := repo.db.table[key]
	if !ok {
		return nil, resource.ErrSettingNotFound
	}
	return append([]byte(nil), value...), nil
}

func (repo *settingsRepository) SetSetting(_ context.Context, key string, value []byte) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.table[key] = append([]byte(nil), value...)
	return nil
}
