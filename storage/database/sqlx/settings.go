package sqlxdb

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/madrasahub/core/resource"
)

type settingsRepository struct {
	db *sqlx.DB
}

var _ resource.Repository = (*settingsRepository)(nil)

// NewSettingsRepository returns a settings repository on the `settings` table.
// It works with any sqlx driver whose dialect supports ON CONFLICT (postgres, sqlite3).
func NewSettingsRepository(db *sqlx.DB) *settingsRepository {
	return &settingsRepository{db: db}
}

func (repo *settingsRepository) GetSetting(ctx context.Context, key string) ([]byte, error) {
	var value string
	q := repo.db.Rebind(`SELECT value FROM settings WHERE key = ?`)
	if err := repo.db.GetContext(ctx, &value, q, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, resource.ErrSettingNotFound
		}
		return nil, errors.Wrapf(err, "getting setting %q", key)
	}
	return []byte(value), nil
}

func (repo *settingsRepository) SetSetting(ctx context.Context, key string, value []byte) error {
	q := repo.db.Rebind(`
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`)
	if _, err := repo.db.ExecContext(ctx, q, key, string(value), time.Now().UTC()); err != nil {
		return errors.Wrapf(err, "setting %q", key)
	}
	return nil
}
