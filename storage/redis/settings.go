package redisstore

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/madrasahub/core"
	"github.com/trezcool/madrasahub/core/resource"
)

const keyPrefix = "madrasahub:settings:"

type settingsRepository struct {
	rdb *redis.Client
}

var _ resource.Repository = (*settingsRepository)(nil)

// Connect returns a client for conf once the server answers a ping.
func Connect(ctx context.Context, conf core.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        conf.Addr,
		Password:    conf.Password,
		DB:          conf.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "redis ping")
	}
	return rdb, nil
}

func NewSettingsRepository(rdb *redis.Client) *settingsRepository {
	return &settingsRepository{rdb: rdb}
}

func (repo *settingsRepository) GetSetting(ctx context.Context, key string) ([]byte, error) {
	value, err := repo.rdb.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, resource.ErrSettingNotFound
		}
		return nil, errors.Wrapf(err, "getting setting %q", key)
	}
	return value, nil
}

func (repo *settingsRepository) SetSetting(ctx context.Context, key string, value []byte) error {
	if err := repo.rdb.Set(ctx, keyPrefix+key, value, 0).Err(); err != nil {
		return errors.Wrapf(err, "setting %q", key)
	}
	return nil
}
