package app

import (
	"context"
	"errors"

	"ditroboticstw/internal/config"
	"ditroboticstw/internal/db"
	"ditroboticstw/internal/logger"
	"ditroboticstw/internal/redis"
	"ditroboticstw/internal/session"
)

type Infra struct {
	DB *db.DB
	// Redis is nil when sessions are kept in process memory.
	Redis    *redis.Client
	Sessions session.Store
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	driver, dsn := cfg.Database()

	database, err := db.Open(ctx, driver, dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx, database); err != nil {
		_ = database.Close()
		return nil, err
	}

	logger.Info("database ready", map[string]any{
		"driver": driver,
	})

	infra := &Infra{DB: database}

	if cfg.RedisAddr == "" {
		infra.Sessions = session.NewMemoryStore()
		logger.Warn("REDIS_ADDR not set, sessions are kept in memory", nil)
		return infra, nil
	}

	redisClient, err := redis.New(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		_ = database.Close()
		return nil, err
	}
	infra.Redis = redisClient
	infra.Sessions = session.NewRedisStore(redisClient.Client)

	logger.Info("redis ready", map[string]any{
		"addr": cfg.RedisAddr,
	})

	return infra, nil
}

func (i *Infra) Close() error {
	var errs []error
	if i.Redis != nil {
		errs = append(errs, i.Redis.Close())
	}
	errs = append(errs, i.DB.Close())
	return errors.Join(errs...)
}
