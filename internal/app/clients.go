package app

import (
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/collections-backend/internal/clients/redis"
	"github.com/yungbote/collections-backend/internal/data/db"
	"github.com/yungbote/collections-backend/internal/platform/logger"
)

type Clients struct {
	DB *db.Service
	// Redis is nil when no REDIS_ADDR is configured; progress then stays
	// in process.
	Redis *goredis.Client
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	dbs, err := db.Open(log, cfg.DatabaseURL)
	if err != nil {
		return Clients{}, fmt.Errorf("init database: %w", err)
	}
	if err := db.AutoMigrateAll(dbs.DB()); err != nil {
		_ = dbs.Close()
		return Clients{}, fmt.Errorf("database automigrate: %w", err)
	}
	if _, err := db.EnsureCollection(dbs.DB(), cfg.LikedCollectionName); err != nil {
		_ = dbs.Close()
		return Clients{}, fmt.Errorf("ensure liked collection: %w", err)
	}

	var rdb *goredis.Client
	if cfg.RedisAddr != "" {
		rdb, err = redis.NewClient(log, redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			_ = dbs.Close()
			return Clients{}, fmt.Errorf("init redis: %w", err)
		}
	} else {
		log.Warn("REDIS_ADDR not set; task progress is kept in process")
	}
	return Clients{DB: dbs, Redis: rdb}, nil
}

func (c Clients) Close() {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.DB != nil {
		_ = c.DB.Close()
	}
}
