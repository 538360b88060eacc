package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/collections-backend/internal/platform/logger"
)

type Options struct {
	Addr     string
	Password string
	DB       int
}

// NewClient connects to redis and verifies it with PING, retrying while the
// server comes up.
func NewClient(log *logger.Logger, opts Options) (*goredis.Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(opts.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	clientLog := log.With("client", "Redis")

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})

	err := retry.Do(
		func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return rdb.Ping(ctx).Err()
		},
		retry.Attempts(5),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			clientLog.Warn("redis ping failed, retrying", "attempt", n+1, "addr", addr, "error", err)
		}),
	)
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	clientLog.Info("redis connected", "addr", addr, "db", opts.DB)
	return rdb, nil
}
