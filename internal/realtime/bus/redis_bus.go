package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/collections-backend/internal/domain/tasks"
	"github.com/yungbote/collections-backend/internal/platform/logger"
)

type redisBus struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
	buffer int
}

// NewRedisBus publishes on one pub/sub channel per task so that observers
// attached to any instance receive events from any worker.
func NewRedisBus(rdb *goredis.Client, baseLog *logger.Logger, prefix string, buffer int) (Bus, error) {
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if strings.TrimSpace(prefix) == "" {
		prefix = "task:"
	}
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &redisBus{
		log:    baseLog.With("service", "RedisEventBus"),
		rdb:    rdb,
		prefix: prefix,
		buffer: buffer,
	}, nil
}

func (b *redisBus) channel(taskID string) string { return b.prefix + strings.TrimSpace(taskID) }

func (b *redisBus) Publish(ctx context.Context, taskID string, ev tasks.Event) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis event bus not initialized")
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel(taskID), raw).Err()
}

type redisSub struct {
	ps   *goredis.PubSub
	out  chan tasks.Event
	once sync.Once
}

func (s *redisSub) Events() <-chan tasks.Event { return s.out }

func (s *redisSub) Close() error {
	var err error
	s.once.Do(func() { err = s.ps.Close() })
	return err
}

func (b *redisBus) Subscribe(ctx context.Context, taskID string) (Subscription, error) {
	if b == nil || b.rdb == nil {
		return nil, fmt.Errorf("redis event bus not initialized")
	}
	ps := b.rdb.Subscribe(ctx, b.channel(taskID))

	// ensures subscription actually started
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}

	sub := &redisSub{ps: ps, out: make(chan tasks.Event, b.buffer)}
	go func() {
		defer close(sub.out)
		for m := range ps.Channel() {
			if m == nil {
				continue
			}
			var ev tasks.Event
			if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
				b.log.Warn("bad redis progress payload", "task_id", taskID, "error", err)
				continue
			}
			select {
			case sub.out <- ev:
			default:
				b.log.Warn("Dropping progress event; subscriber buffer full", "task_id", taskID)
			}
		}
	}()
	return sub, nil
}

// Close is a no-op: the client is shared with the progress store and owned by
// the app.
func (b *redisBus) Close() error { return nil }
