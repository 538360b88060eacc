package progress

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/collections-backend/internal/domain/tasks"
	"github.com/yungbote/collections-backend/internal/platform/logger"
)

// advanceScript raises the completed counter atomically, capped at total and
// never decreasing. Returns -1 when the record does not exist.
var advanceScript = goredis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return -1
end
local total = tonumber(redis.call('HGET', KEYS[1], 'total') or '0') or 0
local current = tonumber(redis.call('HGET', KEYS[1], 'completed') or '0') or 0
local nxt = tonumber(ARGV[1]) or 0
if nxt > total then nxt = total end
if nxt < current then nxt = current end
redis.call('HSET', KEYS[1], 'completed', nxt, 'message', ARGV[2])
return nxt
`)

type redisStore struct {
	rdb  *goredis.Client
	log  *logger.Logger
	opts Options
}

func NewRedisStore(rdb *goredis.Client, baseLog *logger.Logger, opts Options) Store {
	return &redisStore{
		rdb:  rdb,
		log:  baseLog.With("store", "RedisProgressStore"),
		opts: opts.withDefaults(),
	}
}

func (s *redisStore) key(taskID string) string { return s.opts.KeyPrefix + taskID }

func (s *redisStore) Initialize(ctx context.Context, taskID string, total int, message string) error {
	if taskID == "" {
		return fmt.Errorf("task id required")
	}
	if total < 0 {
		total = 0
	}
	key := s.key(taskID)
	_, err := s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, map[string]any{
			"total":     strconv.Itoa(total),
			"completed": "0",
			"status":    string(tasks.StatusInProgress),
			"message":   message,
		})
		pipe.Expire(ctx, key, s.opts.StaleTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("initialize progress %s: %w", taskID, err)
	}
	return nil
}

func (s *redisStore) Advance(ctx context.Context, taskID string, completed int, message string) (tasks.Progress, error) {
	res, err := advanceScript.Run(ctx, s.rdb, []string{s.key(taskID)}, completed, message).Int64()
	if err != nil {
		return tasks.Progress{}, fmt.Errorf("advance progress %s: %w", taskID, err)
	}
	if res < 0 {
		return tasks.Progress{}, fmt.Errorf("advance progress %s: %w", taskID, ErrTaskNotFound)
	}
	rec, err := s.Get(ctx, taskID)
	if err != nil {
		return tasks.Progress{}, err
	}
	if rec == nil {
		return tasks.Progress{}, fmt.Errorf("advance progress %s: %w", taskID, ErrTaskNotFound)
	}
	return *rec, nil
}

func (s *redisStore) Finalize(ctx context.Context, taskID string, message string) (tasks.Progress, error) {
	return s.finish(ctx, taskID, tasks.StatusCompleted, message)
}

func (s *redisStore) Fail(ctx context.Context, taskID string, message string) (tasks.Progress, error) {
	return s.finish(ctx, taskID, tasks.StatusFailed, message)
}

func (s *redisStore) finish(ctx context.Context, taskID string, status tasks.Status, message string) (tasks.Progress, error) {
	key := s.key(taskID)
	exists, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		return tasks.Progress{}, fmt.Errorf("finish progress %s: %w", taskID, err)
	}
	if exists == 0 {
		return tasks.Progress{}, fmt.Errorf("finish progress %s: %w", taskID, ErrTaskNotFound)
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSet(ctx, key, "status", string(status), "message", message)
		pipe.Expire(ctx, key, s.opts.Retention)
		return nil
	})
	if err != nil {
		return tasks.Progress{}, fmt.Errorf("finish progress %s: %w", taskID, err)
	}
	rec, err := s.Get(ctx, taskID)
	if err != nil {
		return tasks.Progress{}, err
	}
	if rec == nil {
		return tasks.Progress{}, fmt.Errorf("finish progress %s: %w", taskID, ErrTaskNotFound)
	}
	return *rec, nil
}

func (s *redisStore) Get(ctx context.Context, taskID string) (*tasks.Progress, error) {
	fields, err := s.rdb.HGetAll(ctx, s.key(taskID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get progress %s: %w", taskID, err)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	rec := decodeFields(taskID, fields)
	return &rec, nil
}

func (s *redisStore) ListActive(ctx context.Context) ([]string, error) {
	out := []string{}
	iter := s.rdb.Scan(ctx, 0, s.opts.KeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		status, err := s.rdb.HGet(ctx, key, "status").Result()
		if err == goredis.Nil {
			status = ""
		} else if err != nil {
			// The key may have expired or changed type between SCAN and HGET.
			s.log.Debug("skipping unreadable progress key", "key", key, "error", err)
			continue
		}
		if tasks.ParseStatus(status) == tasks.StatusInProgress {
			out = append(out, strings.TrimPrefix(key, s.opts.KeyPrefix))
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan progress keys: %w", err)
	}
	return out, nil
}

func (s *redisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func decodeFields(taskID string, fields map[string]string) tasks.Progress {
	total, _ := strconv.Atoi(fields["total"])
	completed, _ := strconv.Atoi(fields["completed"])
	return tasks.Progress{
		TaskID:    taskID,
		Total:     total,
		Completed: completed,
		Status:    tasks.ParseStatus(fields["status"]),
		Message:   fields["message"],
	}
}
