package progress

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yungbote/collections-backend/internal/domain/tasks"
)

type memoryEntry struct {
	rec       tasks.Progress
	expiresAt time.Time
}

// memoryStore is the single-process Store used when no redis is configured.
// Expired entries are dropped on access.
type memoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	opts    Options
	now     func() time.Time
}

func NewMemoryStore(opts Options) Store {
	return newMemoryStore(opts, time.Now)
}

func newMemoryStore(opts Options, now func() time.Time) *memoryStore {
	return &memoryStore{
		entries: make(map[string]*memoryEntry),
		opts:    opts.withDefaults(),
		now:     now,
	}
}

// lookup must be called with mu held.
func (s *memoryStore) lookup(taskID string) *memoryEntry {
	e, ok := s.entries[taskID]
	if !ok {
		return nil
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		delete(s.entries, taskID)
		return nil
	}
	return e
}

func (s *memoryStore) Initialize(_ context.Context, taskID string, total int, message string) error {
	if taskID == "" {
		return fmt.Errorf("task id required")
	}
	if total < 0 {
		total = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[taskID] = &memoryEntry{
		rec: tasks.Progress{
			TaskID:  taskID,
			Total:   total,
			Status:  tasks.StatusInProgress,
			Message: message,
		},
		expiresAt: s.now().Add(s.opts.StaleTTL),
	}
	return nil
}

func (s *memoryStore) Advance(_ context.Context, taskID string, completed int, message string) (tasks.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.lookup(taskID)
	if e == nil {
		return tasks.Progress{}, fmt.Errorf("advance progress %s: %w", taskID, ErrTaskNotFound)
	}
	e.rec.Completed = clampCompleted(completed, e.rec.Completed, e.rec.Total)
	e.rec.Message = message
	return e.rec, nil
}

func (s *memoryStore) Finalize(_ context.Context, taskID string, message string) (tasks.Progress, error) {
	return s.finish(taskID, tasks.StatusCompleted, message)
}

func (s *memoryStore) Fail(_ context.Context, taskID string, message string) (tasks.Progress, error) {
	return s.finish(taskID, tasks.StatusFailed, message)
}

func (s *memoryStore) finish(taskID string, status tasks.Status, message string) (tasks.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.lookup(taskID)
	if e == nil {
		return tasks.Progress{}, fmt.Errorf("finish progress %s: %w", taskID, ErrTaskNotFound)
	}
	e.rec.Status = status
	e.rec.Message = message
	e.expiresAt = s.now().Add(s.opts.Retention)
	return e.rec, nil
}

func (s *memoryStore) Get(_ context.Context, taskID string) (*tasks.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.lookup(taskID)
	if e == nil {
		return nil, nil
	}
	rec := e.rec
	return &rec, nil
}

func (s *memoryStore) ListActive(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []string{}
	for id := range s.entries {
		e := s.lookup(id)
		if e == nil {
			continue
		}
		if e.rec.Status == tasks.StatusInProgress {
			out = append(out, id)
		}
	}
	return out, nil
}

func (s *memoryStore) Ping(context.Context) error { return nil }
