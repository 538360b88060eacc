package bus

import (
	"context"
	"strings"
	"sync"

	"github.com/yungbote/collections-backend/internal/domain/tasks"
	"github.com/yungbote/collections-backend/internal/platform/logger"
)

type memorySub struct {
	bus    *memoryBus
	taskID string
	ch     chan tasks.Event
	once   sync.Once
}

func (s *memorySub) Events() <-chan tasks.Event { return s.ch }

func (s *memorySub) Close() error {
	s.once.Do(func() { s.bus.remove(s) })
	return nil
}

// memoryBus delivers events inside a single process.
type memoryBus struct {
	mu     sync.RWMutex
	log    *logger.Logger
	buffer int
	subs   map[string]map[*memorySub]bool
	closed bool
}

func NewMemoryBus(baseLog *logger.Logger, buffer int) Bus {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &memoryBus{
		log:    baseLog.With("component", "MemoryEventBus"),
		buffer: buffer,
		subs:   make(map[string]map[*memorySub]bool),
	}
}

func (b *memoryBus) Publish(_ context.Context, taskID string, ev tasks.Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}
	subs, ok := b.subs[strings.TrimSpace(taskID)]
	if !ok {
		return nil
	}
	for s := range subs {
		select {
		case s.ch <- ev:
		default:
			b.log.Warn("Dropping progress event; subscriber buffer full", "task_id", taskID)
		}
	}
	return nil
}

func (b *memoryBus) Subscribe(_ context.Context, taskID string) (Subscription, error) {
	taskID = strings.TrimSpace(taskID)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	s := &memorySub{bus: b, taskID: taskID, ch: make(chan tasks.Event, b.buffer)}
	set, ok := b.subs[taskID]
	if !ok {
		set = make(map[*memorySub]bool)
		b.subs[taskID] = set
	}
	set[s] = true
	b.log.Debug("progress subscriber added", "task_id", taskID)
	return s, nil
}

func (b *memoryBus) remove(s *memorySub) {
	b.mu.Lock()
	defer b.mu.Unlock()
	set, ok := b.subs[s.taskID]
	if !ok || !set[s] {
		return
	}
	delete(set, s)
	if len(set) == 0 {
		delete(b.subs, s.taskID)
	}
	close(s.ch)
}

func (b *memoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for id, set := range b.subs {
		for s := range set {
			close(s.ch)
		}
		delete(b.subs, id)
	}
	return nil
}
