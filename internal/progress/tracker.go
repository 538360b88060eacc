package progress

import (
	"context"
	"fmt"

	"github.com/yungbote/collections-backend/internal/domain/tasks"
	"github.com/yungbote/collections-backend/internal/platform/logger"
	"github.com/yungbote/collections-backend/internal/realtime/bus"
)

// Tracker records task progress in the Store and mirrors every change onto
// the event bus. Store failures are returned; publish failures are logged
// because live delivery is best-effort.
type Tracker struct {
	store Store
	bus   bus.Bus
	log   *logger.Logger
}

func NewTracker(store Store, b bus.Bus, baseLog *logger.Logger) *Tracker {
	return &Tracker{
		store: store,
		bus:   b,
		log:   baseLog.With("component", "ProgressTracker"),
	}
}

func (t *Tracker) Store() Store { return t.store }

func (t *Tracker) Start(ctx context.Context, taskID string, total int, message string) error {
	if t == nil || t.store == nil {
		return fmt.Errorf("progress tracker not initialized")
	}
	return t.store.Initialize(ctx, taskID, total, message)
}

func (t *Tracker) Advance(ctx context.Context, taskID string, completed int, message string) (tasks.Progress, error) {
	rec, err := t.store.Advance(ctx, taskID, completed, message)
	if err != nil {
		return tasks.Progress{}, err
	}
	t.publish(ctx, taskID, rec.Event())
	return rec, nil
}

// Complete finalizes the record and emits the single terminal event, whose
// fraction is always 1.0.
func (t *Tracker) Complete(ctx context.Context, taskID string, message string) (tasks.Progress, error) {
	rec, err := t.store.Finalize(ctx, taskID, message)
	if err != nil {
		return tasks.Progress{}, err
	}
	ev := rec.Event()
	ev.Progress = 1.0
	t.publish(ctx, taskID, ev)
	return rec, nil
}

func (t *Tracker) Fail(ctx context.Context, taskID string, message string) (tasks.Progress, error) {
	rec, err := t.store.Fail(ctx, taskID, message)
	if err != nil {
		return tasks.Progress{}, err
	}
	t.publish(ctx, taskID, rec.Event())
	return rec, nil
}

func (t *Tracker) Get(ctx context.Context, taskID string) (*tasks.Progress, error) {
	return t.store.Get(ctx, taskID)
}

// FirstActive returns any task still in progress. Which one is arbitrary
// when several are running.
func (t *Tracker) FirstActive(ctx context.Context) (string, bool, error) {
	ids, err := t.store.ListActive(ctx)
	if err != nil {
		return "", false, err
	}
	if len(ids) == 0 {
		return "", false, nil
	}
	return ids[0], true, nil
}

func (t *Tracker) publish(ctx context.Context, taskID string, ev tasks.Event) {
	if t.bus == nil {
		return
	}
	if err := t.bus.Publish(ctx, taskID, ev); err != nil {
		t.log.Warn("progress publish failed", "task_id", taskID, "status", ev.Status, "error", err)
	}
}
