package progress

import (
	"context"
	"errors"
	"time"

	"github.com/yungbote/collections-backend/internal/domain/tasks"
)

const (
	DefaultRetention = time.Hour
	DefaultStaleTTL  = 24 * time.Hour
)

var ErrTaskNotFound = errors.New("task progress not found")

// Store keeps one progress record per task identifier. Every mutation is an
// atomic per-key update; expiry is enforced by the store.
type Store interface {
	// Initialize (re)creates the record with completed=0 and status in_progress.
	Initialize(ctx context.Context, taskID string, total int, message string) error
	// Advance raises completed to min(completed, total). Lower values are
	// ignored so the stored count never decreases.
	Advance(ctx context.Context, taskID string, completed int, message string) (tasks.Progress, error)
	// Finalize marks the record completed and starts the retention window.
	Finalize(ctx context.Context, taskID string, message string) (tasks.Progress, error)
	// Fail marks the record failed and starts the retention window.
	Fail(ctx context.Context, taskID string, message string) (tasks.Progress, error)
	// Get returns nil, nil when no record exists (or it has expired).
	Get(ctx context.Context, taskID string) (*tasks.Progress, error)
	// ListActive returns the identifiers of records still in progress.
	ListActive(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
}

type Options struct {
	// Retention is how long a finished record stays readable.
	Retention time.Duration
	// StaleTTL bounds how long a record that never finishes is kept.
	StaleTTL  time.Duration
	KeyPrefix string
}

func (o Options) withDefaults() Options {
	if o.Retention <= 0 {
		o.Retention = DefaultRetention
	}
	if o.StaleTTL <= 0 {
		o.StaleTTL = DefaultStaleTTL
	}
	if o.KeyPrefix == "" {
		o.KeyPrefix = "task:"
	}
	return o
}

func clampCompleted(next, current, total int) int {
	if next > total {
		next = total
	}
	if next < current {
		next = current
	}
	if next < 0 {
		next = 0
	}
	return next
}
