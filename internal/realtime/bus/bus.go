package bus

import (
	"context"
	"errors"

	"github.com/yungbote/collections-backend/internal/domain/tasks"
)

var ErrClosed = errors.New("event bus closed")

// Bus routes progress events by task identifier. Delivery is best-effort:
// an event published while nobody is subscribed is dropped.
type Bus interface {
	Publish(ctx context.Context, taskID string, ev tasks.Event) error
	Subscribe(ctx context.Context, taskID string) (Subscription, error)
	Close() error
}

// Subscription yields events for one task in publish order. Events is closed
// after Close or when the bus shuts down.
type Subscription interface {
	Events() <-chan tasks.Event
	Close() error
}

const DefaultBuffer = 256
