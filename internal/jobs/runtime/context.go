package runtime

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/yungbote/collections-backend/internal/domain/tasks"
	"github.com/yungbote/collections-backend/internal/platform/logger"
)

// Job is one unit of background work accepted by the worker pool.
type Job struct {
	ID         string
	Type       string
	Payload    any
	EnqueuedAt time.Time
}

// Tracker is the progress sink a running job reports into.
type Tracker interface {
	Advance(ctx context.Context, taskID string, completed int, message string) (tasks.Progress, error)
	Complete(ctx context.Context, taskID string, message string) (tasks.Progress, error)
	Fail(ctx context.Context, taskID string, message string) (tasks.Progress, error)
}

/*
Context is the execution handle for a single job run. Pipelines report
progress and terminate only through it so that a task reaches exactly one
terminal state:
	- Progress records a non-terminal advance and notifies observers
	- Succeed finalizes as completed
	- Fail finalizes as failed
*/
type Context struct {
	Ctx     context.Context
	Job     *Job
	Tracker Tracker
	Log     *logger.Logger

	mu          sync.Mutex
	finished    bool
	failMessage string
}

func NewContext(ctx context.Context, job *Job, tracker Tracker, baseLog *logger.Logger) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	c := &Context{Ctx: ctx, Job: job, Tracker: tracker}
	if job != nil {
		c.Log = baseLog.With("job_id", job.ID, "job_type", job.Type)
	} else {
		c.Log = baseLog
	}
	return c
}

func (c *Context) taskID() string {
	if c.Job == nil {
		return ""
	}
	return c.Job.ID
}

// SetFailureMessage overrides the observer-facing message used by Fail.
func (c *Context) SetFailureMessage(msg string) {
	c.mu.Lock()
	c.failMessage = strings.TrimSpace(msg)
	c.mu.Unlock()
}

// Finished reports whether Succeed or Fail already ran.
func (c *Context) Finished() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.finished
}

func (c *Context) Progress(completed int, msg string) error {
	if c == nil || c.Tracker == nil {
		return fmt.Errorf("job context has no tracker")
	}
	if c.Finished() {
		return fmt.Errorf("job %s already finished", c.taskID())
	}
	_, err := c.Tracker.Advance(c.Ctx, c.taskID(), completed, msg)
	return err
}

func (c *Context) Succeed(msg string) error {
	if c == nil || c.Tracker == nil {
		return fmt.Errorf("job context has no tracker")
	}
	if !c.markFinished() {
		return nil
	}
	_, err := c.Tracker.Complete(c.Ctx, c.taskID(), msg)
	return err
}

// Fail marks the task failed. A job that already finished is left alone.
func (c *Context) Fail(stage string, err error) {
	if c == nil || !c.markFinished() {
		return
	}
	c.mu.Lock()
	msg := c.failMessage
	c.mu.Unlock()
	if msg == "" && err != nil {
		msg = err.Error()
	}
	c.Log.Error("job failed", "stage", stage, "error", err)
	if c.Tracker == nil {
		return
	}
	if _, ferr := c.Tracker.Fail(c.Ctx, c.taskID(), msg); ferr != nil {
		c.Log.Error("recording job failure failed", "stage", stage, "error", ferr)
	}
}

func (c *Context) markFinished() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.finished {
		return false
	}
	c.finished = true
	return true
}
