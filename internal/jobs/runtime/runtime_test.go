package runtime

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/yungbote/collections-backend/internal/domain/tasks"
)

type recordingTracker struct {
	mu       sync.Mutex
	advances []int
	status   tasks.Status
	message  string
	finishes int
}

func (r *recordingTracker) Advance(_ context.Context, taskID string, completed int, msg string) (tasks.Progress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.advances = append(r.advances, completed)
	return tasks.Progress{TaskID: taskID, Completed: completed, Status: tasks.StatusInProgress, Message: msg}, nil
}

func (r *recordingTracker) Complete(_ context.Context, taskID string, msg string) (tasks.Progress, error) {
	return r.finish(taskID, tasks.StatusCompleted, msg)
}

func (r *recordingTracker) Fail(_ context.Context, taskID string, msg string) (tasks.Progress, error) {
	return r.finish(taskID, tasks.StatusFailed, msg)
}

func (r *recordingTracker) finish(taskID string, status tasks.Status, msg string) (tasks.Progress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finishes++
	r.status = status
	r.message = msg
	return tasks.Progress{TaskID: taskID, Status: status, Message: msg}, nil
}

type namedHandler string

func (h namedHandler) Type() string        { return string(h) }
func (h namedHandler) Run(*Context) error { return nil }

func TestContextSingleTerminalState(t *testing.T) {
	tr := &recordingTracker{}
	jc := NewContext(context.Background(), &Job{ID: "t1", Type: "x"}, tr, nil)

	if err := jc.Progress(5, "m"); err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if err := jc.Succeed("done"); err != nil {
		t.Fatalf("Succeed: %v", err)
	}
	jc.Fail("run", errors.New("late"))

	if tr.finishes != 1 || tr.status != tasks.StatusCompleted {
		t.Fatalf("want exactly one completed finish, got finishes=%d status=%s", tr.finishes, tr.status)
	}
	if err := jc.Progress(6, "m"); err == nil {
		t.Fatalf("Progress after finish should error")
	}
}

func TestContextFailUsesFailureMessage(t *testing.T) {
	tr := &recordingTracker{}
	jc := NewContext(context.Background(), &Job{ID: "t1", Type: "x"}, tr, nil)
	jc.SetFailureMessage("Failed adding A to B")
	jc.Fail("chunk", errors.New("db down"))

	if tr.status != tasks.StatusFailed {
		t.Fatalf("status: want=%s got=%s", tasks.StatusFailed, tr.status)
	}
	if tr.message != "Failed adding A to B" {
		t.Fatalf("message: got %q", tr.message)
	}
	if !jc.Finished() {
		t.Fatalf("context should be finished")
	}
}

func TestContextFailFallsBackToError(t *testing.T) {
	tr := &recordingTracker{}
	jc := NewContext(context.Background(), &Job{ID: "t1"}, tr, nil)
	jc.Fail("run", errors.New("boom"))
	if tr.message != "boom" {
		t.Fatalf("message: got %q", tr.message)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(namedHandler("b")); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(namedHandler("a")); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(namedHandler("a")); err == nil {
		t.Fatalf("duplicate Register should error")
	}
	if err := r.Register(namedHandler("")); err == nil {
		t.Fatalf("empty type should error")
	}
	if err := r.Register(nil); err == nil {
		t.Fatalf("nil handler should error")
	}
	if _, ok := r.Get("a"); !ok {
		t.Fatalf("Get(a) missing")
	}
	if got := r.Types(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("Types: got %v", got)
	}
}
