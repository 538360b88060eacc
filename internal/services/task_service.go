package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/collections-backend/internal/domain/tasks"
	"github.com/yungbote/collections-backend/internal/platform/apierr"
	"github.com/yungbote/collections-backend/internal/platform/logger"
	"github.com/yungbote/collections-backend/internal/progress"
)

type TaskService interface {
	// TaskInProgress reports any one task still in progress.
	TaskInProgress(ctx context.Context) (string, bool, error)
	GetTaskProgress(ctx context.Context, taskID string) (*tasks.Progress, error)
	Ping(ctx context.Context) error
}

type taskService struct {
	log     *logger.Logger
	tracker *progress.Tracker
}

func NewTaskService(baseLog *logger.Logger, tracker *progress.Tracker) TaskService {
	return &taskService{
		log:     baseLog.With("service", "TaskService"),
		tracker: tracker,
	}
}

func (s *taskService) TaskInProgress(ctx context.Context) (string, bool, error) {
	id, ok, err := s.tracker.FirstActive(ctx)
	if err != nil {
		return "", false, apierr.Internal("tasks.in_progress", err)
	}
	return id, ok, nil
}

func (s *taskService) GetTaskProgress(ctx context.Context, taskID string) (*tasks.Progress, error) {
	const op = "tasks.get"
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return nil, apierr.BadRequest(op, "task_id required")
	}
	rec, err := s.tracker.Get(ctx, taskID)
	if err != nil {
		return nil, apierr.Internal(op, err)
	}
	if rec == nil {
		return nil, apierr.NotFound(op, fmt.Sprintf("Task %s not found", taskID))
	}
	return rec, nil
}

func (s *taskService) Ping(ctx context.Context) error {
	return s.tracker.Store().Ping(ctx)
}
