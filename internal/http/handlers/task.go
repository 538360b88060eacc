package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/collections-backend/internal/http/response"
	"github.com/yungbote/collections-backend/internal/platform/logger"
	"github.com/yungbote/collections-backend/internal/services"
)

type TaskHandler struct {
	log *logger.Logger
	svc services.TaskService
}

func NewTaskHandler(log *logger.Logger, svc services.TaskService) *TaskHandler {
	return &TaskHandler{log: log.With("handler", "TaskHandler"), svc: svc}
}

type taskInProgressResponse struct {
	TaskID *string `json:"task_id"`
}

// GET /user_actions/task_in_progress
func (h *TaskHandler) TaskInProgress(c *gin.Context) {
	id, ok, err := h.svc.TaskInProgress(c.Request.Context())
	if err != nil {
		h.log.Error("task liveness query failed", "error", err)
		response.RespondAPIError(c, err)
		return
	}
	if !ok {
		response.RespondOK(c, taskInProgressResponse{})
		return
	}
	response.RespondOK(c, taskInProgressResponse{TaskID: &id})
}

// GET /user_actions/tasks/:task_id
func (h *TaskHandler) GetTask(c *gin.Context) {
	rec, err := h.svc.GetTaskProgress(c.Request.Context(), c.Param("task_id"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"task_id":   rec.TaskID,
		"total":     rec.Total,
		"completed": rec.Completed,
		"status":    rec.Status,
		"message":   rec.Message,
		"progress":  rec.Fraction(),
	})
}
