package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yungbote/collections-backend/internal/http/response"
	"github.com/yungbote/collections-backend/internal/platform/logger"
	"github.com/yungbote/collections-backend/internal/realtime"
)

type RealtimeHandler struct {
	Log      *logger.Logger
	Gateway  *realtime.Gateway
	upgrader websocket.Upgrader
}

// NewRealtimeHandler accepts websocket upgrades from allowedOrigins; an empty
// list or "*" accepts any origin.
func NewRealtimeHandler(log *logger.Logger, gw *realtime.Gateway, allowedOrigins []string) *RealtimeHandler {
	allowed := map[string]bool{}
	for _, o := range allowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			allowed[o] = true
		}
	}
	return &RealtimeHandler{
		Log:     log.With("handler", "RealtimeHandler"),
		Gateway: gw,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || len(allowed) == 0 || allowed["*"] {
					return true
				}
				return allowed[origin]
			},
		},
	}
}

// GET /ws/progress/:task_id
func (h *RealtimeHandler) ProgressStream(c *gin.Context) {
	taskID := strings.TrimSpace(c.Param("task_id"))
	if taskID == "" {
		response.RespondError(c, http.StatusBadRequest, "bad_request", errMissingTaskID)
		return
	}
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.Log.Warn("websocket upgrade failed", "task_id", taskID, "error", err)
		return
	}
	h.Log.Info("progress channel open", "task_id", taskID)
	if err := h.Gateway.Serve(c.Request.Context(), taskID, conn); err != nil {
		h.Log.Warn("progress channel ended with error", "task_id", taskID, "error", err)
		return
	}
	h.Log.Info("progress channel closed", "task_id", taskID)
}
