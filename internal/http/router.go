package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/collections-backend/internal/http/handlers"
	httpMW "github.com/yungbote/collections-backend/internal/http/middleware"
	"github.com/yungbote/collections-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string

	CollectionHandler *httpH.CollectionHandler
	TaskHandler       *httpH.TaskHandler
	RealtimeHandler   *httpH.RealtimeHandler
	HealthHandler     *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	actions := r.Group("/user_actions")
	{
		if cfg.CollectionHandler != nil {
			actions.POST("/add-companies-to-collection", cfg.CollectionHandler.AddCompanies)
			actions.POST("/remove-companies-from-collection", cfg.CollectionHandler.RemoveCompanies)
			actions.POST("/like-company", cfg.CollectionHandler.LikeCompany)
			actions.POST("/unlike-company", cfg.CollectionHandler.UnlikeCompany)
			actions.POST("/add-collection-to-collection", cfg.CollectionHandler.AddCollection)
		}
		if cfg.TaskHandler != nil {
			actions.GET("/task_in_progress", cfg.TaskHandler.TaskInProgress)
			actions.GET("/tasks/:task_id", cfg.TaskHandler.GetTask)
		}
	}

	// Realtime (websocket)
	if cfg.RealtimeHandler != nil {
		r.GET("/ws/progress/:task_id", cfg.RealtimeHandler.ProgressStream)
	}

	return r
}
