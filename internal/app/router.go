package app

import (
	server "github.com/yungbote/collections-backend/internal/http"
	"github.com/yungbote/collections-backend/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg Config, h Handlers) *server.Server {
	log.Info("Wiring router...")
	return server.NewServer(server.RouterConfig{
		Log:               log,
		ServiceName:       cfg.ServiceName,
		CORSOrigins:       cfg.CORSOrigins,
		CollectionHandler: h.Collection,
		TaskHandler:       h.Task,
		RealtimeHandler:   h.Realtime,
		HealthHandler:     h.Health,
	})
}
