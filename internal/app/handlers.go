package app

import (
	httpH "github.com/yungbote/collections-backend/internal/http/handlers"
	"github.com/yungbote/collections-backend/internal/platform/logger"
)

type Handlers struct {
	Collection *httpH.CollectionHandler
	Task       *httpH.TaskHandler
	Realtime   *httpH.RealtimeHandler
	Health     *httpH.HealthHandler
}

func wireHandlers(log *logger.Logger, cfg Config, clients Clients, serviceset Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Collection: httpH.NewCollectionHandler(log, serviceset.Collections),
		Task:       httpH.NewTaskHandler(log, serviceset.Tasks),
		Realtime:   httpH.NewRealtimeHandler(log, serviceset.Gateway, cfg.CORSOrigins),
		Health: httpH.NewHealthHandler(map[string]httpH.Pinger{
			"db":             clients.DB,
			"progress_store": serviceset.Tasks,
		}),
	}
}
