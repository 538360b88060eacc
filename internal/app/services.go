package app

import (
	"fmt"

	"github.com/yungbote/collections-backend/internal/jobs/pipeline/collection_copy"
	jobrt "github.com/yungbote/collections-backend/internal/jobs/runtime"
	"github.com/yungbote/collections-backend/internal/jobs/worker"
	"github.com/yungbote/collections-backend/internal/platform/logger"
	"github.com/yungbote/collections-backend/internal/progress"
	"github.com/yungbote/collections-backend/internal/realtime"
	"github.com/yungbote/collections-backend/internal/realtime/bus"
	"github.com/yungbote/collections-backend/internal/services"
)

type Services struct {
	ProgressStore progress.Store
	Bus           bus.Bus
	Tracker       *progress.Tracker
	Gateway       *realtime.Gateway
	JobWorker     *worker.Pool
	Collections   services.CollectionService
	Tasks         services.TaskService
}

func wireServices(log *logger.Logger, cfg Config, clients Clients, reposet Repos) (Services, error) {
	log.Info("Wiring services...")

	storeOpts := progress.Options{Retention: cfg.TaskRetention, StaleTTL: cfg.TaskStaleTTL}
	var (
		store    progress.Store
		eventBus bus.Bus
		err      error
	)
	if clients.Redis != nil {
		store = progress.NewRedisStore(clients.Redis, log, storeOpts)
		eventBus, err = bus.NewRedisBus(clients.Redis, log, "", 0)
		if err != nil {
			return Services{}, fmt.Errorf("init event bus: %w", err)
		}
	} else {
		store = progress.NewMemoryStore(storeOpts)
		eventBus = bus.NewMemoryBus(log, 0)
	}
	tracker := progress.NewTracker(store, eventBus, log)

	registry := jobrt.NewRegistry()
	if err := registry.Register(collection_copy.New(
		log,
		reposet.Tx,
		reposet.Collection,
		reposet.Membership,
		cfg.BulkChunkSize,
	)); err != nil {
		return Services{}, fmt.Errorf("register pipelines: %w", err)
	}
	pool := worker.NewPool(log, registry, tracker, worker.Options{
		Concurrency: cfg.WorkerConcurrency,
		QueueSize:   cfg.WorkerQueueSize,
	})

	collections := services.NewCollectionService(
		clients.DB.DB(),
		log,
		reposet.Tx,
		reposet.Company,
		reposet.Collection,
		reposet.Membership,
		tracker,
		pool,
		services.CollectionServiceConfig{
			LikedCollectionName: cfg.LikedCollectionName,
			Exclusive:           cfg.BulkExclusive,
		},
	)

	return Services{
		ProgressStore: store,
		Bus:           eventBus,
		Tracker:       tracker,
		Gateway:       realtime.NewGateway(log, eventBus, realtime.Options{KeepOpenAfterTerminal: cfg.KeepChannelOpen}),
		JobWorker:     pool,
		Collections:   collections,
		Tasks:         services.NewTaskService(log, tracker),
	}, nil
}
