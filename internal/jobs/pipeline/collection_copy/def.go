package collection_copy

import (
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/collections-backend/internal/data/aggregates"
	"github.com/yungbote/collections-backend/internal/data/repos"
	"github.com/yungbote/collections-backend/internal/platform/logger"
)

const (
	JobType          = "collection_copy"
	DefaultChunkSize = 10

	chunkAttempts   = 3
	chunkRetryDelay = 100 * time.Millisecond
)

// Input is the job payload. CompanyIDs is the source membership snapshot
// taken when the task was accepted.
type Input struct {
	SourceID   uuid.UUID
	SourceName string
	TargetID   uuid.UUID
	TargetName string
	CompanyIDs []int
}

func ProgressMessage(src, tgt string) string { return "Adding " + src + " to " + tgt }
func FinishedMessage(src, tgt string) string { return "Finished adding " + src + " to " + tgt }
func FailedMessage(src, tgt string) string   { return "Failed adding " + src + " to " + tgt }

type Pipeline struct {
	log         *logger.Logger
	tx          aggregates.TxRunner
	collections repos.CollectionRepo
	memberships repos.MembershipRepo
	chunkSize   int
	retryDelay  time.Duration
	tracer      trace.Tracer
}

func New(
	baseLog *logger.Logger,
	tx aggregates.TxRunner,
	collections repos.CollectionRepo,
	memberships repos.MembershipRepo,
	chunkSize int,
) *Pipeline {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Pipeline{
		log:         baseLog.With("job", JobType),
		tx:          tx,
		collections: collections,
		memberships: memberships,
		chunkSize:   chunkSize,
		retryDelay:  chunkRetryDelay,
		tracer:      otel.Tracer("github.com/yungbote/collections-backend/internal/jobs/pipeline/collection_copy"),
	}
}

func (p *Pipeline) Type() string { return JobType }
