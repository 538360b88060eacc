package collection_copy

import (
	"context"
	"fmt"

	"github.com/avast/retry-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/collections-backend/internal/data/aggregates"
	jobrt "github.com/yungbote/collections-backend/internal/jobs/runtime"
	"github.com/yungbote/collections-backend/internal/platform/apierr"
	"github.com/yungbote/collections-backend/internal/platform/dbctx"
)

func (p *Pipeline) Run(jc *jobrt.Context) error {
	if jc == nil || jc.Job == nil {
		return nil
	}
	in, err := decodeInput(jc.Job.Payload)
	if err != nil {
		jc.Fail("validate", err)
		return nil
	}
	jc.SetFailureMessage(FailedMessage(in.SourceName, in.TargetName))

	ctx, span := p.tracer.Start(jc.Ctx, "collection_copy.run", trace.WithAttributes(
		attribute.String("task.id", jc.Job.ID),
		attribute.String("collection.source", in.SourceID.String()),
		attribute.String("collection.target", in.TargetID.String()),
		attribute.Int("task.total", len(in.CompanyIDs)),
	))
	defer span.End()

	msg := ProgressMessage(in.SourceName, in.TargetName)
	total := len(in.CompanyIDs)
	inserted := 0
	for offset := 0; offset < total; offset += p.chunkSize {
		end := offset + p.chunkSize
		if end > total {
			end = total
		}
		n, err := p.runChunk(ctx, in, offset, in.CompanyIDs[offset:end])
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "chunk failed")
			jc.Fail("chunk", err)
			return nil
		}
		inserted += n
		if err := jc.Progress(end, msg); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "progress failed")
			jc.Fail("progress", err)
			return nil
		}
	}

	if err := jc.Succeed(FinishedMessage(in.SourceName, in.TargetName)); err != nil {
		span.RecordError(err)
		p.log.Error("finalize failed", "task_id", jc.Job.ID, "error", err)
		return nil
	}
	span.SetAttributes(attribute.Int("memberships.inserted", inserted))
	p.log.Info("collection copy finished",
		"task_id", jc.Job.ID,
		"total", total,
		"inserted", inserted,
	)
	return nil
}

// runChunk inserts one slice of companies in its own transaction. The target
// is re-resolved so a collection deleted mid-run fails the task.
func (p *Pipeline) runChunk(ctx context.Context, in Input, offset int, ids []int) (int, error) {
	ctx, span := p.tracer.Start(ctx, "collection_copy.chunk", trace.WithAttributes(
		attribute.Int("chunk.offset", offset),
		attribute.Int("chunk.size", len(ids)),
	))
	defer span.End()

	inserted := 0
	attempt := func() error {
		return p.tx.InTx(ctx, func(dbc dbctx.Context) error {
			target, err := p.collections.GetByID(dbc, in.TargetID)
			if err != nil {
				return apierr.Internal("collection_copy.resolve_target", err)
			}
			if target == nil {
				return apierr.NotFound("collection_copy.resolve_target", fmt.Sprintf("Collection %s not found", in.TargetID))
			}
			n, err := p.memberships.AddMissing(dbc, ids, target.ID)
			if err != nil {
				return apierr.Internal("collection_copy.insert", err)
			}
			inserted = n
			return nil
		})
	}
	// A rolled-back chunk left nothing behind, so rerunning it is safe.
	err := retry.Do(
		attempt,
		retry.Context(ctx),
		retry.Attempts(chunkAttempts),
		retry.Delay(p.retryDelay),
		retry.RetryIf(aggregates.Retryable),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			p.log.Warn("chunk transaction failed, retrying", "offset", offset, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	span.SetAttributes(attribute.Int("chunk.inserted", inserted))
	return inserted, nil
}

func decodeInput(payload any) (Input, error) {
	switch v := payload.(type) {
	case Input:
		return v, nil
	case *Input:
		if v == nil {
			return Input{}, fmt.Errorf("missing collection copy payload")
		}
		return *v, nil
	default:
		return Input{}, fmt.Errorf("unexpected collection copy payload %T", payload)
	}
}
