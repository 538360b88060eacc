package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/collections-backend/internal/data/aggregates"
	"github.com/yungbote/collections-backend/internal/data/repos"
	types "github.com/yungbote/collections-backend/internal/domain"
	"github.com/yungbote/collections-backend/internal/jobs/pipeline/collection_copy"
	jobrt "github.com/yungbote/collections-backend/internal/jobs/runtime"
	"github.com/yungbote/collections-backend/internal/platform/apierr"
	"github.com/yungbote/collections-backend/internal/platform/dbctx"
	"github.com/yungbote/collections-backend/internal/platform/logger"
	"github.com/yungbote/collections-backend/internal/progress"
)

const DefaultLikedCollectionName = "Liked Companies"

type AddCompaniesResult struct {
	AddedCount     int    `json:"added_count"`
	CollectionName string `json:"collection_name"`
	Message        string `json:"message"`
}

type RemoveCompaniesResult struct {
	RemovedCount   int    `json:"removed_count"`
	CollectionName string `json:"collection_name"`
	Message        string `json:"message"`
}

type LikeResult struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

type BulkTaskResult struct {
	Message string `json:"message"`
	TaskID  string `json:"task_id"`
}

// JobSubmitter accepts background jobs without blocking.
type JobSubmitter interface {
	Submit(job *jobrt.Job) error
}

type CollectionService interface {
	AddCompaniesToCollection(ctx context.Context, collectionID string, companyIDs []int) (*AddCompaniesResult, error)
	RemoveCompaniesFromCollection(ctx context.Context, collectionID string, companyIDs []int) (*RemoveCompaniesResult, error)
	LikeCompany(ctx context.Context, companyID int) (*LikeResult, error)
	UnlikeCompany(ctx context.Context, companyID int) (*LikeResult, error)
	// AddCollectionToCollection validates both collections, snapshots the
	// source membership and schedules the copy. It returns before any
	// membership is written.
	AddCollectionToCollection(ctx context.Context, sourceID, targetID string) (*BulkTaskResult, error)
}

type CollectionServiceConfig struct {
	LikedCollectionName string
	// Exclusive rejects a new bulk task while another is in progress.
	Exclusive bool
}

type collectionService struct {
	db          *gorm.DB
	log         *logger.Logger
	tx          aggregates.TxRunner
	companies   repos.CompanyRepo
	collections repos.CollectionRepo
	memberships repos.MembershipRepo
	tracker     *progress.Tracker
	jobs        JobSubmitter
	cfg         CollectionServiceConfig
}

func NewCollectionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	tx aggregates.TxRunner,
	companies repos.CompanyRepo,
	collections repos.CollectionRepo,
	memberships repos.MembershipRepo,
	tracker *progress.Tracker,
	jobs JobSubmitter,
	cfg CollectionServiceConfig,
) CollectionService {
	if strings.TrimSpace(cfg.LikedCollectionName) == "" {
		cfg.LikedCollectionName = DefaultLikedCollectionName
	}
	return &collectionService{
		db:          db,
		log:         baseLog.With("service", "CollectionService"),
		tx:          tx,
		companies:   companies,
		collections: collections,
		memberships: memberships,
		tracker:     tracker,
		jobs:        jobs,
		cfg:         cfg,
	}
}

func parseCollectionID(op, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, apierr.BadRequest(op, "Invalid collection ID format")
	}
	return id, nil
}

func (s *collectionService) getCollection(dbc dbctx.Context, op string, id uuid.UUID) (*types.Collection, error) {
	c, err := s.collections.GetByID(dbc, id)
	if err != nil {
		return nil, apierr.Internal(op, err)
	}
	if c == nil {
		return nil, apierr.NotFound(op, fmt.Sprintf("Collection %s not found", id))
	}
	return c, nil
}

func (s *collectionService) AddCompaniesToCollection(ctx context.Context, collectionID string, companyIDs []int) (*AddCompaniesResult, error) {
	const op = "collections.add_companies"
	id, err := parseCollectionID(op, collectionID)
	if err != nil {
		return nil, err
	}
	var out *AddCompaniesResult
	err = s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		coll, err := s.getCollection(dbc, op, id)
		if err != nil {
			return err
		}
		found, err := s.companies.GetByIDs(dbc, companyIDs)
		if err != nil {
			return apierr.Internal(op, err)
		}
		if len(found) != len(uniqueIDs(companyIDs)) {
			return apierr.NotFound(op, "One or more companies not found")
		}
		added, err := s.memberships.AddMissing(dbc, companyIDs, coll.ID)
		if err != nil {
			return apierr.Internal(op, err)
		}
		out = &AddCompaniesResult{
			AddedCount:     added,
			CollectionName: coll.CollectionName,
			Message:        fmt.Sprintf("%d companies added to '%s' collection successfully", added, coll.CollectionName),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("companies added", "collection_id", id, "added", out.AddedCount)
	return out, nil
}

func (s *collectionService) RemoveCompaniesFromCollection(ctx context.Context, collectionID string, companyIDs []int) (*RemoveCompaniesResult, error) {
	const op = "collections.remove_companies"
	id, err := parseCollectionID(op, collectionID)
	if err != nil {
		return nil, err
	}
	var out *RemoveCompaniesResult
	err = s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		coll, err := s.getCollection(dbc, op, id)
		if err != nil {
			return err
		}
		existing, err := s.memberships.GetExisting(dbc, companyIDs, coll.ID)
		if err != nil {
			return apierr.Internal(op, err)
		}
		if len(existing) == 0 {
			return apierr.BadRequest(op, "No matching company associations found")
		}
		removed, err := s.memberships.Delete(dbc, existing)
		if err != nil {
			return apierr.Internal(op, err)
		}
		out = &RemoveCompaniesResult{
			RemovedCount:   removed,
			CollectionName: coll.CollectionName,
			Message:        fmt.Sprintf("%d companies removed from '%s' collection successfully", removed, coll.CollectionName),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("companies removed", "collection_id", id, "removed", out.RemovedCount)
	return out, nil
}

func (s *collectionService) likedCollection(dbc dbctx.Context, op string) (*types.Collection, error) {
	liked, err := s.collections.GetByName(dbc, s.cfg.LikedCollectionName)
	if err != nil {
		return nil, apierr.Internal(op, err)
	}
	if liked == nil {
		return nil, apierr.NotFound(op, fmt.Sprintf("Collection '%s' not found", s.cfg.LikedCollectionName))
	}
	return liked, nil
}

func (s *collectionService) requireCompany(dbc dbctx.Context, op string, companyID int) error {
	found, err := s.companies.GetByIDs(dbc, []int{companyID})
	if err != nil {
		return apierr.Internal(op, err)
	}
	if len(found) == 0 {
		return apierr.NotFound(op, fmt.Sprintf("Company %d not found", companyID))
	}
	return nil
}

func (s *collectionService) LikeCompany(ctx context.Context, companyID int) (*LikeResult, error) {
	const op = "collections.like_company"
	var out *LikeResult
	err := s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		liked, err := s.likedCollection(dbc, op)
		if err != nil {
			return err
		}
		if err := s.requireCompany(dbc, op, companyID); err != nil {
			return err
		}
		added, err := s.memberships.AddMissing(dbc, []int{companyID}, liked.ID)
		if err != nil {
			return apierr.Internal(op, err)
		}
		if added == 0 {
			out = &LikeResult{Message: "Company already liked", Success: false}
			return nil
		}
		out = &LikeResult{Message: "Company liked successfully", Success: true}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *collectionService) UnlikeCompany(ctx context.Context, companyID int) (*LikeResult, error) {
	const op = "collections.unlike_company"
	var out *LikeResult
	err := s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		liked, err := s.likedCollection(dbc, op)
		if err != nil {
			return err
		}
		m, err := s.memberships.Get(dbc, companyID, liked.ID)
		if err != nil {
			return apierr.Internal(op, err)
		}
		if m == nil {
			out = &LikeResult{Message: "Company not in liked collection", Success: false}
			return nil
		}
		if _, err := s.memberships.Delete(dbc, []*types.Membership{m}); err != nil {
			return apierr.Internal(op, err)
		}
		out = &LikeResult{Message: "Company unliked successfully", Success: true}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *collectionService) AddCollectionToCollection(ctx context.Context, sourceID, targetID string) (*BulkTaskResult, error) {
	const op = "collections.add_collection"
	srcID, err := parseCollectionID(op, sourceID)
	if err != nil {
		return nil, err
	}
	tgtID, err := parseCollectionID(op, targetID)
	if err != nil {
		return nil, err
	}

	dbc := dbctx.Context{Ctx: ctx}
	src, err := s.getCollection(dbc, op, srcID)
	if err != nil {
		return nil, err
	}
	tgt, err := s.getCollection(dbc, op, tgtID)
	if err != nil {
		return nil, err
	}

	if s.cfg.Exclusive {
		// Check-then-act: two requests racing here can both pass.
		if running, ok, err := s.tracker.FirstActive(ctx); err != nil {
			return nil, apierr.Internal(op, err)
		} else if ok {
			return nil, apierr.Conflict(op, fmt.Sprintf("Task %s is already in progress", running))
		}
	}

	ids, err := s.memberships.ListCompanyIDs(dbc, src.ID)
	if err != nil {
		return nil, apierr.Internal(op, err)
	}

	taskID := uuid.New().String()
	if err := s.tracker.Start(ctx, taskID, len(ids), collection_copy.ProgressMessage(src.CollectionName, tgt.CollectionName)); err != nil {
		return nil, apierr.Internal(op, err)
	}
	job := &jobrt.Job{
		ID:   taskID,
		Type: collection_copy.JobType,
		Payload: collection_copy.Input{
			SourceID:   src.ID,
			SourceName: src.CollectionName,
			TargetID:   tgt.ID,
			TargetName: tgt.CollectionName,
			CompanyIDs: ids,
		},
	}
	if err := s.jobs.Submit(job); err != nil {
		if _, ferr := s.tracker.Fail(ctx, taskID, collection_copy.FailedMessage(src.CollectionName, tgt.CollectionName)); ferr != nil {
			s.log.Warn("marking unscheduled task failed", "task_id", taskID, "error", ferr)
		}
		return nil, apierr.Internal(op, fmt.Errorf("schedule task: %w", err))
	}

	s.log.Info("bulk addition scheduled",
		"task_id", taskID,
		"source_collection_id", src.ID,
		"target_collection_id", tgt.ID,
		"total", len(ids),
	)
	return &BulkTaskResult{Message: "Bulk addition started.", TaskID: taskID}, nil
}

func uniqueIDs(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
