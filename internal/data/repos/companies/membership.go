package companies

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/collections-backend/internal/domain"
	"github.com/yungbote/collections-backend/internal/platform/dbctx"
	"github.com/yungbote/collections-backend/internal/platform/logger"
)

type MembershipRepo interface {
	// ListCompanyIDs returns the companies in a collection in insertion order.
	ListCompanyIDs(dbc dbctx.Context, collectionID uuid.UUID) ([]int, error)
	GetExisting(dbc dbctx.Context, companyIDs []int, collectionID uuid.UUID) ([]*types.Membership, error)
	Get(dbc dbctx.Context, companyID int, collectionID uuid.UUID) (*types.Membership, error)
	// AddMissing inserts a membership for every company not yet in the
	// collection and returns how many rows were written. Re-running it with
	// the same input writes nothing.
	AddMissing(dbc dbctx.Context, companyIDs []int, collectionID uuid.UUID) (int, error)
	Delete(dbc dbctx.Context, memberships []*types.Membership) (int, error)
}

type membershipRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMembershipRepo(db *gorm.DB, baseLog *logger.Logger) MembershipRepo {
	return &membershipRepo{
		db:  db,
		log: baseLog.With("repo", "MembershipRepo"),
	}
}

func (r *membershipRepo) ListCompanyIDs(dbc dbctx.Context, collectionID uuid.UUID) ([]int, error) {
	out := []int{}
	if collectionID == uuid.Nil {
		return out, nil
	}
	if err := dbc.Or(r.db).
		Model(&types.Membership{}).
		Where("collection_id = ?", collectionID).
		Order("id ASC").
		Pluck("company_id", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *membershipRepo) GetExisting(dbc dbctx.Context, companyIDs []int, collectionID uuid.UUID) ([]*types.Membership, error) {
	var out []*types.Membership
	if len(companyIDs) == 0 || collectionID == uuid.Nil {
		return out, nil
	}
	if err := dbc.Or(r.db).
		Where("company_id IN ? AND collection_id = ?", uniqueInts(companyIDs), collectionID).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *membershipRepo) Get(dbc dbctx.Context, companyID int, collectionID uuid.UUID) (*types.Membership, error) {
	var m types.Membership
	err := dbc.Or(r.db).
		Where("company_id = ? AND collection_id = ?", companyID, collectionID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *membershipRepo) AddMissing(dbc dbctx.Context, companyIDs []int, collectionID uuid.UUID) (int, error) {
	ids := uniqueInts(companyIDs)
	if len(ids) == 0 || collectionID == uuid.Nil {
		return 0, nil
	}
	existing, err := r.GetExisting(dbc, ids, collectionID)
	if err != nil {
		return 0, err
	}
	present := make(map[int]struct{}, len(existing))
	for _, m := range existing {
		present[m.CompanyID] = struct{}{}
	}
	rows := make([]*types.Membership, 0, len(ids))
	for _, id := range ids {
		if _, ok := present[id]; ok {
			continue
		}
		rows = append(rows, &types.Membership{CompanyID: id, CollectionID: collectionID})
	}
	if len(rows) == 0 {
		return 0, nil
	}
	// A concurrent writer may have inserted the same pair since the read
	// above; the unique index turns that into a skipped row.
	res := dbc.Or(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "company_id"}, {Name: "collection_id"}},
			DoNothing: true,
		}).
		Create(&rows)
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}

func (r *membershipRepo) Delete(dbc dbctx.Context, memberships []*types.Membership) (int, error) {
	ids := make([]int, 0, len(memberships))
	for _, m := range memberships {
		if m != nil && m.ID != 0 {
			ids = append(ids, m.ID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}
	res := dbc.Or(r.db).Where("id IN ?", ids).Delete(&types.Membership{})
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}
