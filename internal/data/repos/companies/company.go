package companies

import (
	"gorm.io/gorm"

	types "github.com/yungbote/collections-backend/internal/domain"
	"github.com/yungbote/collections-backend/internal/platform/dbctx"
	"github.com/yungbote/collections-backend/internal/platform/logger"
)

type CompanyRepo interface {
	GetByIDs(dbc dbctx.Context, ids []int) ([]*types.Company, error)
}

type companyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCompanyRepo(db *gorm.DB, baseLog *logger.Logger) CompanyRepo {
	return &companyRepo{
		db:  db,
		log: baseLog.With("repo", "CompanyRepo"),
	}
}

func (r *companyRepo) GetByIDs(dbc dbctx.Context, ids []int) ([]*types.Company, error) {
	var out []*types.Company
	ids = uniqueInts(ids)
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.Or(r.db).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func uniqueInts(in []int) []int {
	if len(in) == 0 {
		return in
	}
	seen := make(map[int]struct{}, len(in))
	out := make([]int, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
