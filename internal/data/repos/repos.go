package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/collections-backend/internal/data/repos/companies"
	"github.com/yungbote/collections-backend/internal/platform/logger"
)

type CompanyRepo = companies.CompanyRepo
type CollectionRepo = companies.CollectionRepo
type MembershipRepo = companies.MembershipRepo

func NewCompanyRepo(db *gorm.DB, baseLog *logger.Logger) CompanyRepo {
	return companies.NewCompanyRepo(db, baseLog)
}
func NewCollectionRepo(db *gorm.DB, baseLog *logger.Logger) CollectionRepo {
	return companies.NewCollectionRepo(db, baseLog)
}
func NewMembershipRepo(db *gorm.DB, baseLog *logger.Logger) MembershipRepo {
	return companies.NewMembershipRepo(db, baseLog)
}
