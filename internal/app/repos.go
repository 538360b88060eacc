package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/collections-backend/internal/data/aggregates"
	"github.com/yungbote/collections-backend/internal/data/repos"
	"github.com/yungbote/collections-backend/internal/platform/logger"
)

type Repos struct {
	Company    repos.CompanyRepo
	Collection repos.CollectionRepo
	Membership repos.MembershipRepo
	Tx         aggregates.TxRunner
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Company:    repos.NewCompanyRepo(db, log),
		Collection: repos.NewCollectionRepo(db, log),
		Membership: repos.NewMembershipRepo(db, log),
		Tx:         aggregates.NewGormTxRunner(db),
	}
}
