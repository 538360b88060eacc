package companies

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/collections-backend/internal/domain"
	"github.com/yungbote/collections-backend/internal/platform/dbctx"
	"github.com/yungbote/collections-backend/internal/platform/logger"
)

type CollectionRepo interface {
	// GetByID returns nil, nil when the collection does not exist.
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Collection, error)
	GetByName(dbc dbctx.Context, name string) (*types.Collection, error)
}

type collectionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCollectionRepo(db *gorm.DB, baseLog *logger.Logger) CollectionRepo {
	return &collectionRepo{
		db:  db,
		log: baseLog.With("repo", "CollectionRepo"),
	}
}

func (r *collectionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Collection, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var c types.Collection
	err := dbc.Or(r.db).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *collectionRepo) GetByName(dbc dbctx.Context, name string) (*types.Collection, error) {
	if name == "" {
		return nil, nil
	}
	var c types.Collection
	err := dbc.Or(r.db).
		Where("collection_name = ?", name).
		Order("created_at ASC").
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
