package companies

import (
	"time"

	"github.com/google/uuid"
)

// Membership records that a company belongs to a collection. The
// (company_id, collection_id) pair is unique.
type Membership struct {
	ID           int         `gorm:"primaryKey;autoIncrement" json:"id"`
	CompanyID    int         `gorm:"column:company_id;not null;uniqueIndex:uq_company_collection" json:"company_id"`
	Company      *Company    `gorm:"constraint:OnDelete:CASCADE;foreignKey:CompanyID;references:ID" json:"-"`
	CollectionID uuid.UUID   `gorm:"type:uuid;column:collection_id;not null;uniqueIndex:uq_company_collection;index" json:"collection_id"`
	Collection   *Collection `gorm:"constraint:OnDelete:CASCADE;foreignKey:CollectionID;references:ID" json:"-"`
	CreatedAt    time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (Membership) TableName() string { return "company_collection_associations" }
