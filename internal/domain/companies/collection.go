package companies

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Collection struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CollectionName string    `gorm:"column:collection_name;index" json:"collection_name"`
	CreatedAt      time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (Collection) TableName() string { return "company_collections" }

func (c *Collection) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
