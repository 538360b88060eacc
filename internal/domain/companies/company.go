package companies

import "time"

type Company struct {
	ID          int       `gorm:"primaryKey;autoIncrement" json:"id"`
	CompanyName string    `gorm:"column:company_name;index" json:"company_name"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (Company) TableName() string { return "companies" }
