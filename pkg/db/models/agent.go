package models

import "time"

// Agent reviews and prices offers. InsuranceTypeID is the agent's
// department: an agent may only act on offers in that category.
type Agent struct {
	ID              int64          `gorm:"column:id;primaryKey;autoIncrement"`
	UserID          int64          `gorm:"column:user_id;not null;uniqueIndex"`
	FullName        string         `gorm:"column:full_name;not null"`
	Email           string         `gorm:"column:email;not null"`
	InsuranceTypeID int64          `gorm:"column:insurance_type_id;not null;index"`
	InsuranceType   *InsuranceType `gorm:"foreignKey:InsuranceTypeID"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
