package model

import "time"

type FeatureFlag struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Enabled     bool      `gorm:"not null;default:false" json:"enabled"`
	Description string    `gorm:"size:255" json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (FeatureFlag) TableName() string {
	return "feature_flags"
}
