package model

import "time"

// UserFeatureOverride pins a flag to a fixed value for a single user.
// user_id is an opaque identifier owned by the external identity system;
// feature_name is intentionally not a foreign key, an override may exist
// before its flag is defined.
type UserFeatureOverride struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	UserID      string    `gorm:"size:64;not null;index;uniqueIndex:uix_user_feature" json:"user_id"`
	FeatureName string    `gorm:"size:100;not null;index;uniqueIndex:uix_user_feature" json:"feature_name"`
	Enabled     bool      `gorm:"not null" json:"enabled"`
	CreatedAt   time.Time `json:"created_at"`
}

func (UserFeatureOverride) TableName() string {
	return "user_feature_overrides"
}
